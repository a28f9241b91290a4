package main

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/frost/pkg/frost/config"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/math/curve"
)

// cborConfig is the CBOR wire representation of a config.Config: every
// curve element is stored as its canonical wire bytes directly (unlike
// the JSON form, which additionally base64-encodes them for text
// transport) since CBOR carries byte strings natively.
type cborConfig struct {
	Index      uint32            `cbor:"1,keyasint"`
	Threshold  uint32            `cbor:"2,keyasint"`
	Generation uint64            `cbor:"3,keyasint"`
	SigningKey []byte            `cbor:"4,keyasint"`
	GroupKey   []byte            `cbor:"5,keyasint"`
	Public     map[uint32][]byte `cbor:"6,keyasint"`
}

func marshalConfigCBOR(cfg *config.Config) ([]byte, error) {
	signingBytes, err := cfg.SigningKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("cbor: marshal signing key: %w", err)
	}
	groupBytes, err := cfg.GroupKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("cbor: marshal group key: %w", err)
	}

	public := make(map[uint32][]byte, len(cfg.Public))
	for idx, p := range cfg.Public {
		b, err := p.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("cbor: marshal public share for %d: %w", idx, err)
		}
		public[idx] = b
	}

	out := cborConfig{
		Index:      cfg.Index,
		Threshold:  cfg.Threshold,
		Generation: cfg.Generation,
		SigningKey: signingBytes,
		GroupKey:   groupBytes,
		Public:     public,
	}
	return cbor.Marshal(out)
}

func unmarshalConfigCBOR(group curve.Curve, data []byte) (*config.Config, error) {
	var in cborConfig
	if err := cbor.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("cbor: unmarshal: %w", err)
	}

	signingKey := &keys.IndividualSigningKey{}
	if err := signingKey.UnmarshalBinary(group, in.SigningKey); err != nil {
		return nil, fmt.Errorf("cbor: unmarshal signing key: %w", err)
	}

	groupKey := &keys.GroupKey{}
	if err := groupKey.UnmarshalBinary(group, in.GroupKey); err != nil {
		return nil, fmt.Errorf("cbor: unmarshal group key: %w", err)
	}

	public := make(map[uint32]*keys.IndividualVerifyingKey, len(in.Public))
	for idx, b := range in.Public {
		vk := &keys.IndividualVerifyingKey{}
		if err := vk.UnmarshalBinary(group, b); err != nil {
			return nil, fmt.Errorf("cbor: unmarshal public share for %d: %w", idx, err)
		}
		public[idx] = vk
	}

	return &config.Config{
		Index:      in.Index,
		Group:      group,
		Threshold:  in.Threshold,
		Generation: in.Generation,
		SigningKey: signingKey,
		GroupKey:   groupKey,
		Public:     public,
	}, nil
}
