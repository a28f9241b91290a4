// Package config implements the long-term storage for a FROST
// participant's key material once a DKG or resharing run has finished:
// its signing share, the group verification key, and every participant's
// public verification share (spec.md §4.5). Adapted from
// luxfi-threshold/protocols/lss/config's Config/Public split.
package config

import (
	"errors"
	"fmt"

	"github.com/luxfi/frost/pkg/frost/dkg"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/math/curve"
)

// Config is one participant's persisted view of a completed DKG run.
type Config struct {
	// Index is this participant's index.
	Index uint32

	// Group is the elliptic curve group this key material lives over.
	Group curve.Curve

	// Threshold is the minimum number of signers needed to produce a
	// signature.
	Threshold uint32

	// Generation is a resharing counter carried through the JSON and CBOR
	// encodings. FromDKG leaves it at zero, and no code in this module
	// increments it.
	Generation uint64

	// SigningKey is this participant's long-lived signing share.
	SigningKey *keys.IndividualSigningKey

	// GroupKey is the combined group verification key.
	GroupKey *keys.GroupKey

	// Public maps every participant's index to its verification share.
	Public map[uint32]*keys.IndividualVerifyingKey
}

// EmptyConfig creates an empty Config over group, ready for
// UnmarshalJSON.
func EmptyConfig(group curve.Curve) *Config {
	return &Config{
		Group:  group,
		Public: make(map[uint32]*keys.IndividualVerifyingKey),
	}
}

// FromDKG builds a Config from a finished DistributedKeyGeneration run's
// outputs.
func FromDKG(group curve.Curve, threshold uint32, signingKey *keys.IndividualSigningKey, groupKey *keys.GroupKey, commitments []*dkg.VerifiableSecretSharingCommitment, participantIndices []uint32) (*Config, error) {
	public := make(map[uint32]*keys.IndividualVerifyingKey, len(participantIndices))
	for _, idx := range participantIndices {
		vk, err := keys.GenerateFromCommitments(group, idx, commitments)
		if err != nil {
			return nil, fmt.Errorf("config: derive verifying key for %d: %w", idx, err)
		}
		public[idx] = vk
	}

	return &Config{
		Index:      signingKey.Index,
		Group:      group,
		Threshold:  threshold,
		SigningKey: signingKey,
		GroupKey:   groupKey,
		Public:     public,
	}, nil
}

// PartyIndices returns the sorted set of every participant index this
// Config has a verification share for.
func (c *Config) PartyIndices() []uint32 {
	ids := make([]uint32, 0, len(c.Public))
	for id := range c.Public {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// Validate checks that the Config is well-formed and internally
// consistent before it is used to sign or to seed a resharing.
func (c *Config) Validate() error {
	if c.Group == nil {
		return errors.New("frost/config: missing group")
	}
	if c.Index == 0 {
		return errors.New("frost/config: missing index")
	}
	if c.SigningKey == nil || c.SigningKey.Key == nil {
		return errors.New("frost/config: missing signing key")
	}
	if c.GroupKey == nil || c.GroupKey.Key == nil {
		return errors.New("frost/config: missing group key")
	}
	if c.Threshold == 0 {
		return errors.New("frost/config: invalid threshold")
	}
	if int(c.Threshold) > len(c.Public) {
		return errors.New("frost/config: threshold exceeds known participant count")
	}
	for idx, pub := range c.Public {
		if pub == nil || pub.Share == nil {
			return fmt.Errorf("frost/config: missing verification share for %d", idx)
		}
	}
	return nil
}

// Copy returns a copy of c with its own Public map. The SigningKey,
// GroupKey, and verification-share values are shared with c, not cloned,
// so zeroizing or mutating one of them affects both configs.
func (c *Config) Copy() *Config {
	out := &Config{
		Index:      c.Index,
		Group:      c.Group,
		Threshold:  c.Threshold,
		Generation: c.Generation,
		SigningKey: c.SigningKey,
		GroupKey:   c.GroupKey,
		Public:     make(map[uint32]*keys.IndividualVerifyingKey, len(c.Public)),
	}
	for idx, pub := range c.Public {
		out.Public[idx] = pub
	}
	return out
}
