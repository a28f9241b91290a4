package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/luxfi/frost/pkg/frost/keys"
)

type configJSON struct {
	Index      uint32                  `json:"index"`
	Threshold  uint32                  `json:"threshold"`
	Generation uint64                  `json:"generation"`
	SigningKey string                  `json:"signing_key"` // base64
	GroupKey   string                  `json:"group_key"`   // base64
	Public     map[string]*publicJSON `json:"public"`
}

type publicJSON struct {
	Share string `json:"share"` // base64
}

// MarshalJSON implements json.Marshaler, encoding every curve-typed field
// as base64 of its canonical wire bytes (matching the base64-in-JSON
// convention luxfi-threshold/protocols/lss/config uses for its own
// ECDSA/public-share fields).
func (c *Config) MarshalJSON() ([]byte, error) {
	signingBytes, err := c.SigningKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("frost/config: marshal signing key: %w", err)
	}
	groupBytes, err := c.GroupKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("frost/config: marshal group key: %w", err)
	}

	public := make(map[string]*publicJSON, len(c.Public))
	for idx, p := range c.Public {
		b, err := p.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("frost/config: marshal public share for %d: %w", idx, err)
		}
		public[fmt.Sprintf("%d", idx)] = &publicJSON{Share: base64.StdEncoding.EncodeToString(b)}
	}

	out := &configJSON{
		Index:      c.Index,
		Threshold:  c.Threshold,
		Generation: c.Generation,
		SigningKey: base64.StdEncoding.EncodeToString(signingBytes),
		GroupKey:   base64.StdEncoding.EncodeToString(groupBytes),
		Public:     public,
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. c.Group must already be set
// (via EmptyConfig) before calling this, since curve element parsing is
// group-dependent.
func (c *Config) UnmarshalJSON(data []byte) error {
	if c.Group == nil {
		return fmt.Errorf("frost/config: group must be set before unmarshalling")
	}

	var out configJSON
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}

	c.Index = out.Index
	c.Threshold = out.Threshold
	c.Generation = out.Generation

	signingBytes, err := base64.StdEncoding.DecodeString(out.SigningKey)
	if err != nil {
		return fmt.Errorf("frost/config: decode signing key: %w", err)
	}
	signingKey := &keys.IndividualSigningKey{}
	if err := signingKey.UnmarshalBinary(c.Group, signingBytes); err != nil {
		return fmt.Errorf("frost/config: unmarshal signing key: %w", err)
	}
	c.SigningKey = signingKey

	groupBytes, err := base64.StdEncoding.DecodeString(out.GroupKey)
	if err != nil {
		return fmt.Errorf("frost/config: decode group key: %w", err)
	}
	groupKey := &keys.GroupKey{}
	if err := groupKey.UnmarshalBinary(c.Group, groupBytes); err != nil {
		return fmt.Errorf("frost/config: unmarshal group key: %w", err)
	}
	c.GroupKey = groupKey

	c.Public = make(map[uint32]*keys.IndividualVerifyingKey, len(out.Public))
	for idxStr, p := range out.Public {
		var idx uint32
		if _, err := fmt.Sscanf(idxStr, "%d", &idx); err != nil {
			return fmt.Errorf("frost/config: bad participant index %q: %w", idxStr, err)
		}

		shareBytes, err := base64.StdEncoding.DecodeString(p.Share)
		if err != nil {
			return fmt.Errorf("frost/config: decode public share for %s: %w", idxStr, err)
		}
		vk := &keys.IndividualVerifyingKey{}
		if err := vk.UnmarshalBinary(c.Group, shareBytes); err != nil {
			return fmt.Errorf("frost/config: unmarshal public share for %s: %w", idxStr, err)
		}
		c.Public[idx] = vk
	}

	return nil
}
