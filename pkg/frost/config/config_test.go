package config_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/frost/pkg/frost/config"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/math/curve"
)

func newSigningKey(t *testing.T, group curve.Curve, index uint32) *keys.IndividualSigningKey {
	t.Helper()
	s, err := group.RandomScalar(rand.Reader)
	require.NoError(t, err)
	return &keys.IndividualSigningKey{Index: index, Key: s}
}

func TestConfigValidation(t *testing.T) {
	group := curve.Secp256k1{}
	sk := newSigningKey(t, group, 1)
	gk := &keys.GroupKey{Key: group.NewScalar().ActOnBase()}

	testCases := []struct {
		name      string
		config    *config.Config
		expectErr bool
	}{
		{
			name: "valid config",
			config: &config.Config{
				Index:      1,
				Group:      group,
				Threshold:  2,
				SigningKey: sk,
				GroupKey:   gk,
				Public: map[uint32]*keys.IndividualVerifyingKey{
					1: {Index: 1, Share: group.NewScalar().ActOnBase()},
					2: {Index: 2, Share: group.NewScalar().ActOnBase()},
					3: {Index: 3, Share: group.NewScalar().ActOnBase()},
				},
			},
			expectErr: false,
		},
		{
			name: "threshold exceeds participant count",
			config: &config.Config{
				Index:      1,
				Group:      group,
				Threshold:  5,
				SigningKey: sk,
				GroupKey:   gk,
				Public: map[uint32]*keys.IndividualVerifyingKey{
					1: {Index: 1, Share: group.NewScalar().ActOnBase()},
				},
			},
			expectErr: true,
		},
		{
			name: "missing signing key",
			config: &config.Config{
				Index:     1,
				Group:     group,
				Threshold: 1,
				GroupKey:  gk,
				Public: map[uint32]*keys.IndividualVerifyingKey{
					1: {Index: 1, Share: group.NewScalar().ActOnBase()},
				},
			},
			expectErr: true,
		},
		{
			name: "zero threshold",
			config: &config.Config{
				Index:      1,
				Group:      group,
				Threshold:  0,
				SigningKey: sk,
				GroupKey:   gk,
				Public: map[uint32]*keys.IndividualVerifyingKey{
					1: {Index: 1, Share: group.NewScalar().ActOnBase()},
				},
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigMarshalJSONRoundTrip(t *testing.T) {
	group := curve.Secp256k1{}
	sk := newSigningKey(t, group, 2)
	gk := &keys.GroupKey{Key: group.NewScalar().ActOnBase()}

	cfg := &config.Config{
		Index:      2,
		Group:      group,
		Threshold:  2,
		Generation: 1,
		SigningKey: sk,
		GroupKey:   gk,
		Public: map[uint32]*keys.IndividualVerifyingKey{
			1: {Index: 1, Share: group.NewScalar().ActOnBase()},
			2: sk.ToPublic(),
		},
	}

	data, err := cfg.MarshalJSON()
	require.NoError(t, err)

	decoded := config.EmptyConfig(group)
	require.NoError(t, decoded.UnmarshalJSON(data))

	assert.Equal(t, cfg.Index, decoded.Index)
	assert.Equal(t, cfg.Threshold, decoded.Threshold)
	assert.Equal(t, cfg.Generation, decoded.Generation)
	assert.True(t, cfg.SigningKey.Key.Equal(decoded.SigningKey.Key))
	assert.True(t, cfg.GroupKey.Key.Equal(decoded.GroupKey.Key))
	require.Len(t, decoded.Public, 2)
	assert.True(t, cfg.Public[1].Share.Equal(decoded.Public[1].Share))
}

func TestConfigCopyIsIndependent(t *testing.T) {
	group := curve.Secp256k1{}
	sk := newSigningKey(t, group, 1)
	gk := &keys.GroupKey{Key: group.NewScalar().ActOnBase()}

	cfg := &config.Config{
		Index:      1,
		Group:      group,
		Threshold:  1,
		SigningKey: sk,
		GroupKey:   gk,
		Public: map[uint32]*keys.IndividualVerifyingKey{
			1: sk.ToPublic(),
		},
	}

	cp := cfg.Copy()
	cp.Public[2] = sk.ToPublic()

	assert.Len(t, cfg.Public, 1)
	assert.Len(t, cp.Public, 2)
}
