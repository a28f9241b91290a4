package dkg_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost"
	"github.com/luxfi/frost/pkg/frost/dkg"
)

func testSuite() ciphersuite.CipherSuite {
	return ciphersuite.Secp256k1Sha256{Context: []byte("frost-dkg-test")}
}

func TestNizkProveVerifyRoundTrip(t *testing.T) {
	suite := testSuite()
	group := suite.Group()

	secret, err := group.RandomScalar(rand.Reader)
	require.NoError(t, err)
	public := secret.ActOnBase()

	proof, err := dkg.Prove(suite, 1, secret, public, rand.Reader)
	require.NoError(t, err)

	require.NoError(t, dkg.Verify(suite, 1, public, proof))
}

func TestNizkVerifyRejectsWrongIndex(t *testing.T) {
	suite := testSuite()
	group := suite.Group()

	secret, err := group.RandomScalar(rand.Reader)
	require.NoError(t, err)
	public := secret.ActOnBase()

	proof, err := dkg.Prove(suite, 1, secret, public, rand.Reader)
	require.NoError(t, err)

	err = dkg.Verify(suite, 2, public, proof)
	require.ErrorIs(t, err, frost.ErrInvalidProofOfKnowledge)
}

func TestNizkVerifyRejectsWrongKey(t *testing.T) {
	suite := testSuite()
	group := suite.Group()

	secret, err := group.RandomScalar(rand.Reader)
	require.NoError(t, err)
	public := secret.ActOnBase()

	other, err := group.RandomScalar(rand.Reader)
	require.NoError(t, err)

	proof, err := dkg.Prove(suite, 1, secret, public, rand.Reader)
	require.NoError(t, err)

	err = dkg.Verify(suite, 1, other.ActOnBase(), proof)
	require.ErrorIs(t, err, frost.ErrInvalidProofOfKnowledge)
}

func TestNizkMarshalRoundTrip(t *testing.T) {
	suite := testSuite()
	group := suite.Group()

	secret, err := group.RandomScalar(rand.Reader)
	require.NoError(t, err)
	public := secret.ActOnBase()

	proof, err := dkg.Prove(suite, 7, secret, public, rand.Reader)
	require.NoError(t, err)

	b, err := proof.MarshalBinary()
	require.NoError(t, err)

	var decoded dkg.NizkPokOfSecretKey
	require.NoError(t, decoded.UnmarshalBinary(group, b))
	require.NoError(t, dkg.Verify(suite, 7, public, &decoded))
}
