package sign_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost/dkg"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/frost/sign"
	"github.com/luxfi/frost/pkg/math/curve"
	"github.com/luxfi/frost/pkg/math/polynomial"
)

// runDKG drives a full n-of-t DKG to completion across every participant
// acting as a dealer, returning each participant's signing key and the
// shared group key. Mirrors the DKG test helper in pkg/frost/dkg, kept
// separate since it is exercised from a different package boundary here.
func runDKG(t *testing.T, suite ciphersuite.CipherSuite, params dkg.ThresholdParameters) (map[uint32]*keys.IndividualSigningKey, *keys.GroupKey) {
	t.Helper()

	type dealerSetup struct {
		index     uint32
		dhPriv    *keys.DiffieHellmanPrivateKey
		broadcast *dkg.Participant
		poly      *polynomial.Polynomial
	}

	dealers := make([]*dealerSetup, params.N)
	for i := uint32(0); i < params.N; i++ {
		idx := i + 1
		p, poly, dhPriv, err := dkg.NewDealer(suite, params, idx, rand.Reader)
		require.NoError(t, err)
		dealers[i] = &dealerSetup{index: idx, dhPriv: dhPriv, broadcast: p, poly: poly}
	}

	broadcasts := make([]*dkg.Participant, len(dealers))
	for i, d := range dealers {
		broadcasts[i] = d.broadcast
	}

	states := make([]*dkg.DistributedKeyGeneration, len(dealers))
	for i, d := range dealers {
		others := make([]*dkg.Participant, 0, len(dealers)-1)
		for j, b := range broadcasts {
			if j != i {
				others = append(others, b)
			}
		}
		state, _, err := dkg.NewStateInternal(suite, params, d.dhPriv, d.index, d.poly, others, false, rand.Reader)
		require.NoError(t, err)
		states[i] = state
	}

	allShares := make([][]*dkg.EncryptedSecretShare, len(dealers))
	for i, s := range states {
		shares, err := s.TheirEncryptedSecretShares()
		require.NoError(t, err)
		allShares[i] = shares
	}

	signingKeys := make(map[uint32]*keys.IndividualSigningKey, len(dealers))
	var groupKey *keys.GroupKey
	for i, s := range states {
		var incoming []*dkg.EncryptedSecretShare
		for j := range allShares {
			if j == i {
				continue
			}
			incoming = append(incoming, allShares[j]...)
		}
		_, err := s.ToRoundTwo(incoming)
		require.NoError(t, err)

		sk, gk, err := s.Finish()
		require.NoError(t, err)
		signingKeys[dealers[i].index] = sk
		groupKey = gk
	}

	return signingKeys, groupKey
}

func testSignSuite() ciphersuite.CipherSuite {
	return ciphersuite.Secp256k1Sha256{Context: []byte("frost-sign-e2e")}
}

func TestSignAggregateVerifyEndToEnd(t *testing.T) {
	suite := testSignSuite()
	params := dkg.ThresholdParameters{N: 5, T: 3}
	signingKeys, groupKey := runDKG(t, suite, params)

	signerIdx := []uint32{1, 3, 5}

	secretShares := make(map[uint32]*sign.SecretCommitmentShareList)
	publicByIndex := make(map[uint32]*sign.PublicCommitmentShareList)
	for _, idx := range signerIdx {
		pub, sec, err := sign.GenerateCommitmentShareLists(suite, idx, 1, rand.Reader)
		require.NoError(t, err)
		publicByIndex[idx] = pub
		secretShares[idx] = sec
	}

	message := []byte("threshold signature e2e test message")

	signerCommitments := make([]sign.SignerCommitments, 0, len(signerIdx))
	for _, idx := range signerIdx {
		pub := publicByIndex[idx]
		signerCommitments = append(signerCommitments, sign.SignerCommitments{
			Index:   idx,
			Hiding:  pub.Commitments[0][0],
			Binding: pub.Commitments[0][1],
		})
	}

	var partials []*sign.PartialSignature
	var R curve.Point
	for _, idx := range signerIdx {
		share := secretShares[idx].Commitments[0]
		partial, r, err := sign.Sign(suite, message, signingKeys[idx], share, signerCommitments, groupKey)
		require.NoError(t, err)
		partials = append(partials, partial)
		R = r
	}

	finalSig := sign.Aggregate(R, partials, suite.Group())
	require.NoError(t, finalSig.Verify(suite, groupKey, message))
}

func TestSignRejectsTamperedSignature(t *testing.T) {
	suite := testSignSuite()
	params := dkg.ThresholdParameters{N: 3, T: 2}
	signingKeys, groupKey := runDKG(t, suite, params)

	signerIdx := []uint32{1, 2}
	secretShares := make(map[uint32]*sign.SecretCommitmentShareList)
	publicByIndex := make(map[uint32]*sign.PublicCommitmentShareList)
	for _, idx := range signerIdx {
		pub, sec, err := sign.GenerateCommitmentShareLists(suite, idx, 1, rand.Reader)
		require.NoError(t, err)
		publicByIndex[idx] = pub
		secretShares[idx] = sec
	}

	message := []byte("a different message entirely")
	signerCommitments := make([]sign.SignerCommitments, 0, len(signerIdx))
	for _, idx := range signerIdx {
		pub := publicByIndex[idx]
		signerCommitments = append(signerCommitments, sign.SignerCommitments{
			Index:   idx,
			Hiding:  pub.Commitments[0][0],
			Binding: pub.Commitments[0][1],
		})
	}

	var partials []*sign.PartialSignature
	var R curve.Point
	for _, idx := range signerIdx {
		share := secretShares[idx].Commitments[0]
		partial, r, err := sign.Sign(suite, message, signingKeys[idx], share, signerCommitments, groupKey)
		require.NoError(t, err)
		partials = append(partials, partial)
		R = r
	}

	finalSig := sign.Aggregate(R, partials, suite.Group())
	require.NoError(t, finalSig.Verify(suite, groupKey, message))

	require.Error(t, finalSig.Verify(suite, groupKey, []byte("wrong message")))
}

func TestSignConsumedShareIsDropped(t *testing.T) {
	suite := testSignSuite()
	params := dkg.ThresholdParameters{N: 3, T: 2}
	signingKeys, groupKey := runDKG(t, suite, params)

	signerIdx := []uint32{1, 2}
	secretShares := make(map[uint32]*sign.SecretCommitmentShareList)
	publicByIndex := make(map[uint32]*sign.PublicCommitmentShareList)
	for _, idx := range signerIdx {
		pub, sec, err := sign.GenerateCommitmentShareLists(suite, idx, 2, rand.Reader)
		require.NoError(t, err)
		publicByIndex[idx] = pub
		secretShares[idx] = sec
	}

	message := []byte("sign once with the first share")
	signerCommitments := make([]sign.SignerCommitments, 0, len(signerIdx))
	for _, idx := range signerIdx {
		pub := publicByIndex[idx]
		signerCommitments = append(signerCommitments, sign.SignerCommitments{
			Index:   idx,
			Hiding:  pub.Commitments[0][0],
			Binding: pub.Commitments[0][1],
		})
	}

	usedShare := secretShares[1].Commitments[0]
	_, _, err := sign.Sign(suite, message, signingKeys[1], usedShare, signerCommitments, groupKey)
	require.NoError(t, err)

	secretShares[1].DropShare(usedShare)
	require.Len(t, secretShares[1].Commitments, 1)
}
