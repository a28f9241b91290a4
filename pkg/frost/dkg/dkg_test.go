package dkg_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost"
	"github.com/luxfi/frost/pkg/frost/dkg"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/math/polynomial"
)

type dealerSetup struct {
	index     uint32
	dhPriv    *keys.DiffieHellmanPrivateKey
	broadcast *dkg.Participant
	poly      *polynomial.Polynomial
}

func newDealers(t *testing.T, suite ciphersuite.CipherSuite, params dkg.ThresholdParameters, n uint32) []*dealerSetup {
	t.Helper()
	dealers := make([]*dealerSetup, n)
	for i := uint32(0); i < n; i++ {
		idx := i + 1
		p, poly, dhPriv, err := dkg.NewDealer(suite, params, idx, rand.Reader)
		require.NoError(t, err)
		dealers[i] = &dealerSetup{index: idx, dhPriv: dhPriv, broadcast: p, poly: poly}
	}
	return dealers
}

// runDKG drives every dealer's DistributedKeyGeneration from round one
// through Finish, returning each participant's final signing key, the
// shared group key, and the accepted commitments.
func runDKG(t *testing.T, suite ciphersuite.CipherSuite, params dkg.ThresholdParameters, dealers []*dealerSetup) (map[uint32]*keys.IndividualSigningKey, *keys.GroupKey, []*dkg.VerifiableSecretSharingCommitment) {
	t.Helper()

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
	var commitments []*dkg.VerifiableSecretSharingCommitment
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
		commitments = s.Commitments()
	}

	return signingKeys, groupKey, commitments
}

func TestDKGFullRunAndSigningShareVerification(t *testing.T) {
	suite := testSuite()
	params := dkg.ThresholdParameters{N: 3, T: 2}
	dealers := newDealers(t, suite, params, params.N)

	signingKeys, groupKey, commitments := runDKG(t, suite, params, dealers)
	require.Len(t, commitments, 3)
	require.NotNil(t, groupKey)

	for idx, sk := range signingKeys {
		vk := sk.ToPublic()
		require.NoError(t, vk.Verify(suite.Group(), commitments))

		derived, err := keys.GenerateFromCommitments(suite.Group(), idx, commitments)
		require.NoError(t, err)
		require.True(t, derived.Share.Equal(vk.Share))
	}
}

func TestDKGParticipantsAgreeOnGroupKey(t *testing.T) {
	suite := testSuite()
	params := dkg.ThresholdParameters{N: 5, T: 3}
	dealers := newDealers(t, suite, params, params.N)

	_, groupKey, commitments := runDKG(t, suite, params, dealers)
	require.Len(t, commitments, int(params.N))

	want, err := groupKey.MarshalBinary()
	require.NoError(t, err)

	for i := uint32(1); i <= params.N; i++ {
		vk, err := keys.GenerateFromCommitments(suite.Group(), i, commitments)
		require.NoError(t, err)
		require.NoError(t, vk.Verify(suite.Group(), commitments))

		dealerIndices := make([]uint32, len(commitments))
		for j, c := range commitments {
			dealerIndices[j] = c.Index
		}
		lambdas, err := polynomial.Lagrange(suite.Group(), dealerIndices)
		require.NoError(t, err)

		recombined := suite.Group().NewPoint()
		for _, c := range commitments {
			recombined = recombined.Add(lambdas[c.Index].Act(c.PublicKey()))
		}
		got, err := (&keys.GroupKey{Key: recombined}).MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestDKGExcludesDealerWithBadDHProof(t *testing.T) {
	suite := testSuite()
	params := dkg.ThresholdParameters{N: 3, T: 2}
	dealers := newDealers(t, suite, params, params.N)

	tampered, err := suite.Group().RandomScalar(rand.Reader)
	require.NoError(t, err)
	dealers[2].broadcast.ProofOfDHPrivateKey.Z = tampered

	broadcasts := []*dkg.Participant{dealers[1].broadcast, dealers[2].broadcast}
	state1, list1, err := dkg.NewStateInternal(suite, params, dealers[0].dhPriv, dealers[0].index, dealers[0].poly, broadcasts, false, rand.Reader)
	require.NoError(t, err)
	require.Contains(t, list1.Misbehaving, dealers[2].index)
	require.Contains(t, list1.Honest, dealers[1].index)
	require.NotContains(t, list1.Honest, dealers[2].index)

	shares1, err := state1.TheirEncryptedSecretShares()
	require.NoError(t, err)
	for _, s := range shares1 {
		require.NotEqual(t, dealers[2].index, s.ReceiverIndex)
	}
}

func TestDKGExcludesDealerWithBadCommitmentProof(t *testing.T) {
	suite := testSuite()
	params := dkg.ThresholdParameters{N: 3, T: 2}
	dealers := newDealers(t, suite, params, params.N)

	other, err := suite.Group().RandomScalar(rand.Reader)
	require.NoError(t, err)
	dealers[2].broadcast.ProofOfSecretKey.Z = other

	broadcasts := []*dkg.Participant{dealers[1].broadcast, dealers[2].broadcast}
	_, list1, err := dkg.NewStateInternal(suite, params, dealers[0].dhPriv, dealers[0].index, dealers[0].poly, broadcasts, false, rand.Reader)
	require.NoError(t, err)
	require.Contains(t, list1.Misbehaving, dealers[2].index)
}

func TestDKGInsufficientHonestDealersFails(t *testing.T) {
	suite := testSuite()
	params := dkg.ThresholdParameters{N: 3, T: 3}
	dealers := newDealers(t, suite, params, params.N)

	tampered, err := suite.Group().RandomScalar(rand.Reader)
	require.NoError(t, err)
	dealers[2].broadcast.ProofOfDHPrivateKey.Z = tampered

	broadcasts := []*dkg.Participant{dealers[1].broadcast, dealers[2].broadcast}
	state1, list1, err := dkg.NewStateInternal(suite, params, dealers[0].dhPriv, dealers[0].index, dealers[0].poly, broadcasts, false, rand.Reader)
	require.NoError(t, err)
	require.Contains(t, list1.Misbehaving, dealers[2].index)

	shares, err := state1.TheirEncryptedSecretShares()
	require.NoError(t, err)

	broadcasts2 := []*dkg.Participant{dealers[0].broadcast, dealers[2].broadcast}
	state2, _, err := dkg.NewStateInternal(suite, params, dealers[1].dhPriv, dealers[1].index, dealers[1].poly, broadcasts2, false, rand.Reader)
	require.NoError(t, err)
	shares2, err := state2.TheirEncryptedSecretShares()
	require.NoError(t, err)

	_, err = state1.ToRoundTwo(append(shares, shares2...))
	require.ErrorIs(t, err, frost.ErrInsufficientShares)
}

// TestReshareProducesConsistentSigningKey exercises spec.md §8's reshare
// invariant: resharing the old group's secret to a new committee and
// running that committee's DKG to completion must yield the same GroupKey
// as the old run, because each resharing dealer's polynomial constant term
// is its own old Shamir share and Finish's Lagrange-weighted combination
// reconstructs the same implied secret from any sufficient subset of those
// shares (spec.md §4.4, §4.5; original_source/src/keys.rs).
//
// All three old dealers reshare here (oldParams.T=2 would suffice, but
// newParams.T=3 requires at least newParams.T honest dealers in the new
// round since a pure resharing signer, unlike an ordinary dealer, does not
// count toward its own threshold - see ToRoundTwo's isReshare branch).
func TestReshareProducesConsistentSigningKey(t *testing.T) {
	suite := testSuite()
	oldParams := dkg.ThresholdParameters{N: 3, T: 2}
	dealers := newDealers(t, suite, oldParams, oldParams.N)
	oldSigningKeys, oldGroupKey, _ := runDKG(t, suite, oldParams, dealers)

	newParams := dkg.ThresholdParameters{N: 4, T: 3}

	// New signer indices are chosen disjoint from the old dealers' indices
	// (1..oldParams.N): a resharing dealer keeps its old index as its index
	// in the new round (dkg.Reshare), so an overlapping new-signer index
	// would collide with one of them in NewStateInternal's participant set.
	newSigners := make([]*dkg.Participant, newParams.N)
	newSignerDH := make([]*keys.DiffieHellmanPrivateKey, newParams.N)
	for i := uint32(0); i < newParams.N; i++ {
		idx := oldParams.N + 1 + i
		p, dh, err := dkg.NewSigner(suite, newParams, idx, rand.Reader)
		require.NoError(t, err)
		newSigners[i] = p
		newSignerDH[i] = dh
	}

	dealerBroadcasts := make([]*dkg.Participant, len(dealers))
	var allDealerShares []*dkg.EncryptedSecretShare
	for i, d := range dealers {
		oldDealerKey := oldSigningKeys[d.index]
		dealerBroadcast, dealerShares, list, err := dkg.Reshare(suite, newParams, oldDealerKey, newSigners, rand.Reader)
		require.NoError(t, err)
		require.Empty(t, list.Misbehaving)
		require.Len(t, dealerShares, int(newParams.N))
		require.True(t, dealerBroadcast.IsDealer())

		dealerBroadcasts[i] = dealerBroadcast
		allDealerShares = append(allDealerShares, dealerShares...)
	}

	for i := range newSignerDH {
		var mine *dkg.EncryptedSecretShare
		for _, s := range allDealerShares {
			if s.SenderIndex == dealerBroadcasts[0].Index && s.ReceiverIndex == newSigners[i].Index {
				mine = s
				break
			}
		}
		require.NotNil(t, mine)
	}

	oldGroupKeyBytes, err := oldGroupKey.MarshalBinary()
	require.NoError(t, err)

	for i := uint32(0); i < newParams.N; i++ {
		others := make([]*dkg.Participant, len(dealerBroadcasts))
		copy(others, dealerBroadcasts)

		state, _, err := dkg.NewStateInternal(suite, newParams, newSignerDH[i], newSigners[i].Index, nil, others, true, rand.Reader)
		require.NoError(t, err)

		var incoming []*dkg.EncryptedSecretShare
		for _, s := range allDealerShares {
			if s.ReceiverIndex == newSigners[i].Index {
				incoming = append(incoming, s)
			}
		}

		_, err = state.ToRoundTwo(incoming)
		require.NoError(t, err)

		_, newGroupKey, err := state.Finish()
		require.NoError(t, err)

		newGroupKeyBytes, err := newGroupKey.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, oldGroupKeyBytes, newGroupKeyBytes)
	}
}
