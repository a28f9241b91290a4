// Package dkg implements the RICE-FROST-style distributed key generation
// and resharing state machine of spec.md §4.3/§4.4: round one (commitment
// and proof broadcast), round two (encrypted share distribution and
// verification), and finalization into long-lived key material.
//
// Grounded on spec.md §4.3/§4.4's DistributedKeyGeneration description and
// on original_source/src/dkg/participant.rs, which references the
// DistributedKeyGeneration/DKGParticipantList/new_state_internal state
// machine this package implements (the state machine's own source file,
// dkg/mod.rs, was not among the retrieved original_source files). The
// RoundOne/RoundTwo/Finished states are plain Go state transitions rather
// than participant.rs's phantom-typed states, since the module has no
// type-level phantom-state idiom in the retrieved corpus.
package dkg

import (
	"fmt"
	"io"
	"sort"

	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/math/curve"
	"github.com/luxfi/frost/pkg/math/polynomial"
)

// DKGParticipantList classifies every participant a DKG run considered,
// per spec.md §4.4: participants whose broadcasts verified are Honest,
// everyone else is Misbehaving. A run never hard-fails on a single bad
// peer; it excludes them and continues provided at least t honest dealers
// remain.
type DKGParticipantList struct {
	Honest      []uint32
	Misbehaving []uint32
}

func (l *DKGParticipantList) markMisbehaving(index uint32) {
	for _, i := range l.Misbehaving {
		if i == index {
			return
		}
	}
	l.Misbehaving = append(l.Misbehaving, index)
}

// phase identifies the state machine's current round, mirroring the
// type-level RoundOne/RoundTwo/Finished states spec.md §4.4 describes (and
// that original_source/src/dkg/participant.rs's DistributedKeyGeneration
// references, though its own phantom-typed definition lives in dkg/mod.rs,
// not among the retrieved original_source files).
type phase int

const (
	phaseRoundOne phase = iota
	phaseRoundTwo
	phaseFinished
)

// DistributedKeyGeneration drives one participant's view of a DKG or
// resharing run from round one through finalization (spec.md §4.4). It is
// a single-threaded, cooperative state machine: every method call
// represents one local processing step, and the caller is responsible for
// transporting the Participant broadcasts and EncryptedSecretShares
// between peers (spec.md §5).
type DistributedKeyGeneration struct {
	suite  ciphersuite.CipherSuite
	params ThresholdParameters

	index  uint32
	dhPriv *keys.DiffieHellmanPrivateKey

	poly *polynomial.Polynomial // nil for a signer-only participant (pure resharing recipient)

	isReshare bool

	others *ParticipantSet
	list   *DKGParticipantList

	state phase

	theirShares map[uint32]*EncryptedSecretShare // this participant's outgoing shares, by receiver
	myShares    map[uint32]curve.Scalar          // decrypted shares this participant received, by sender
}

// NewStateInternal constructs a DistributedKeyGeneration as participant
// index, broadcasting poly's commitments (if poly is non-nil; a nil poly
// means index is a pure resharing recipient with no dealer role) against
// the other round-one broadcasts in others. isReshare marks a resharing
// run: ToRoundTwo then does not count this participant's own polynomial
// toward the threshold. It places no restriction on whether the broadcasts
// in others carry commitments. Grounded on original_source/src/dkg/participant.rs's reshare and
// spec.md §4.4's new_state_internal description (the function's own
// implementation lives in dkg/mod.rs, which was not among the retrieved
// original_source files).
func NewStateInternal(
	suite ciphersuite.CipherSuite,
	params ThresholdParameters,
	dhPriv *keys.DiffieHellmanPrivateKey,
	index uint32,
	poly *polynomial.Polynomial,
	others []*Participant,
	isReshare bool,
	rng io.Reader,
) (*DistributedKeyGeneration, *DKGParticipantList, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	set := NewParticipantSet()
	list := &DKGParticipantList{}
	for _, p := range others {
		if p.Index == index {
			continue
		}
		if err := set.Add(p); err != nil {
			return nil, nil, err
		}
	}

	d := &DistributedKeyGeneration{
		suite:       suite,
		params:      params,
		index:       index,
		dhPriv:      dhPriv,
		poly:        poly,
		isReshare:   isReshare,
		others:      set,
		list:        list,
		state:       phaseRoundOne,
		theirShares: make(map[uint32]*EncryptedSecretShare),
		myShares:    make(map[uint32]curve.Scalar),
	}

	if err := d.verifyRoundOneBroadcasts(); err != nil {
		return nil, nil, err
	}
	if err := d.computeOutgoingShares(rng); err != nil {
		return nil, nil, err
	}
	d.state = phaseRoundTwo

	return d, d.list, nil
}

// verifyRoundOneBroadcasts implements spec.md §4.4's round-one checks: a
// dealer's DH proof and (when it published commitments) its proof of
// knowledge of a0 must both verify, or the dealer is classified
// Misbehaving and excluded from secret-share distribution without ever
// attempting decryption of anything it sent.
func (d *DistributedKeyGeneration) verifyRoundOneBroadcasts() error {
	for _, p := range d.others.All() {
		if err := Verify(d.suite, p.Index, p.DHPublicKey.Point, p.ProofOfDHPrivateKey); err != nil {
			d.list.markMisbehaving(p.Index)
			continue
		}
		if p.Commitments != nil {
			if uint32(len(p.Commitments.Points)) != d.params.T {
				d.list.markMisbehaving(p.Index)
				continue
			}
			if err := Verify(d.suite, p.Index, p.Commitments.PublicKey(), p.ProofOfSecretKey); err != nil {
				d.list.markMisbehaving(p.Index)
				continue
			}
		}
		d.list.Honest = append(d.list.Honest, p.Index)
	}
	sort.Slice(d.list.Honest, func(i, j int) bool { return d.list.Honest[i] < d.list.Honest[j] })
	return nil
}

// computeOutgoingShares evaluates this participant's polynomial at every
// surviving honest peer and encrypts the result under their DH shared
// secret (spec.md §4.4 step 3). A participant with no polynomial (a pure
// resharing signer) has nothing to distribute.
func (d *DistributedKeyGeneration) computeOutgoingShares(rng io.Reader) error {
	if d.poly == nil {
		return nil
	}
	for _, idx := range d.list.Honest {
		peer := d.others.Get(idx)
		shared := d.dhPriv.SharedSecret(peer.DHPublicKey)
		x := d.suite.Group().ScalarFromUint32(idx)
		value := d.poly.Evaluate(x)
		enc, err := encryptShare(d.suite, shared, d.index, idx, value)
		if err != nil {
			return fmt.Errorf("dkg: encrypt share for %d: %w", idx, err)
		}
		d.theirShares[idx] = enc
		value.Zeroize()
	}
	return nil
}

// TheirEncryptedSecretShares returns every encrypted share this
// participant computed for its round-one peers in round two, in no
// particular order. Callers transport these out-of-band to their
// respective receivers.
func (d *DistributedKeyGeneration) TheirEncryptedSecretShares() ([]*EncryptedSecretShare, error) {
	if d.state < phaseRoundTwo {
		return nil, fmt.Errorf("dkg: round one not complete")
	}
	out := make([]*EncryptedSecretShare, 0, len(d.theirShares))
	for _, e := range d.theirShares {
		out = append(out, e)
	}
	return out, nil
}

// ToRoundTwo consumes the EncryptedSecretShares this participant received
// from its round-one peers (one per honest dealer, addressed to this
// participant's index), decrypting and Feldman-verifying each against its
// sender's published commitment (spec.md §4.4 round two step 1-2). A share
// that fails decryption or verification marks its sender Misbehaving and
// is dropped rather than aborting the run, provided shares from at least t
// dealers were accepted (counting this participant's own polynomial
// outside a resharing run); otherwise it returns ErrInsufficientShares.
func (d *DistributedKeyGeneration) ToRoundTwo(shares []*EncryptedSecretShare) (*DKGParticipantList, error) {
	if d.state != phaseRoundTwo {
		return nil, fmt.Errorf("dkg: not in round two")
	}

	group := d.suite.Group()
	x := group.ScalarFromUint32(d.index)

	for _, share := range shares {
		if share.ReceiverIndex != d.index {
			continue
		}
		sender := d.others.Get(share.SenderIndex)
		if sender == nil || sender.Commitments == nil {
			continue
		}
		if !containsUint32(d.list.Honest, share.SenderIndex) {
			continue
		}

		shared := d.dhPriv.SharedSecret(sender.DHPublicKey)
		value, err := decryptShare(d.suite, shared, share)
		if err != nil {
			d.demote(share.SenderIndex)
			continue
		}

		expected := polynomial.EvaluateCommitment(group, sender.Commitments.Points, x)
		if !value.ActOnBase().Equal(expected) {
			value.Zeroize()
			d.demote(share.SenderIndex)
			continue
		}

		d.myShares[share.SenderIndex] = value
	}

	acceptedCount := uint32(len(d.myShares))
	if !d.isReshare {
		// A pure resharing signer contributes no commitment of its own and
		// does not count toward its own threshold; an ordinary dealer does.
		if d.poly != nil {
			acceptedCount++
		}
	}
	if acceptedCount < d.params.T {
		return d.list, frost.ErrInsufficientShares
	}

	d.state = phaseFinished
	return d.list, nil
}

func (d *DistributedKeyGeneration) demote(index uint32) {
	d.list.markMisbehaving(index)
	filtered := d.list.Honest[:0]
	for _, i := range d.list.Honest {
		if i != index {
			filtered = append(filtered, i)
		}
	}
	d.list.Honest = filtered
}

func containsUint32(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Finish combines every accepted share (and, for a dealer, this
// participant's own polynomial evaluated at its own index) into a final
// IndividualSigningKey, and combines every honest dealer's public key
// contribution into the GroupKey, per spec.md §4.4's "Finalize" step.
//
// The combination is weighted by Lagrange coefficients taken over the
// dealer index set, exactly as keys.GenerateFromCommitments reconstructs
// any participant's IndividualVerifyingKey from the same dealers'
// published commitments (spec.md §4.5; original_source/src/keys.rs's
// generate_from_commitments). Using a plain sum here instead would make
// s_i * B disagree with GenerateFromCommitments(i) for any dealer set
// whose per-dealer contributions aren't already equal, so the two must
// share the same weights. Once combined, Finish cross-checks its own
// result against GenerateFromCommitments before returning, per spec.md
// §4.4's finalize-time ShareVerificationError check.
//
// All intermediate scalars are zeroized once combined.
func (d *DistributedKeyGeneration) Finish() (*keys.IndividualSigningKey, *keys.GroupKey, error) {
	if d.state != phaseFinished {
		return nil, nil, fmt.Errorf("dkg: round two not complete")
	}

	group := d.suite.Group()
	x := group.ScalarFromUint32(d.index)

	dealerIndices := make([]uint32, 0, len(d.myShares)+1)
	if d.poly != nil {
		dealerIndices = append(dealerIndices, d.index)
	}
	for senderIdx := range d.myShares {
		dealerIndices = append(dealerIndices, senderIdx)
	}

	lambdas, err := polynomial.Lagrange(group, dealerIndices)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", frost.ErrDuplicateShares, err)
	}

	secret := group.NewScalar()
	groupKey := group.NewPoint()

	if d.poly != nil {
		own := d.poly.Evaluate(x)
		lambda := lambdas[d.index]
		secret = secret.Add(lambda.Mul(own))
		groupKey = groupKey.Add(lambda.Act(d.poly.Commit()[0]))
		own.Zeroize()
	}

	for senderIdx, value := range d.myShares {
		lambda := lambdas[senderIdx]
		secret = secret.Add(lambda.Mul(value))
		value.Zeroize()

		sender := d.others.Get(senderIdx)
		groupKey = groupKey.Add(lambda.Act(sender.Commitments.PublicKey()))
	}

	signingKey := &keys.IndividualSigningKey{Index: d.index, Key: secret}

	verifying, err := keys.GenerateFromCommitments(group, d.index, d.Commitments())
	if err != nil {
		return nil, nil, err
	}
	if !verifying.Share.Equal(secret.ActOnBase()) {
		return nil, nil, frost.ErrShareVerificationError
	}

	return signingKey, &keys.GroupKey{Key: groupKey}, nil
}

// Commitments returns the set of VerifiableSecretSharingCommitment
// published by every honest dealer this run accepted, used by peers to
// independently derive IndividualVerifyingKeys via
// keys.GenerateFromCommitments (spec.md §4.5).
func (d *DistributedKeyGeneration) Commitments() []*VerifiableSecretSharingCommitment {
	out := make([]*VerifiableSecretSharingCommitment, 0, len(d.list.Honest))
	if d.poly != nil {
		out = append(out, &VerifiableSecretSharingCommitment{Index: d.index, Points: d.poly.Commit()})
	}
	for _, idx := range d.list.Honest {
		p := d.others.Get(idx)
		if p != nil && p.Commitments != nil {
			out = append(out, p.Commitments)
		}
	}
	return out
}
