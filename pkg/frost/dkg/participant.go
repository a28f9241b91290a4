package dkg

import (
	"fmt"
	"io"

	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/math/curve"
	"github.com/luxfi/frost/pkg/math/polynomial"
)

// ThresholdParameters is the pair (n, t) of spec.md §3.
type ThresholdParameters struct {
	N uint32
	T uint32
}

// Validate checks 1 <= t <= n, returning ErrInvalidParameters otherwise.
func (p ThresholdParameters) Validate() error {
	if p.T == 0 || p.N == 0 || p.T > p.N {
		return frost.ErrInvalidParameters
	}
	return nil
}

// Participant is a DKG participant as broadcast in round one (spec.md §3):
// a dealer carries Commitments and ProofOfSecretKey; a signer (resharing
// recipient) carries neither.
type Participant struct {
	Index               uint32
	DHPublicKey         *keys.DiffieHellmanPublicKey
	Commitments         *VerifiableSecretSharingCommitment
	ProofOfSecretKey    *NizkPokOfSecretKey
	ProofOfDHPrivateKey *NizkPokOfSecretKey
}

// IsDealer reports whether this participant published polynomial
// commitments, i.e. whether it is a dealer rather than a plain signer.
func (p *Participant) IsDealer() bool { return p.Commitments != nil }

// PublicKey returns phi_0 of this participant's commitments, or nil for a
// signer.
func (p *Participant) PublicKey() curve.Point {
	if p.Commitments == nil {
		return nil
	}
	return p.Commitments.PublicKey()
}

// Equal compares participants by index, per spec.md §4.3's ordering rule.
func (p *Participant) Equal(other *Participant) bool { return p.Index == other.Index }

// Less orders participants by index. Equal indices are a protocol
// violation the caller must never admit (spec.md §9 Open Question); unlike
// the Rust original's PartialOrd returning None on equal indices, a
// participant set here refuses duplicates outright (see ParticipantSet.Add).
func (p *Participant) Less(other *Participant) bool { return p.Index < other.Index }

// newDealerOrSigner is the common constructor behind NewDealer, NewSigner,
// and Reshare, directly grounded on
// original_source/src/dkg/participant.rs's new_internal.
func newDealerOrSigner(
	suite ciphersuite.CipherSuite,
	params ThresholdParameters,
	index uint32,
	secretKey curve.Scalar,
	isSigner bool,
	rng io.Reader,
) (*Participant, *polynomial.Polynomial, *keys.DiffieHellmanPrivateKey, error) {
	group := suite.Group()

	dhPriv, dhPub, err := keys.GenerateDHKeypair(suite, rng)
	if err != nil {
		return nil, nil, nil, err
	}

	proofOfDH, err := Prove(suite, index, dhPriv.Scalar, dhPub.Point, rng)
	if err != nil {
		return nil, nil, nil, err
	}

	if isSigner {
		return &Participant{
			Index:               index,
			DHPublicKey:         dhPub,
			ProofOfDHPrivateKey: proofOfDH,
		}, nil, dhPriv, nil
	}

	coeffs := make([]curve.Scalar, params.T)
	if secretKey != nil {
		coeffs[0] = secretKey
	} else {
		a0, err := group.RandomScalar(rng)
		if err != nil {
			return nil, nil, nil, err
		}
		coeffs[0] = a0
	}
	for i := 1; i < int(params.T); i++ {
		a, err := group.RandomScalar(rng)
		if err != nil {
			return nil, nil, nil, err
		}
		coeffs[i] = a
	}
	poly := polynomial.New(group, coeffs)

	commitment := &VerifiableSecretSharingCommitment{
		Index:  index,
		Points: poly.Commit(),
	}

	proofOfSecretKey, err := Prove(suite, index, poly.Constant(), commitment.PublicKey(), rng)
	if err != nil {
		return nil, nil, nil, err
	}

	return &Participant{
		Index:               index,
		DHPublicKey:         dhPub,
		Commitments:         commitment,
		ProofOfSecretKey:    proofOfSecretKey,
		ProofOfDHPrivateKey: proofOfDH,
	}, poly, dhPriv, nil
}

// NewDealer constructs a dealer Participant: it samples t random
// coefficients, commits to them, and proves knowledge of both its DH
// private key and its polynomial's constant term (spec.md §4.3). Returns
// the Participant (to be broadcast), its private Polynomial, and its DH
// private key.
func NewDealer(suite ciphersuite.CipherSuite, params ThresholdParameters, index uint32, rng io.Reader) (*Participant, *polynomial.Polynomial, *keys.DiffieHellmanPrivateKey, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, nil, err
	}
	return newDealerOrSigner(suite, params, index, nil, false, rng)
}

// NewSigner constructs a resharing-recipient Participant: it carries no
// commitments or proof of secret key, only a DH keypair and its proof
// (spec.md §4.3).
func NewSigner(suite ciphersuite.CipherSuite, params ThresholdParameters, index uint32, rng io.Reader) (*Participant, *keys.DiffieHellmanPrivateKey, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	p, _, dhPriv, err := newDealerOrSigner(suite, params, index, nil, true, rng)
	return p, dhPriv, err
}

// Reshare constructs a dealer whose polynomial's constant term is the
// supplied signing share (so the new group secret equals the old one),
// then drives that dealer through round one of the DKG for the new signer
// set, returning the dealer Participant, the per-recipient encrypted
// shares, and the honest/misbehaving classification of the new set
// (spec.md §4.3).
func Reshare(
	suite ciphersuite.CipherSuite,
	newParams ThresholdParameters,
	oldSigningKey *keys.IndividualSigningKey,
	newSigners []*Participant,
	rng io.Reader,
) (*Participant, []*EncryptedSecretShare, *DKGParticipantList, error) {
	if err := newParams.Validate(); err != nil {
		return nil, nil, nil, err
	}

	dealer, poly, dhPriv, err := newDealerOrSigner(suite, newParams, oldSigningKey.Index, oldSigningKey.Key, false, rng)
	if err != nil {
		return nil, nil, nil, err
	}

	state, list, err := NewStateInternal(suite, newParams, dhPriv, oldSigningKey.Index, poly, newSigners, true, rng)
	if err != nil {
		return nil, nil, nil, err
	}

	shares, err := state.TheirEncryptedSecretShares()
	if err != nil {
		return nil, nil, nil, err
	}

	return dealer, shares, list, nil
}

func (p *Participant) MarshalBinary() ([]byte, error) {
	out := appendUint32(nil, p.Index)

	dhBytes, err := p.DHPublicKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = appendUint64(out, uint64(len(dhBytes)))
	out = append(out, dhBytes...)

	if p.Commitments != nil {
		cBytes, err := p.Commitments.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, 1)
		out = appendUint64(out, uint64(len(cBytes)))
		out = append(out, cBytes...)

		pBytes, err := p.ProofOfSecretKey.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = appendUint64(out, uint64(len(pBytes)))
		out = append(out, pBytes...)
	} else {
		out = append(out, 0)
	}

	proofBytes, err := p.ProofOfDHPrivateKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = appendUint64(out, uint64(len(proofBytes)))
	out = append(out, proofBytes...)

	return out, nil
}

func (p *Participant) UnmarshalBinary(group curve.Curve, b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("%w: participant: short buffer", frost.ErrDeserializationError)
	}
	p.Index = getUint32(b)
	b = b[4:]

	dhLen, b, err := readLenPrefixed(b)
	if err != nil {
		return err
	}
	p.DHPublicKey = &keys.DiffieHellmanPublicKey{}
	if err := p.DHPublicKey.UnmarshalBinary(group, dhLen); err != nil {
		return err
	}

	if len(b) < 1 {
		return fmt.Errorf("%w: participant: missing dealer flag", frost.ErrDeserializationError)
	}
	isDealer := b[0] == 1
	b = b[1:]

	if isDealer {
		var cBytes []byte
		cBytes, b, err = readLenPrefixed(b)
		if err != nil {
			return err
		}
		p.Commitments = &VerifiableSecretSharingCommitment{}
		if err := p.Commitments.UnmarshalBinary(group, cBytes); err != nil {
			return err
		}

		var pBytes []byte
		pBytes, b, err = readLenPrefixed(b)
		if err != nil {
			return err
		}
		p.ProofOfSecretKey = &NizkPokOfSecretKey{}
		if err := p.ProofOfSecretKey.UnmarshalBinary(group, pBytes); err != nil {
			return err
		}
	}

	var proofBytes []byte
	proofBytes, b, err = readLenPrefixed(b)
	if err != nil {
		return err
	}
	p.ProofOfDHPrivateKey = &NizkPokOfSecretKey{}
	if err := p.ProofOfDHPrivateKey.UnmarshalBinary(group, proofBytes); err != nil {
		return err
	}

	if len(b) != 0 {
		return fmt.Errorf("%w: participant: trailing bytes", frost.ErrDeserializationError)
	}
	return nil
}

func readLenPrefixed(b []byte) (field, rest []byte, err error) {
	if len(b) < 8 {
		return nil, nil, fmt.Errorf("%w: short length prefix", frost.ErrDeserializationError)
	}
	n := getUint64(b)
	b = b[8:]
	if uint64(len(b)) < n {
		return nil, nil, fmt.Errorf("%w: short field", frost.ErrDeserializationError)
	}
	return b[:n], b[n:], nil
}

// ParticipantSet is the set of round-one broadcasts a DKG run tracks,
// refusing duplicate indices outright (spec.md §9 Open Question).
type ParticipantSet struct {
	byIndex map[uint32]*Participant
}

// NewParticipantSet builds an empty set.
func NewParticipantSet() *ParticipantSet {
	return &ParticipantSet{byIndex: make(map[uint32]*Participant)}
}

// Add inserts p, returning ErrDuplicateIndex if its index is already
// present.
func (s *ParticipantSet) Add(p *Participant) error {
	if _, ok := s.byIndex[p.Index]; ok {
		return frost.ErrDuplicateIndex
	}
	s.byIndex[p.Index] = p
	return nil
}

// Get returns the participant at index, or nil if absent.
func (s *ParticipantSet) Get(index uint32) *Participant { return s.byIndex[index] }

// All returns every participant in the set, in no particular order (set
// aggregation is commutative per spec.md §5).
func (s *ParticipantSet) All() []*Participant {
	out := make([]*Participant, 0, len(s.byIndex))
	for _, p := range s.byIndex {
		out = append(out, p)
	}
	return out
}
