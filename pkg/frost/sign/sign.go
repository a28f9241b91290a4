package sign

import (
	"fmt"
	"sort"

	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/math/curve"
	"github.com/luxfi/frost/pkg/math/polynomial"
)

const (
	rhoContextTag = "rho"
	challengeTag  = "chal"
)

// SignerCommitments pairs a signer's index with its published (D, E)
// commitment for one signing session, the S set of spec.md §4.7.
type SignerCommitments struct {
	Index   uint32
	Hiding  curve.Point
	Binding curve.Point
}

// PartialSignature is one signer's contribution zᵢ to a threshold
// signature, spec.md §4.7.
type PartialSignature struct {
	Index uint32
	Z     curve.Scalar
}

// Signature is a completed Schnorr signature (R, z), verifiable against a
// GroupKey and the signed message.
type Signature struct {
	R curve.Point
	Z curve.Scalar
}

// encodeSignerCommitments builds the encode(S, {(D, E)}) byte string fed
// into the binding factor hash, in ascending index order so that every
// signer derives an identical encoding regardless of message-arrival
// order (spec.md §5's commutativity requirement).
func encodeSignerCommitments(signers []SignerCommitments) []byte {
	sorted := make([]SignerCommitments, len(signers))
	copy(sorted, signers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var out []byte
	for _, s := range sorted {
		out = appendUint32(out, s.Index)
		out = append(out, s.Hiding.Bytes()...)
		out = append(out, s.Binding.Bytes()...)
	}
	return out
}

// bindingFactor computes ρⱼ = hash_to_field(ctx || "rho", j || m ||
// encode(S, {(D, E)})), spec.md §4.7.
func bindingFactor(suite ciphersuite.CipherSuite, index uint32, message []byte, signers []SignerCommitments) (curve.Scalar, error) {
	msg := appendUint32(nil, index)
	msg = append(msg, message...)
	msg = append(msg, encodeSignerCommitments(signers)...)
	return suite.HashToField([]byte(rhoContextTag), msg)
}

// GroupCommitment computes R = Σⱼ (Dⱼ + ρⱼ·Eⱼ) over every signer in the
// session, spec.md §4.7.
func GroupCommitment(suite ciphersuite.CipherSuite, message []byte, signers []SignerCommitments) (curve.Point, map[uint32]curve.Scalar, error) {
	group := suite.Group()
	R := group.NewPoint()
	rhos := make(map[uint32]curve.Scalar, len(signers))

	for _, s := range signers {
		rho, err := bindingFactor(suite, s.Index, message, signers)
		if err != nil {
			return nil, nil, fmt.Errorf("sign: binding factor for %d: %w", s.Index, err)
		}
		rhos[s.Index] = rho
		R = R.Add(s.Hiding).Add(rho.Act(s.Binding))
	}
	return R, rhos, nil
}

// challenge computes c = hash_to_field(ctx || "chal", R || Y || m),
// spec.md §4.7.
func challenge(suite ciphersuite.CipherSuite, R curve.Point, groupKey *keys.GroupKey, message []byte) (curve.Scalar, error) {
	msg := append(append([]byte{}, R.Bytes()...), groupKey.Key.Bytes()...)
	msg = append(msg, message...)
	return suite.HashToField([]byte(challengeTag), msg)
}

// Sign produces this signer's PartialSignature zᵢ = dᵢ + ρᵢ·eᵢ +
// λᵢ(S)·s_i·c for a session, consuming (and zeroizing) the supplied
// CommitmentShare. Callers must call SecretCommitmentShareList.DropShare
// on the same share immediately after, per spec.md §4.6's single-use
// rule; DropShare zeroizes the share it is given, so calling it before
// Sign leaves Sign with zero nonces. Sign does not mutate the caller's
// list itself.
func Sign(
	suite ciphersuite.CipherSuite,
	message []byte,
	signingKey *keys.IndividualSigningKey,
	share *CommitmentShare,
	signers []SignerCommitments,
	groupKey *keys.GroupKey,
) (*PartialSignature, curve.Point, error) {
	group := suite.Group()

	indices := make([]uint32, len(signers))
	for i, s := range signers {
		indices[i] = s.Index
	}
	lambdas, err := polynomial.Lagrange(group, indices)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", frost.ErrDuplicateShares, err)
	}
	lambda, ok := lambdas[signingKey.Index]
	if !ok {
		return nil, nil, fmt.Errorf("sign: signer %d not present in session signer set", signingKey.Index)
	}

	R, rhos, err := GroupCommitment(suite, message, signers)
	if err != nil {
		return nil, nil, err
	}
	rho, ok := rhos[signingKey.Index]
	if !ok {
		return nil, nil, fmt.Errorf("sign: signer %d missing binding factor", signingKey.Index)
	}

	c, err := challenge(suite, R, groupKey, message)
	if err != nil {
		return nil, nil, fmt.Errorf("sign: derive challenge: %w", err)
	}

	z := share.Hiding.Secret.Add(rho.Mul(share.Binding.Secret)).Add(lambda.Mul(signingKey.Key).Mul(c))
	share.Zeroize()

	return &PartialSignature{Index: signingKey.Index, Z: z}, R, nil
}

// VerifyPartial checks a single PartialSignature against the session's
// group commitment and the signer's IndividualVerifyingKey, letting a
// coordinator identify a misbehaving signer before aggregation (spec.md
// §4.7's "partial signature ... validation").
func VerifyPartial(
	suite ciphersuite.CipherSuite,
	message []byte,
	partial *PartialSignature,
	signerCommitment SignerCommitments,
	rho curve.Scalar,
	groupKey *keys.GroupKey,
	R curve.Point,
	verifyingKey *keys.IndividualVerifyingKey,
	lambda curve.Scalar,
) error {
	c, err := challenge(suite, R, groupKey, message)
	if err != nil {
		return fmt.Errorf("sign: derive challenge: %w", err)
	}

	lhs := partial.Z.ActOnBase()
	rhs := signerCommitment.Hiding.
		Add(rho.Act(signerCommitment.Binding)).
		Add(lambda.Mul(c).Act(verifyingKey.Share))
	if !lhs.Equal(rhs) {
		return frost.ErrInvalidShare
	}
	return nil
}

// Aggregate sums a threshold's worth of PartialSignatures into a final
// Signature, z = Σᵢ zᵢ, and returns it without re-verifying the individual
// partials; callers that have not already validated each partial via
// VerifyPartial should do so first.
func Aggregate(R curve.Point, partials []*PartialSignature, group curve.Curve) *Signature {
	z := group.NewScalar()
	for _, p := range partials {
		z = z.Add(p.Z)
	}
	return &Signature{R: R, Z: z}
}

// Verify checks z·B == R + c·Y, the final Schnorr verification of spec.md
// §4.7.
func (sig *Signature) Verify(suite ciphersuite.CipherSuite, groupKey *keys.GroupKey, message []byte) error {
	c, err := challenge(suite, sig.R, groupKey, message)
	if err != nil {
		return fmt.Errorf("sign: derive challenge: %w", err)
	}
	lhs := sig.Z.ActOnBase()
	rhs := sig.R.Add(c.Act(groupKey.Key))
	if !lhs.Equal(rhs) {
		return frost.ErrInvalidShare
	}
	return nil
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (sig *Signature) MarshalBinary() ([]byte, error) {
	out := append([]byte{}, sig.R.Bytes()...)
	out = append(out, sig.Z.Bytes()...)
	return out, nil
}

func (sig *Signature) UnmarshalBinary(group curve.Curve, b []byte) error {
	pointSize, scalarSize := group.PointSize(), group.ScalarSize()
	if len(b) != pointSize+scalarSize {
		return fmt.Errorf("%w: signature: bad length", frost.ErrDeserializationError)
	}
	R, err := group.PointFromBytes(b[:pointSize])
	if err != nil {
		return fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	Z, err := group.ScalarFromBytes(b[pointSize:])
	if err != nil {
		return fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	sig.R, sig.Z = R, Z
	return nil
}
