// Package keys implements the long-lived key material of spec.md §3: the
// Diffie-Hellman keypair used for share encryption, each participant's
// signing share and verification share, and the group verification key.
//
// Grounded on original_source/src/keys.rs (DiffieHellmanPrivateKey,
// DiffieHellmanPublicKey, IndividualSigningKey, IndividualVerifyingKey,
// GroupKey, and IndividualVerifyingKey::{verify, generate_from_commitments}).
package keys

import (
	"fmt"
	"io"

	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost"
	"github.com/luxfi/frost/pkg/math/curve"
	"github.com/luxfi/frost/pkg/math/polynomial"
)

// DiffieHellmanPrivateKey is the private half of a participant's DH
// keypair, used to derive the symmetric key that encrypts and decrypts
// shares during the DKG. Zeroed on Zeroize.
type DiffieHellmanPrivateKey struct {
	Scalar curve.Scalar
}

// GenerateDHKeypair samples a fresh Diffie-Hellman keypair.
func GenerateDHKeypair(suite ciphersuite.CipherSuite, rng io.Reader) (*DiffieHellmanPrivateKey, *DiffieHellmanPublicKey, error) {
	s, err := suite.Group().RandomScalar(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("keys: generate dh keypair: %w", err)
	}
	priv := &DiffieHellmanPrivateKey{Scalar: s}
	pub := &DiffieHellmanPublicKey{Point: s.ActOnBase()}
	return priv, pub, nil
}

// SharedSecret computes the Diffie-Hellman shared point d * D for use as
// input key material to the share-encryption AEAD (spec.md §4.4 step 3).
func (k *DiffieHellmanPrivateKey) SharedSecret(peer *DiffieHellmanPublicKey) curve.Point {
	return k.Scalar.Act(peer.Point)
}

// Zeroize wipes the private scalar.
func (k *DiffieHellmanPrivateKey) Zeroize() {
	if k == nil || k.Scalar == nil {
		return
	}
	k.Scalar.Zeroize()
}

func (k *DiffieHellmanPrivateKey) MarshalBinary() ([]byte, error) {
	return k.Scalar.Bytes(), nil
}

func (k *DiffieHellmanPrivateKey) UnmarshalBinary(group curve.Curve, b []byte) error {
	s, err := group.ScalarFromBytes(b)
	if err != nil {
		return fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	k.Scalar = s
	return nil
}

// DiffieHellmanPublicKey is the public half of a participant's DH keypair.
type DiffieHellmanPublicKey struct {
	Point curve.Point
}

func (k *DiffieHellmanPublicKey) MarshalBinary() ([]byte, error) {
	return k.Point.Bytes(), nil
}

func (k *DiffieHellmanPublicKey) UnmarshalBinary(group curve.Curve, b []byte) error {
	p, err := group.PointFromBytes(b)
	if err != nil {
		return fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	k.Point = p
	return nil
}

// IndividualSigningKey is a participant's long-lived secret share of the
// group signing key, s_i = sum_j lambda_j(J) * f_j(i) over the set J of
// dealers the participant accepted during the DKG, with lambda_j(J) the
// Lagrange coefficient of j over J (see dkg.Finish). Zeroed on Zeroize.
type IndividualSigningKey struct {
	Index uint32
	Key   curve.Scalar
}

// ToPublic derives the corresponding IndividualVerifyingKey, Y_i = s_i * B.
func (k *IndividualSigningKey) ToPublic() *IndividualVerifyingKey {
	return &IndividualVerifyingKey{Index: k.Index, Share: k.Key.ActOnBase()}
}

// Zeroize wipes the secret share.
func (k *IndividualSigningKey) Zeroize() {
	if k == nil || k.Key == nil {
		return
	}
	k.Key.Zeroize()
}

func (k *IndividualSigningKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4+len(k.Key.Bytes()))
	putUint32(out, k.Index)
	copy(out[4:], k.Key.Bytes())
	return out, nil
}

func (k *IndividualSigningKey) UnmarshalBinary(group curve.Curve, b []byte) error {
	if len(b) != 4+group.ScalarSize() {
		return fmt.Errorf("%w: individual signing key: bad length", frost.ErrDeserializationError)
	}
	s, err := group.ScalarFromBytes(b[4:])
	if err != nil {
		return fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	k.Index = getUint32(b)
	k.Key = s
	return nil
}

// IndividualVerifyingKey is the public verification share of a participant.
// Any participant can recompute any other's IndividualVerifyingKey from the
// accepted dealer commitments (spec.md §4.5).
type IndividualVerifyingKey struct {
	Index uint32
	Share curve.Point
}

// GenerateFromCommitments recomputes participant index's verification
// share from a set of accepted dealer commitments:
//
//	Y_i = sum_{j in J} lambda_j(J) * (sum_{k=0}^{t-1} i^k * phi_{j,k})
//
// Lagrange coefficients are taken over the dealer indices J, not the
// signer index, matching spec.md §4.5's derivation.
func GenerateFromCommitments(group curve.Curve, index uint32, commitments []*VerifiableSecretSharingCommitment) (*IndividualVerifyingKey, error) {
	dealerIndices := make([]uint32, len(commitments))
	for i, c := range commitments {
		dealerIndices[i] = c.Index
	}
	lambdas, err := polynomial.Lagrange(group, dealerIndices)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frost.ErrDuplicateShares, err)
	}

	x := group.ScalarFromUint32(index)
	share := group.NewPoint()
	for _, c := range commitments {
		inner := polynomial.EvaluateCommitment(group, c.Points, x)
		share = share.Add(lambdas[c.Index].Act(inner))
	}
	return &IndividualVerifyingKey{Index: index, Share: share}, nil
}

// Verify recomputes GenerateFromCommitments for k.Index and checks it
// against k.Share, failing with ErrShareVerificationError on mismatch.
func (k *IndividualVerifyingKey) Verify(group curve.Curve, commitments []*VerifiableSecretSharingCommitment) error {
	want, err := GenerateFromCommitments(group, k.Index, commitments)
	if err != nil {
		return err
	}
	if !want.Share.Equal(k.Share) {
		return frost.ErrShareVerificationError
	}
	return nil
}

func (k *IndividualVerifyingKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4+len(k.Share.Bytes()))
	putUint32(out, k.Index)
	copy(out[4:], k.Share.Bytes())
	return out, nil
}

func (k *IndividualVerifyingKey) UnmarshalBinary(group curve.Curve, b []byte) error {
	// Accept both a full-width point and the shorter identity encoding that
	// MarshalBinary emits for the identity share.
	if len(b) != 4+group.PointSize() && len(b) != 4+len(group.NewPoint().Bytes()) {
		return fmt.Errorf("%w: individual verifying key: bad length", frost.ErrDeserializationError)
	}
	p, err := group.PointFromBytes(b[4:])
	if err != nil {
		return fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	k.Index = getUint32(b)
	k.Share = p
	return nil
}

// GroupKey is the combined public key Y = sum_j lambda_j(J) * phi_{j,0}
// over the set J of accepted dealers, weighted by the same Lagrange
// coefficients as IndividualSigningKey, verifiable against any signature
// produced by a threshold of signers.
type GroupKey struct {
	Key curve.Point
}

func (k GroupKey) MarshalBinary() ([]byte, error) {
	return k.Key.Bytes(), nil
}

func (k *GroupKey) UnmarshalBinary(group curve.Curve, b []byte) error {
	p, err := group.PointFromBytes(b)
	if err != nil {
		return fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	k.Key = p
	return nil
}

// ZeroizeAll wipes every non-nil scalar passed to it. No code in this
// module calls it; dkg.Finish wipes its intermediate scalars with
// Scalar.Zeroize directly.
func ZeroizeAll(scalars ...curve.Scalar) {
	for _, s := range scalars {
		if s != nil {
			s.Zeroize()
		}
	}
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
