// Package sign implements precomputed-nonce, one-round FROST threshold
// signing: commitment share generation (spec.md §4.6), partial signature
// production and aggregation, and final Schnorr verification (spec.md
// §4.7).
//
// Grounded on original_source/src/sign/precomputation.rs for the
// commitment share lifecycle.
package sign

import (
	"fmt"
	"io"

	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost"
	"github.com/luxfi/frost/pkg/math/curve"
)

// Commitment is a secret scalar paired with its public commitment point,
// the (d, D) or (e, E) pair of spec.md §4.6.
type Commitment struct {
	Secret curve.Scalar
	Point  curve.Point
}

// Zeroize wipes the secret half of the commitment.
func (c *Commitment) Zeroize() {
	if c == nil || c.Secret == nil {
		return
	}
	c.Secret.Zeroize()
}

// Equal compares two commitments for equality, used by
// SecretCommitmentShareList.DropShare to locate a consumed share.
func (c *Commitment) Equal(other *Commitment) bool {
	return c.Secret.Equal(other.Secret) && c.Point.Equal(other.Point)
}

// CommitmentShare is one precomputed (hiding, binding) nonce pair a signer
// publishes ahead of a signing session: hiding is (d_ij, D_ij), binding is
// (e_ij, E_ij) in spec.md §4.6's notation.
type CommitmentShare struct {
	Hiding  Commitment
	Binding Commitment
}

// Publish returns the public half of a CommitmentShare, (D, E), safe to
// broadcast ahead of time.
func (s *CommitmentShare) Publish() (curve.Point, curve.Point) {
	return s.Hiding.Point, s.Binding.Point
}

// Zeroize wipes both secret halves.
func (s *CommitmentShare) Zeroize() {
	s.Hiding.Zeroize()
	s.Binding.Zeroize()
}

// Equal compares two CommitmentShares, used to locate a consumed share in
// DropShare.
func (s *CommitmentShare) Equal(other *CommitmentShare) bool {
	return s.Hiding.Equal(&other.Hiding) && s.Binding.Equal(&other.Binding)
}

// PublicCommitmentShareList is the published form of a participant's
// precomputed nonces: the participant's index and the ordered list of
// (D, E) pairs, with no secret material (spec.md §4.6).
type PublicCommitmentShareList struct {
	ParticipantIndex uint32
	Commitments      [][2]curve.Point
}

// SecretCommitmentShareList holds the secret (d, e) values backing a
// PublicCommitmentShareList, kept locally and consumed one at a time as
// signing sessions occur.
type SecretCommitmentShareList struct {
	Commitments []*CommitmentShare
}

// GenerateCommitmentShareLists samples numberOfShares fresh (hiding,
// binding) nonce pairs for participantIndex, returning the list to publish
// and the list to retain locally (spec.md §4.6).
func GenerateCommitmentShareLists(suite ciphersuite.CipherSuite, participantIndex uint32, numberOfShares int, rng io.Reader) (*PublicCommitmentShareList, *SecretCommitmentShareList, error) {
	group := suite.Group()

	secretShares := make([]*CommitmentShare, numberOfShares)
	published := make([][2]curve.Point, numberOfShares)

	for i := 0; i < numberOfShares; i++ {
		d, err := group.RandomScalar(rng)
		if err != nil {
			return nil, nil, fmt.Errorf("sign: generate hiding nonce: %w", err)
		}
		e, err := group.RandomScalar(rng)
		if err != nil {
			return nil, nil, fmt.Errorf("sign: generate binding nonce: %w", err)
		}

		share := &CommitmentShare{
			Hiding:  Commitment{Secret: d, Point: d.ActOnBase()},
			Binding: Commitment{Secret: e, Point: e.ActOnBase()},
		}
		secretShares[i] = share
		D, E := share.Publish()
		published[i] = [2]curve.Point{D, E}
	}

	return &PublicCommitmentShareList{ParticipantIndex: participantIndex, Commitments: published},
		&SecretCommitmentShareList{Commitments: secretShares},
		nil
}

// DropShare removes share from the list and zeroizes it, per spec.md
// §4.6's consumption rule: a commitment share must never be reused across
// signing sessions. It is a no-op if share is not present.
func (l *SecretCommitmentShareList) DropShare(share *CommitmentShare) {
	index := -1
	for i, s := range l.Commitments {
		if s.Equal(share) {
			index = i
			break
		}
	}
	if index < 0 {
		return
	}
	l.Commitments[index].Zeroize()
	l.Commitments = append(l.Commitments[:index], l.Commitments[index+1:]...)
	share.Zeroize()
}

func (c *Commitment) marshalInto(out []byte) []byte {
	out = append(out, c.Secret.Bytes()...)
	out = append(out, c.Point.Bytes()...)
	return out
}

func unmarshalCommitment(group curve.Curve, b []byte) (*Commitment, []byte, error) {
	scalarSize, pointSize := group.ScalarSize(), group.PointSize()
	if len(b) < scalarSize+pointSize {
		return nil, nil, fmt.Errorf("%w: commitment: short buffer", frost.ErrDeserializationError)
	}
	secret, err := group.ScalarFromBytes(b[:scalarSize])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	point, err := group.PointFromBytes(b[scalarSize : scalarSize+pointSize])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", frost.ErrDeserializationError, err)
	}
	return &Commitment{Secret: secret, Point: point}, b[scalarSize+pointSize:], nil
}

// MarshalBinary encodes a CommitmentShare as hiding || binding, each a
// fixed-width (secret, point) pair.
func (s *CommitmentShare) MarshalBinary() ([]byte, error) {
	out := s.Hiding.marshalInto(nil)
	out = s.Binding.marshalInto(out)
	return out, nil
}

// UnmarshalBinary decodes a CommitmentShare encoded by MarshalBinary.
func (s *CommitmentShare) UnmarshalBinary(group curve.Curve, b []byte) error {
	hiding, rest, err := unmarshalCommitment(group, b)
	if err != nil {
		return err
	}
	binding, rest, err := unmarshalCommitment(group, rest)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: commitment share: trailing bytes", frost.ErrDeserializationError)
	}
	s.Hiding, s.Binding = *hiding, *binding
	return nil
}
