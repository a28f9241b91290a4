// Package curve abstracts the prime-order group and scalar field that the
// FROST/RICE-FROST core is built over. Concrete ciphersuites (see
// pkg/ciphersuite) plug a Curve implementation in; the DKG and signing
// packages never reach for a specific curve library directly.
package curve

import "io"

// Scalar is an element of the field F underlying a Curve. Every operation
// except Zeroize returns a new Scalar rather than mutating the receiver;
// Zeroize overwrites the receiver in place, so it also clears every holder
// of a shared Scalar.
type Scalar interface {
	// Add returns s + other.
	Add(other Scalar) Scalar
	// Sub returns s - other.
	Sub(other Scalar) Scalar
	// Mul returns s * other.
	Mul(other Scalar) Scalar
	// Negate returns -s.
	Negate() Scalar
	// Invert returns s^-1. Returns an error if s is zero.
	Invert() (Scalar, error)
	// IsZero reports whether s is the additive identity.
	IsZero() bool
	// Equal reports whether s and other represent the same field element.
	Equal(other Scalar) bool
	// ActOnBase returns s * B, where B is the curve's generator.
	ActOnBase() Point
	// Act returns s * p.
	Act(p Point) Point
	// Bytes returns the canonical fixed-width encoding of s.
	Bytes() []byte
	// Zeroize overwrites the scalar's internal representation with zeroes.
	// Callers that hold a secret Scalar directly (outside of a type that
	// already wraps Zeroize, such as keys.IndividualSigningKey) must call
	// this explicitly once the value is no longer needed.
	Zeroize()
}

// Point is an element of the group G underlying a Curve.
type Point interface {
	// Add returns p + other.
	Add(other Point) Point
	// Negate returns -p.
	Negate() Point
	// IsIdentity reports whether p is the group identity element.
	IsIdentity() bool
	// Equal reports whether p and other represent the same group element.
	Equal(other Point) bool
	// Bytes returns the canonical compressed encoding of p.
	Bytes() []byte
}

// Curve is the capability bundle a ciphersuite provides over its group: the
// generator, scalar sampling, and parsing routines for both Scalar and
// Point. It corresponds to the "group G... and its scalar field F" of
// spec.md §3.
type Curve interface {
	// Name identifies the curve, used in ciphersuite context strings and
	// diagnostics.
	Name() string
	// Generator returns the fixed base point B.
	Generator() Point
	// NewScalar returns the zero scalar.
	NewScalar() Scalar
	// NewPoint returns the identity point.
	NewPoint() Point
	// RandomScalar draws a uniform, nonzero scalar from rng.
	RandomScalar(rng io.Reader) (Scalar, error)
	// ScalarFromUint32 maps a participant index (or any small nonnegative
	// integer) to its canonical scalar representation.
	ScalarFromUint32(i uint32) Scalar
	// ScalarFromBytes parses the canonical fixed-width encoding of a
	// Scalar, rejecting non-canonical or out-of-range encodings.
	ScalarFromBytes(b []byte) (Scalar, error)
	// PointFromBytes parses the canonical compressed encoding of a Point,
	// rejecting encodings that do not correspond to a valid group member.
	PointFromBytes(b []byte) (Point, error)
	// ScalarSize is the fixed byte width of a canonical Scalar encoding.
	ScalarSize() int
	// PointSize is the fixed byte width of a canonical compressed encoding
	// of a non-identity Point. The identity may encode shorter (Secp256k1
	// encodes it as the single byte 0x00).
	PointSize() int
}
