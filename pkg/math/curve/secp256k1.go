package curve

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Secp256k1 is the Curve implementation backing the Secp256k1Sha256
// ciphersuite (pkg/ciphersuite). Group and field arithmetic is delegated to
// github.com/decred/dcrd/dcrec/secp256k1/v4; scalar reduction is done with
// github.com/cronokirby/saferith so that the index/Lagrange arithmetic in
// pkg/math/polynomial can work against a single constant-time Nat/Modulus
// representation, matching the way luxfi-threshold threads saferith.Nat
// through its own scalar operations.
type Secp256k1 struct{}

var secp256k1Order = mustModulus(
	[]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe,
		0xba, 0xae, 0xdc, 0xe6, 0xaf, 0x48, 0xa0, 0x3b,
		0xbf, 0xd2, 0x5e, 0x8c, 0xd0, 0x36, 0x41, 0x41,
	},
)

func mustModulus(b []byte) *saferith.Modulus {
	return saferith.ModulusFromBytes(b)
}

func (Secp256k1) Name() string { return "secp256k1" }

func (Secp256k1) Generator() Point {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&one, &result)
	result.ToAffine()
	return &secp256k1Point{x: result.X, y: result.Y, identity: false}
}

func (Secp256k1) NewScalar() Scalar {
	return &secp256k1Scalar{n: new(saferith.Nat).SetUint64(0)}
}

func (Secp256k1) NewPoint() Point {
	return &secp256k1Point{identity: true}
}

func (Secp256k1) RandomScalar(rng io.Reader) (Scalar, error) {
	var buf [48]byte // extra bytes reduce sampling bias when folding into the 32-byte order.
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return nil, fmt.Errorf("curve: read random scalar: %w", err)
	}
	n := new(saferith.Nat).SetBytes(buf[:])
	n.Mod(n, secp256k1Order)
	if n.Eq(new(saferith.Nat).SetUint64(0)) == 1 {
		return Secp256k1{}.RandomScalar(rng)
	}
	return &secp256k1Scalar{n: n}, nil
}

func (Secp256k1) ScalarFromUint32(i uint32) Scalar {
	return &secp256k1Scalar{n: new(saferith.Nat).SetUint64(uint64(i))}
}

func (Secp256k1) ScalarSize() int { return 32 }
func (Secp256k1) PointSize() int  { return 33 }

func (Secp256k1) ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != 32 {
		return nil, errors.New("curve: scalar encoding must be 32 bytes")
	}
	n := new(saferith.Nat).SetBytes(b)
	reduced := new(saferith.Nat).Mod(n, secp256k1Order)
	if reduced.Eq(n) != 1 {
		return nil, errors.New("curve: non-canonical scalar encoding")
	}
	return &secp256k1Scalar{n: n}, nil
}

func (Secp256k1) PointFromBytes(b []byte) (Point, error) {
	if len(b) == 1 && b[0] == 0x00 {
		return &secp256k1Point{identity: true}, nil
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("curve: parse point: %w", err)
	}
	return &secp256k1Point{x: pub.X, y: pub.Y}, nil
}

// secp256k1Scalar represents a field element reduced modulo the group
// order using saferith.Nat, converting to secp256k1.ModNScalar only when an
// actual point operation (ActOnBase/Act) is required.
type secp256k1Scalar struct {
	n *saferith.Nat
}

func (s *secp256k1Scalar) modScalar() *secp256k1.ModNScalar {
	var ms secp256k1.ModNScalar
	ms.SetByteSlice(s.n.Bytes())
	return &ms
}

func (s *secp256k1Scalar) Add(other Scalar) Scalar {
	o := other.(*secp256k1Scalar)
	out := new(saferith.Nat).ModAdd(s.n, o.n, secp256k1Order)
	return &secp256k1Scalar{n: out}
}

func (s *secp256k1Scalar) Sub(other Scalar) Scalar {
	o := other.(*secp256k1Scalar)
	neg := new(saferith.Nat).ModNeg(o.n, secp256k1Order)
	out := new(saferith.Nat).ModAdd(s.n, neg, secp256k1Order)
	return &secp256k1Scalar{n: out}
}

func (s *secp256k1Scalar) Mul(other Scalar) Scalar {
	o := other.(*secp256k1Scalar)
	out := new(saferith.Nat).ModMul(s.n, o.n, secp256k1Order)
	return &secp256k1Scalar{n: out}
}

func (s *secp256k1Scalar) Negate() Scalar {
	out := new(saferith.Nat).ModNeg(s.n, secp256k1Order)
	return &secp256k1Scalar{n: out}
}

func (s *secp256k1Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, errors.New("curve: cannot invert zero scalar")
	}
	out := new(saferith.Nat).ModInverse(s.n, secp256k1Order)
	return &secp256k1Scalar{n: out}, nil
}

func (s *secp256k1Scalar) IsZero() bool {
	return s.n.Eq(new(saferith.Nat).SetUint64(0)) == 1
}

func (s *secp256k1Scalar) Equal(other Scalar) bool {
	o, ok := other.(*secp256k1Scalar)
	if !ok {
		return false
	}
	return s.n.Eq(o.n) == 1
}

func (s *secp256k1Scalar) ActOnBase() Point {
	ms := s.modScalar()
	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(ms, &result)
	if result.Z.IsZero() {
		return &secp256k1Point{identity: true}
	}
	result.ToAffine()
	return &secp256k1Point{x: result.X, y: result.Y}
}

func (s *secp256k1Scalar) Act(p Point) Point {
	pp, ok := p.(*secp256k1Point)
	if !ok || pp.identity {
		return &secp256k1Point{identity: true}
	}
	ms := s.modScalar()
	var jp, result secp256k1.JacobianPoint
	jp.X, jp.Y = pp.x, pp.y
	jp.Z.SetInt(1)
	secp256k1.ScalarMultNonConst(ms, &jp, &result)
	if result.Z.IsZero() {
		return &secp256k1Point{identity: true}
	}
	result.ToAffine()
	return &secp256k1Point{x: result.X, y: result.Y}
}

func (s *secp256k1Scalar) Bytes() []byte {
	b := make([]byte, 32)
	raw := s.n.Bytes()
	copy(b[32-len(raw):], raw)
	return b
}

func (s *secp256k1Scalar) Zeroize() {
	s.n.SetUint64(0)
}

// secp256k1Point wraps the affine coordinates of a group element. identity
// represents the point at infinity, which secp256k1's affine/compressed
// encodings cannot otherwise express.
type secp256k1Point struct {
	x, y     secp256k1.FieldVal
	identity bool
}

func (p *secp256k1Point) jacobian() secp256k1.JacobianPoint {
	var jp secp256k1.JacobianPoint
	if p.identity {
		jp.Z.SetInt(0)
		return jp
	}
	jp.X, jp.Y = p.x, p.y
	jp.Z.SetInt(1)
	return jp
}

func (p *secp256k1Point) Add(other Point) Point {
	o, ok := other.(*secp256k1Point)
	if !ok {
		return &secp256k1Point{identity: true}
	}
	if p.identity {
		return &secp256k1Point{x: o.x, y: o.y, identity: o.identity}
	}
	if o.identity {
		return &secp256k1Point{x: p.x, y: p.y, identity: p.identity}
	}
	pj, oj := p.jacobian(), o.jacobian()
	var result secp256k1.JacobianPoint
	secp256k1.AddNonConst(&pj, &oj, &result)
	if result.Z.IsZero() {
		return &secp256k1Point{identity: true}
	}
	result.ToAffine()
	return &secp256k1Point{x: result.X, y: result.Y}
}

func (p *secp256k1Point) Negate() Point {
	if p.identity {
		return &secp256k1Point{identity: true}
	}
	y := p.y
	y.Normalize()
	y.Negate(1)
	y.Normalize()
	return &secp256k1Point{x: p.x, y: y}
}

func (p *secp256k1Point) IsIdentity() bool {
	return p.identity
}

func (p *secp256k1Point) Equal(other Point) bool {
	o, ok := other.(*secp256k1Point)
	if !ok {
		return false
	}
	if p.identity || o.identity {
		return p.identity == o.identity
	}
	return p.x.Equals(&o.x) && p.y.Equals(&o.y)
}

func (p *secp256k1Point) Bytes() []byte {
	if p.identity {
		return []byte{0x00}
	}
	pub := secp256k1.NewPublicKey(&p.x, &p.y)
	return pub.SerializeCompressed()
}
