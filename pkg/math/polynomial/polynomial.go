// Package polynomial implements the scalar-field polynomial algebra that
// the DKG dealer and the group-key reconstruction logic are built on:
// evaluation, Feldman/Pedersen commitment, and Lagrange interpolation.
//
// Grounded on luxfi-threshold/pkg/math/polynomial (referenced, but not
// shipped, by luxfi-threshold/pkg/math/polynomial/lagrange_test.go) and on
// the classic PriPoly/PubPoly split in dedis/kyber's share/core.go.
package polynomial

import (
	"fmt"

	"github.com/luxfi/frost/pkg/math/curve"
)

// ErrDuplicateShares is returned by Lagrange when the index set contains a
// repeated index, which would otherwise silently produce a zero
// denominator (spec.md §4.1).
var ErrDuplicateShares = fmt.Errorf("polynomial: duplicate indices provided to Lagrange interpolation")

// Polynomial is a dealer's private polynomial f(x) = a0 + a1*x + ... +
// a_{t-1}*x^{t-1} over a Curve's scalar field. Coefficients are zeroized on
// Zeroize, matching the "Polynomial Coefficients" lifecycle of spec.md §3:
// created at dealer setup, never shared, wiped on destruction.
type Polynomial struct {
	group  curve.Curve
	coeffs []curve.Scalar
}

// New builds a Polynomial of degree t-1 from explicit coefficients,
// ordered a0..a_{t-1} with a0 the constant term (the dealer's secret
// contribution).
func New(group curve.Curve, coeffs []curve.Scalar) *Polynomial {
	return &Polynomial{group: group, coeffs: coeffs}
}

// Degree returns t-1.
func (p *Polynomial) Degree() int { return len(p.coeffs) - 1 }

// Threshold returns t, the number of coefficients.
func (p *Polynomial) Threshold() int { return len(p.coeffs) }

// Constant returns a0, the shared secret.
func (p *Polynomial) Constant() curve.Scalar { return p.coeffs[0] }

// Coefficients returns the polynomial's coefficients in a0..a_{t-1} order.
// The returned slice aliases the polynomial's internal storage and must not
// be mutated.
func (p *Polynomial) Coefficients() []curve.Scalar { return p.coeffs }

// Evaluate computes f(x) via Horner's method, f(x) = sum_{k=0}^{t-1} a_k *
// x^k, matching spec.md §4.4 step 3's "share value f_j(p_i) =
// sum_k a_k * p_i^k".
func (p *Polynomial) Evaluate(x curve.Scalar) curve.Scalar {
	acc := p.group.NewScalar()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.coeffs[i])
	}
	return acc
}

// Commit computes the Feldman/Pedersen commitment [phi_0, ..., phi_{t-1}]
// with phi_j = a_j * B, spec.md §3's VerifiableSecretSharingCommitment
// points.
func (p *Polynomial) Commit() []curve.Point {
	points := make([]curve.Point, len(p.coeffs))
	for i, a := range p.coeffs {
		points[i] = a.ActOnBase()
	}
	return points
}

// Zeroize wipes every coefficient.
func (p *Polynomial) Zeroize() {
	for _, c := range p.coeffs {
		c.Zeroize()
	}
}

// EvaluateCommitment evaluates a public commitment polynomial (the
// Feldman/Pedersen points [phi_0 .. phi_{t-1}]) at x via Horner's method,
// used both by IndividualVerifyingKey reconstruction (spec.md §4.5) and by
// Feldman share verification (spec.md §4.4 step 2): phi(x) = sum_k x^k *
// phi_k.
func EvaluateCommitment(group curve.Curve, points []curve.Point, x curve.Scalar) curve.Point {
	acc := group.NewPoint()
	for i := len(points) - 1; i >= 0; i-- {
		acc = x.Act(acc).Add(points[i])
	}
	return acc
}

// Lagrange computes, for every index in indices, its interpolation weight
// lambda_i(indices) = prod_{j != i} j / (j - i) over the curve's scalar
// field (spec.md §4.1). It fails with ErrDuplicateShares if indices
// contains a repeated value or is empty; callers must pass indices taken
// from the currently accepted participant set, as the function does not
// deduplicate beyond detecting the error case.
func Lagrange(group curve.Curve, indices []uint32) (map[uint32]curve.Scalar, error) {
	if len(indices) == 0 {
		return nil, ErrDuplicateShares
	}
	seen := make(map[uint32]struct{}, len(indices))
	for _, i := range indices {
		if _, ok := seen[i]; ok {
			return nil, ErrDuplicateShares
		}
		seen[i] = struct{}{}
	}

	out := make(map[uint32]curve.Scalar, len(indices))
	for _, i := range indices {
		lambda, err := lagrangeCoefficient(group, i, indices)
		if err != nil {
			return nil, err
		}
		out[i] = lambda
	}
	return out, nil
}

func lagrangeCoefficient(group curve.Curve, i uint32, indices []uint32) (curve.Scalar, error) {
	numerator := group.ScalarFromUint32(1)
	denominator := group.ScalarFromUint32(1)
	iField := group.ScalarFromUint32(i)

	for _, j := range indices {
		if j == i {
			continue
		}
		jField := group.ScalarFromUint32(j)
		numerator = numerator.Mul(jField)
		denominator = denominator.Mul(jField.Sub(iField))
	}

	if denominator.IsZero() {
		return nil, ErrDuplicateShares
	}
	inv, err := denominator.Invert()
	if err != nil {
		return nil, err
	}
	return numerator.Mul(inv), nil
}
