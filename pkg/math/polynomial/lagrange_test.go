package polynomial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/frost/internal/frosttest"
	"github.com/luxfi/frost/pkg/math/curve"
	"github.com/luxfi/frost/pkg/math/polynomial"
)

func TestLagrangeSumsToOne(t *testing.T) {
	group := curve.Secp256k1{}

	n := 10
	allIDs := frosttest.PartyIDs(n)

	coefsEven, err := polynomial.Lagrange(group, allIDs)
	require.NoError(t, err)
	coefsOdd, err := polynomial.Lagrange(group, allIDs[:n-1])
	require.NoError(t, err)

	sumEven := group.NewScalar()
	for _, c := range coefsEven {
		sumEven = sumEven.Add(c)
	}
	sumOdd := group.NewScalar()
	for _, c := range coefsOdd {
		sumOdd = sumOdd.Add(c)
	}

	one := group.ScalarFromUint32(1)
	assert.True(t, sumEven.Equal(one))
	assert.True(t, sumOdd.Equal(one))
}

func TestLagrangeDuplicateIndices(t *testing.T) {
	group := curve.Secp256k1{}
	_, err := polynomial.Lagrange(group, []uint32{1, 2, 2})
	assert.ErrorIs(t, err, polynomial.ErrDuplicateShares)
}

func TestLagrangeEmpty(t *testing.T) {
	group := curve.Secp256k1{}
	_, err := polynomial.Lagrange(group, nil)
	assert.ErrorIs(t, err, polynomial.ErrDuplicateShares)
}

func TestLagrangeInterpolatesPolynomial(t *testing.T) {
	group := curve.Secp256k1{}

	// Build a degree-2 polynomial and check that interpolating over 3 of
	// its evaluation points ({1, 2, 3}) recovers the secret (spec.md §8's
	// "interpolation set" property).
	coeffs := []curve.Scalar{
		group.ScalarFromUint32(7),
		group.ScalarFromUint32(3),
		group.ScalarFromUint32(11),
	}
	poly := polynomial.New(group, coeffs)

	ids := []uint32{1, 2, 3, 4}
	shares := make(map[uint32]curve.Scalar, len(ids))
	for _, id := range ids {
		shares[id] = poly.Evaluate(group.ScalarFromUint32(id))
	}

	subset := ids[:3]
	lambdas, err := polynomial.Lagrange(group, subset)
	require.NoError(t, err)

	recovered := group.NewScalar()
	for _, id := range subset {
		recovered = recovered.Add(lambdas[id].Mul(shares[id]))
	}

	assert.True(t, recovered.Equal(poly.Constant()))
}
