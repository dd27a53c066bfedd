package kzgopen

import (
	"errors"
	mrand "math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/go-snarkpack/aggregator/internal/errs"
)

func randScalars(rng *mrand.Rand, n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := range out {
		out[i] = randScalar(rng)
	}
	return out
}

func randScalar(rng *mrand.Rand) fr.Element {
	var buf [32]byte
	rng.Read(buf[:])
	var e fr.Element
	e.SetBytes(buf[:])
	if e.IsZero() {
		e.SetOne()
	}
	return e
}

// horner evaluates a low-to-high coefficient vector at z.
func horner(coeffs []fr.Element, z fr.Element) fr.Element {
	var res fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		res.Mul(&res, &z)
		res.Add(&res, &coeffs[i])
	}
	return res
}

// The O(log n) product-form evaluation must agree with expanding the dense
// coefficients and evaluating those, for every size and shift.
func TestEvaluateMatchesExpandedCoefficients(t *testing.T) {
	rng := mrand.New(mrand.NewSource(11))
	for _, ell := range []int{1, 2, 3, 4} {
		x := randScalars(rng, ell)
		shift := randScalar(rng)
		z := randScalar(rng)

		coeffs := Coefficients(x, shift)
		require.Len(t, coeffs, 1<<ell)

		expanded := horner(coeffs, z)
		direct := Evaluate(x, z, shift)
		require.True(t, direct.Equal(&expanded), "ell=%d", ell)
	}
}

func TestQuotientReconstructsDividend(t *testing.T) {
	rng := mrand.New(mrand.NewSource(12))
	coeffs := randScalars(rng, 8)
	z := randScalar(rng)
	y := horner(coeffs, z)

	q, err := quotientCoefficients(coeffs, y, z, 8)
	require.NoError(t, err)
	require.Len(t, q, 8)

	// q(X)*(X-z) + y == f(X), checked at a random point.
	pt := randScalar(rng)
	var lhs, diff fr.Element
	diff.Sub(&pt, &z)
	qAt := horner(q, pt)
	lhs.Mul(&qAt, &diff)
	lhs.Add(&lhs, &y)

	fAt := horner(coeffs, pt)
	require.True(t, lhs.Equal(&fAt))
}

func TestQuotientRejectsOversizedQuotient(t *testing.T) {
	rng := mrand.New(mrand.NewSource(13))
	coeffs := randScalars(rng, 4)
	z := randScalar(rng)
	y := horner(coeffs, z)

	_, err := quotientCoefficients(coeffs, y, z, 2)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrDegreeMismatch))
}
