// Package kzgopen implements the KZG opening proofs over the final GIPA
// commitment keys V and W. The opening lets a verifier check a
// folded key against the per-round challenge transcript in O(1) pairings
// instead of replaying the whole fold.
package kzgopen

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Coefficients expands the product form
//
//	f(X) = prod_i (1 + transcript[i] * rShift^{2^i} * X^{2^i})
//
// into its dense coefficient vector. This is the same polynomial the GIPA
// verifier folds V and W against, made explicit so the prover can divide it.
func Coefficients(transcript []fr.Element, rShift fr.Element) []fr.Element {
	coeffs := make([]fr.Element, 1, 1<<uint(len(transcript)))
	coeffs[0].SetOne()

	powerOfR := rShift
	for i, x := range transcript {
		if i > 0 {
			powerOfR.Square(&powerOfR)
		}
		n := len(coeffs)
		xTimesPower := new(fr.Element).Mul(&x, &powerOfR)
		for j := 0; j < n; j++ {
			var c fr.Element
			c.Mul(&coeffs[j], xTimesPower)
			coeffs = append(coeffs, c)
		}
	}
	return coeffs
}

// Evaluate evaluates the same product-form polynomial at z directly, without
// expanding coefficients: f(z) = prod_i (1 + transcript[i] * (z*rShift)^{2^i}).
func Evaluate(transcript []fr.Element, z, rShift fr.Element) fr.Element {
	var powerZR fr.Element
	powerZR.Mul(&z, &rShift)

	var res, term, one fr.Element
	one.SetOne()
	term.Mul(&transcript[0], &powerZR)
	res.Add(&one, &term)

	for i := 1; i < len(transcript); i++ {
		powerZR.Square(&powerZR)
		var factor fr.Element
		factor.Mul(&transcript[i], &powerZR)
		factor.Add(&factor, &one)
		res.Mul(&res, &factor)
	}
	return res
}

// quotientCoefficients divides (coeffs(X) - y) by (X - z) via synthetic
// division, then zero-pads the result to tableLen so it lines up with the
// SRS power table it will be multiexponentiated against.
func quotientCoefficients(coeffs []fr.Element, y, z fr.Element, tableLen int) ([]fr.Element, error) {
	shifted := append([]fr.Element(nil), coeffs...)
	shifted[0].Sub(&shifted[0], &y)

	q := syntheticDivide(shifted, z)
	if len(q) > tableLen {
		return nil, errDegreeMismatch(len(q), tableLen)
	}
	for len(q) < tableLen {
		q = append(q, fr.Element{})
	}
	return q, nil
}

// syntheticDivide computes the quotient of coeffs(X) (low-to-high degree,
// with coeffs(z) assumed to be exactly zero) divided by (X - z).
func syntheticDivide(coeffs []fr.Element, z fr.Element) []fr.Element {
	d := len(coeffs) - 1
	if d <= 0 {
		return nil
	}
	q := make([]fr.Element, d)
	q[d-1] = coeffs[d]
	for i := d - 1; i >= 1; i-- {
		var t fr.Element
		t.Mul(&q[i], &z)
		q[i-1].Add(&coeffs[i], &t)
	}
	return q
}
