package gipa

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/parallel"
)

// foldG1 computes out[i] = left[i] + x*right[i], coordinate-wise.
func foldG1(left, right []bn254.G1Affine, x *fr.Element) ([]bn254.G1Affine, error) {
	n := len(left)
	out := make([]bn254.G1Affine, n)
	var xBig big.Int
	x.BigInt(&xBig)
	err := parallel.Do(n, func(i int) error {
		var rj, lj bn254.G1Jac
		rj.FromAffine(&right[i])
		rj.ScalarMultiplication(&rj, &xBig)
		lj.FromAffine(&left[i])
		lj.AddAssign(&rj)
		out[i].FromJacobian(&lj)
		return nil
	})
	return out, err
}

// foldG2 computes out[i] = left[i] + x*right[i], coordinate-wise.
func foldG2(left, right []bn254.G2Affine, x *fr.Element) ([]bn254.G2Affine, error) {
	n := len(left)
	out := make([]bn254.G2Affine, n)
	var xBig big.Int
	x.BigInt(&xBig)
	err := parallel.Do(n, func(i int) error {
		var rj, lj bn254.G2Jac
		rj.FromAffine(&right[i])
		rj.ScalarMultiplication(&rj, &xBig)
		lj.FromAffine(&left[i])
		lj.AddAssign(&rj)
		out[i].FromJacobian(&lj)
		return nil
	})
	return out, err
}

// foldFr computes out[i] = left[i] + x*right[i], coordinate-wise, in Fr.
func foldFr(left, right []fr.Element, x *fr.Element) []fr.Element {
	out := make([]fr.Element, len(left))
	for i := range left {
		var t fr.Element
		t.Mul(&right[i], x)
		out[i].Add(&left[i], &t)
	}
	return out
}

// foldGT computes before * l^c * r^cInv, the scalar GT folding rule every
// TIPP/MIPP intermediate value (com_ab, com_c, ip_ab) obeys across a round.
func foldGT(before, l, r bn254.GT, c, cInv fr.Element) bn254.GT {
	var cBig, cInvBig big.Int
	c.BigInt(&cBig)
	cInv.BigInt(&cInvBig)

	var lPow, rPow bn254.GT
	lPow.Exp(l, &cBig)
	rPow.Exp(r, &cInvBig)

	out := before
	out.Mul(&out, &lPow)
	out.Mul(&out, &rPow)
	return out
}

// foldG1Additive computes before + c*l + cInv*r: the additive analogue of
// foldGT used to fold agg_c (MIPP's G1-valued short value).
func foldG1Additive(before, l, r bn254.G1Affine, c, cInv fr.Element) bn254.G1Affine {
	var cBig, cInvBig big.Int
	c.BigInt(&cBig)
	cInv.BigInt(&cInvBig)

	var lj, rj, bj bn254.G1Jac
	lj.FromAffine(&l)
	lj.ScalarMultiplication(&lj, &cBig)
	rj.FromAffine(&r)
	rj.ScalarMultiplication(&rj, &cInvBig)
	bj.FromAffine(&before)
	bj.AddAssign(&lj)
	bj.AddAssign(&rj)

	var out bn254.G1Affine
	out.FromJacobian(&bj)
	return out
}
