package commitment

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/go-snarkpack/aggregator/internal/errs"
)

// Output is a commitment value in GT x GT: both
// Pair(V,W,A,B) and SingleG1(V,C) produce such a pair.
type Output struct {
	Left  bn254.GT
	Right bn254.GT
}

// Pair computes the TIPP commitment to (A,B) under keys (V,W):
//
//	left  = prod_i e(A[i], V.A[i]) * e(W.A[i], B[i])
//	right = prod_i e(A[i], V.B[i]) * e(W.B[i], B[i])
//
// via a single Miller-loop accumulation per coordinate followed by one final
// exponentiation each.
func Pair(v *VKey, w *WKey, a []bn254.G1Affine, b []bn254.G2Affine) (Output, error) {
	n := len(a)
	if n != len(b) || n != v.Len() || n != w.Len() {
		return Output{}, errs.New(errs.KindInvalidProof, errs.ErrKeyLengthMismatch, "commitment.Pair")
	}

	type result struct {
		out bn254.GT
		err error
	}
	leftCh := make(chan result, 1)
	rightCh := make(chan result, 1)

	go func() {
		p := append(append([]bn254.G1Affine(nil), a...), w.A...)
		q := append(append([]bn254.G2Affine(nil), v.A...), b...)
		ml, err := bn254.MillerLoop(p, q)
		if err != nil {
			leftCh <- result{err: err}
			return
		}
		leftCh <- result{out: bn254.FinalExponentiation(&ml)}
	}()
	go func() {
		p := append(append([]bn254.G1Affine(nil), a...), w.B...)
		q := append(append([]bn254.G2Affine(nil), v.B...), b...)
		ml, err := bn254.MillerLoop(p, q)
		if err != nil {
			rightCh <- result{err: err}
			return
		}
		rightCh <- result{out: bn254.FinalExponentiation(&ml)}
	}()

	left := <-leftCh
	right := <-rightCh
	if left.err != nil {
		return Output{}, left.err
	}
	if right.err != nil {
		return Output{}, right.err
	}
	return Output{Left: left.out, Right: right.out}, nil
}

// SingleG1 computes the MIPP commitment to C under key V:
//
//	left  = prod_i e(C[i], V.A[i])
//	right = prod_i e(C[i], V.B[i])
func SingleG1(v *VKey, c []bn254.G1Affine) (Output, error) {
	n := len(c)
	if n != v.Len() {
		return Output{}, errs.New(errs.KindInvalidProof, errs.ErrKeyLengthMismatch, "commitment.SingleG1")
	}

	type result struct {
		out bn254.GT
		err error
	}
	leftCh := make(chan result, 1)
	rightCh := make(chan result, 1)

	go func() {
		ml, err := bn254.MillerLoop(c, v.A)
		if err != nil {
			leftCh <- result{err: err}
			return
		}
		leftCh <- result{out: bn254.FinalExponentiation(&ml)}
	}()
	go func() {
		ml, err := bn254.MillerLoop(c, v.B)
		if err != nil {
			rightCh <- result{err: err}
			return
		}
		rightCh <- result{out: bn254.FinalExponentiation(&ml)}
	}()

	left := <-leftCh
	right := <-rightCh
	if left.err != nil {
		return Output{}, left.err
	}
	if right.err != nil {
		return Output{}, right.err
	}
	return Output{Left: left.out, Right: right.out}, nil
}
