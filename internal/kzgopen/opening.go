package kzgopen

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/errs"
	"github.com/go-snarkpack/aggregator/internal/pairingcheck"
)

// VOpening is the KZG opening of the final folded V key. Because V lives in
// G2, its opening's quotient commitments live in G2 too (the "dual" form of
// KZG, checked against the G1 fixed elements AlphaG1/BetaG1): see DESIGN.md.
type VOpening struct {
	A bn254.G2Affine
	B bn254.G2Affine
}

// WOpening is the KZG opening of the final folded W key, in the ordinary
// (commitment and opening both in G1, checked against G2 fixed elements)
// form.
type WOpening struct {
	A bn254.G1Affine
	B bn254.G1Affine
}

func errDegreeMismatch(got, want int) error {
	return errs.New(errs.KindInvalidSRS, errs.ErrDegreeMismatch, fmt.Sprintf("quotient has %d coefficients, SRS table has %d", got, want))
}

// ProveV builds the KZG opening for the final V key, folded from
// challengesInv (the inverse challenges drawn during GIPA, in round order)
// and opened at z. vkey must be the full-length prover V key: its A/B
// columns double as the alpha/beta power tables for this opening, since f's
// quotient has degree len(vkey)-2, which fits in a length-len(vkey) table.
func ProveV(vkey *commitment.VKey, challengesInv []fr.Element, z fr.Element) (VOpening, fr.Element, error) {
	one := fr.One()
	coeffs := Coefficients(challengesInv, one)
	y := Evaluate(challengesInv, z, one)

	q, err := quotientCoefficients(coeffs, y, z, vkey.Len())
	if err != nil {
		return VOpening{}, fr.Element{}, err
	}
	a, err := msmG2(vkey.A, q)
	if err != nil {
		return VOpening{}, fr.Element{}, err
	}
	b, err := msmG2(vkey.B, q)
	if err != nil {
		return VOpening{}, fr.Element{}, err
	}
	return VOpening{A: a, B: b}, y, nil
}

// ProveW builds the KZG opening for the final W key, folded from challenges
// (the forward GIPA challenges, in round order) scaled by rInverse, and
// opened at z. f_w(X) = X^n*f(X) has degree 2n-1, so its quotient (degree
// 2n-2) is committed against the wider openingAlpha/openingBeta power tables
// rather than wkey itself.
func ProveW(openingAlpha, openingBeta []bn254.G1Affine, challenges []fr.Element, rInverse fr.Element, z fr.Element) (WOpening, fr.Element, error) {
	fcoeffs := Coefficients(challenges, rInverse)
	n := len(fcoeffs)

	shifted := make([]fr.Element, n+len(fcoeffs))
	copy(shifted[n:], fcoeffs)

	var zPowN fr.Element
	zPowN.Exp(z, big.NewInt(int64(n)))

	fz := Evaluate(challenges, z, rInverse)
	var y fr.Element
	y.Mul(&fz, &zPowN)

	tableLen := len(openingAlpha)
	q, err := quotientCoefficients(shifted, y, z, tableLen)
	if err != nil {
		return WOpening{}, fr.Element{}, err
	}
	a, err := msmG1(openingAlpha, q)
	if err != nil {
		return WOpening{}, fr.Element{}, err
	}
	b, err := msmG1(openingBeta, q)
	if err != nil {
		return WOpening{}, fr.Element{}, err
	}
	return WOpening{A: a, B: b}, y, nil
}

// VCheckPairs returns the pairing operand pairs for the alpha- and
// beta-column KZG checks of the final V key:
//
//	e(g1Gen, finalV[k] - y*g2Gen) * e(z*g1Gen - fixedG1[k], opening[k]) == 1
//
// Each 2-pair group is one equation and should be randomized independently
// via pairingcheck.Rand before being merged into the aggregate batch.
func VCheckPairs(finalV [2]bn254.G2Affine, fixedG1 [2]bn254.G1Affine, g1Gen bn254.G1Affine, g2Gen bn254.G2Affine, z, y fr.Element, opening VOpening) [2][2]pairingcheck.Pair {
	openingArr := [2]bn254.G2Affine{opening.A, opening.B}
	var out [2][2]pairingcheck.Pair
	for k := 0; k < 2; k++ {
		lhsB := subG2(finalV[k], scalarMulG2(g2Gen, &y))
		rhsA := subG1(scalarMulG1(g1Gen, &z), fixedG1[k])
		out[k] = [2]pairingcheck.Pair{
			{A: g1Gen, B: lhsB},
			{A: rhsA, B: openingArr[k]},
		}
	}
	return out
}

// WCheckPairs returns the analogous pairs for the final W key, checked
// against the G2 fixed elements AlphaG2/BetaG2:
//
//	e(finalW[k] - y*g1Gen, g2Gen) * e(opening[k], z*g2Gen - fixedG2[k]) == 1
func WCheckPairs(finalW [2]bn254.G1Affine, fixedG2 [2]bn254.G2Affine, g1Gen bn254.G1Affine, g2Gen bn254.G2Affine, z, y fr.Element, opening WOpening) [2][2]pairingcheck.Pair {
	openingArr := [2]bn254.G1Affine{opening.A, opening.B}
	var out [2][2]pairingcheck.Pair
	for k := 0; k < 2; k++ {
		lhsA := subG1(finalW[k], scalarMulG1(g1Gen, &y))
		rhsB := subG2(scalarMulG2(g2Gen, &z), fixedG2[k])
		out[k] = [2]pairingcheck.Pair{
			{A: lhsA, B: g2Gen},
			{A: openingArr[k], B: rhsB},
		}
	}
	return out
}

func msmG1(table []bn254.G1Affine, scalars []fr.Element) (bn254.G1Affine, error) {
	var out bn254.G1Affine
	if _, err := out.MultiExp(table, scalars, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, err
	}
	return out, nil
}

func msmG2(table []bn254.G2Affine, scalars []fr.Element) (bn254.G2Affine, error) {
	var out bn254.G2Affine
	if _, err := out.MultiExp(table, scalars, ecc.MultiExpConfig{}); err != nil {
		return bn254.G2Affine{}, err
	}
	return out, nil
}

func scalarMulG1(p bn254.G1Affine, s *fr.Element) bn254.G1Affine {
	var sBig big.Int
	s.BigInt(&sBig)
	var j bn254.G1Jac
	j.FromAffine(&p)
	j.ScalarMultiplication(&j, &sBig)
	var out bn254.G1Affine
	out.FromJacobian(&j)
	return out
}

func scalarMulG2(p bn254.G2Affine, s *fr.Element) bn254.G2Affine {
	var sBig big.Int
	s.BigInt(&sBig)
	var j bn254.G2Jac
	j.FromAffine(&p)
	j.ScalarMultiplication(&j, &sBig)
	var out bn254.G2Affine
	out.FromJacobian(&j)
	return out
}

func subG1(a, b bn254.G1Affine) bn254.G1Affine {
	var ja, jb bn254.G1Jac
	ja.FromAffine(&a)
	jb.FromAffine(&b)
	jb.Neg(&jb)
	ja.AddAssign(&jb)
	var out bn254.G1Affine
	out.FromJacobian(&ja)
	return out
}

func subG2(a, b bn254.G2Affine) bn254.G2Affine {
	var ja, jb bn254.G2Jac
	ja.FromAffine(&a)
	jb.FromAffine(&b)
	jb.Neg(&jb)
	ja.AddAssign(&jb)
	var out bn254.G2Affine
	out.FromJacobian(&ja)
	return out
}
