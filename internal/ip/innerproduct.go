// Package ip implements the two batched inner products the TIPP and MIPP
// arguments reduce to: a batched pairing product and a multiexponentiation,
// both computed via a single accumulation pass plus (for the pairing) one
// final exponentiation.
package ip

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/errs"
)

// Pairing computes prod_i e(a[i], b[i]) with one Miller-loop accumulation
// and a single final exponentiation.
func Pairing(a []bn254.G1Affine, b []bn254.G2Affine) (bn254.GT, error) {
	if len(a) != len(b) {
		return bn254.GT{}, errs.New(errs.KindInvalidProof, errs.ErrKeyLengthMismatch, "ip.Pairing")
	}
	ml, err := bn254.MillerLoop(a, b)
	if err != nil {
		return bn254.GT{}, err
	}
	return bn254.FinalExponentiation(&ml), nil
}

// MultiExponentiation computes sum_i r[i]*c[i] as a single multi-scalar
// multiplication.
func MultiExponentiation(c []bn254.G1Affine, r []fr.Element) (bn254.G1Affine, error) {
	if len(c) != len(r) {
		return bn254.G1Affine{}, errs.New(errs.KindInvalidProof, errs.ErrKeyLengthMismatch, "ip.MultiExponentiation")
	}
	var out bn254.G1Affine
	if _, err := out.MultiExp(c, r, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, err
	}
	return out, nil
}
