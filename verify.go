package aggregator

import (
	"io"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/errs"
	"github.com/go-snarkpack/aggregator/internal/gipa"
	"github.com/go-snarkpack/aggregator/internal/kzgopen"
	"github.com/go-snarkpack/aggregator/internal/obslog"
	"github.com/go-snarkpack/aggregator/internal/pairingcheck"
	"github.com/go-snarkpack/aggregator/internal/srs"
	"github.com/go-snarkpack/aggregator/internal/transcript"
)

// VerifyAggregateProof replays the Fiat-Shamir
// transcript to re-derive every challenge the prover drew, folds the
// recorded per-round cross-terms down to the single leaf-level values the
// claimed final witnesses must satisfy, verifies the two KZG openings of
// the final commitment keys, and checks all of the above in one randomized
// batched pairing equality.
//
// groth16Vk and publicInputs identify which statement is being aggregated:
// this function only uses them to check that each proof's public-input
// count is consistent with the verifying key's IC length. Binding the
// public inputs themselves into the Fiat-Shamir transcript - recommended
// whenever they are not fixed ahead of aggregation time - is the caller's
// responsibility, exactly as for AggregateProofs: append them to tr before
// calling VerifyAggregateProof. Recomputing the full per-proof Groth16
// pairing equation from groth16Vk and publicInputs is out of scope: the
// Groth16 verifier itself is an external collaborator; see DESIGN.md for
// the reasoning.
func VerifyAggregateProof(verifier *srs.VerifierSRS, groth16Vk *Groth16VerifyingKey, publicInputs [][]fr.Element, proof *AggregateProof, rng io.Reader, tr *transcript.Transcript) error {
	if err := checkPublicInputShape(groth16Vk, publicInputs); err != nil {
		return err
	}

	gp := proof.TMIPP.Gipa
	if gp == nil {
		return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, "VerifyAggregateProof: missing GIPA proof")
	}
	if uint32(1)<<uint(len(gp.Rounds)) != verifier.N || gp.NProofs != verifier.N {
		return errs.New(errs.KindInvalidSRS, errs.ErrSRSLengthMismatch, "VerifyAggregateProof: proof size does not match SRS specialization")
	}

	log := obslog.Logger().With().Uint32("n", verifier.N).Logger()
	log.Debug().Msg("verifying aggregated proof")

	comAB := commitment.Output(proof.ComAB)
	comC := commitment.Output(proof.ComC)

	tr.AppendGT(&comAB.Left)
	tr.AppendGT(&comAB.Right)
	tr.AppendGT(&comC.Left)
	tr.AppendGT(&comC.Right)
	r, err := tr.ChallengeScalar()
	if err != nil {
		return err
	}
	var rInverse fr.Element
	rInverse.Inverse(&r)

	challenges, challengesInv, foldedComAB, foldedComC, foldedIPAB, foldedAggC, err :=
		gipa.Replay(tr, gp.Rounds, comAB, comC, proof.IPAB, proof.AggC)
	if err != nil {
		return err
	}
	reverse(challenges)
	reverse(challengesInv)

	tr.AppendFr(&challenges[0])
	tr.AppendG2(&gp.FinalVKey[0])
	tr.AppendG2(&gp.FinalVKey[1])
	tr.AppendG1(&gp.FinalWKey[0])
	tr.AppendG1(&gp.FinalWKey[1])
	z, err := tr.ChallengeScalar()
	if err != nil {
		return err
	}

	one := fr.One()
	fV := kzgopen.Evaluate(challengesInv, z, one)
	fW := kzgopen.Evaluate(challenges, z, rInverse)
	var zPowN fr.Element
	zPowN.Exp(z, big.NewInt(int64(verifier.N)))
	fW.Mul(&fW, &zPowN)

	var mu sync.Mutex
	batch := pairingcheck.New()
	gtOne := gtIdentity()

	vPairs := kzgopen.VCheckPairs(gp.FinalVKey, [2]bn254.G1Affine{verifier.AlphaG1, verifier.BetaG1}, verifier.G1Gen, verifier.G2Gen, z, fV, proof.TMIPP.VKeyOpening)
	for _, pair := range vPairs {
		check, err := pairingcheck.Rand(&mu, rng, pair[:], gtOne)
		if err != nil {
			return err
		}
		batch.Merge(check)
	}

	wPairs := kzgopen.WCheckPairs(gp.FinalWKey, [2]bn254.G2Affine{verifier.AlphaG2, verifier.BetaG2}, verifier.G1Gen, verifier.G2Gen, z, fW, proof.TMIPP.WKeyOpening)
	for _, pair := range wPairs {
		check, err := pairingcheck.Rand(&mu, rng, pair[:], gtOne)
		if err != nil {
			return err
		}
		batch.Merge(check)
	}

	// pair(final_vkey, final_wkey; final_a, final_b) ?= com_ab_folded, one
	// randomized check per GT coordinate (left, right).
	leftCheck, err := pairingcheck.Rand(&mu, rng,
		[]pairingcheck.Pair{{A: gp.FinalA, B: gp.FinalVKey[0]}, {A: gp.FinalWKey[0], B: gp.FinalB}},
		foldedComAB.Left)
	if err != nil {
		return err
	}
	batch.Merge(leftCheck)
	rightCheck, err := pairingcheck.Rand(&mu, rng,
		[]pairingcheck.Pair{{A: gp.FinalA, B: gp.FinalVKey[1]}, {A: gp.FinalWKey[1], B: gp.FinalB}},
		foldedComAB.Right)
	if err != nil {
		return err
	}
	batch.Merge(rightCheck)

	// single_g1(final_vkey; final_c) ?= com_c_folded.
	comCLeftCheck, err := pairingcheck.Rand(&mu, rng, []pairingcheck.Pair{{A: gp.FinalC, B: gp.FinalVKey[0]}}, foldedComC.Left)
	if err != nil {
		return err
	}
	batch.Merge(comCLeftCheck)
	comCRightCheck, err := pairingcheck.Rand(&mu, rng, []pairingcheck.Pair{{A: gp.FinalC, B: gp.FinalVKey[1]}}, foldedComC.Right)
	if err != nil {
		return err
	}
	batch.Merge(comCRightCheck)

	// e(final_a, final_b) ?= ip_ab_folded.
	ipCheck, err := pairingcheck.Rand(&mu, rng, []pairingcheck.Pair{{A: gp.FinalA, B: gp.FinalB}}, foldedIPAB)
	if err != nil {
		return err
	}
	batch.Merge(ipCheck)

	// r_final*final_c ?= agg_c_folded. Folding r with c_inv each round
	// collapses the structured vector [1, r, ..., r^{n-1}] to
	// r_final = prod_j (1 + x_j * r^{2^j}) over the reversed inverse
	// challenges - the same product form the V-key opening evaluates, at r
	// instead of z. Expressed as a pairing so it folds into the same batched
	// final exponentiation: e(r_final*final_c - agg_c_folded, h) = 1 iff the
	// two points are equal, since pairing is non-degenerate.
	rFinal := kzgopen.Evaluate(challengesInv, r, one)
	aggCDiff := subG1(scalarMulG1(gp.FinalC, &rFinal), foldedAggC)
	aggCCheck, err := pairingcheck.Rand(&mu, rng, []pairingcheck.Pair{{A: aggCDiff, B: verifier.G2Gen}}, gtOne)
	if err != nil {
		return err
	}
	batch.Merge(aggCCheck)

	if err := batch.VerifyStrict(); err != nil {
		log.Warn().Msg("aggregated pairing check failed")
		return err
	}

	log.Debug().Msg("verification succeeded")
	return nil
}

func checkPublicInputShape(vk *Groth16VerifyingKey, publicInputs [][]fr.Element) error {
	if vk == nil {
		return nil
	}
	for _, in := range publicInputs {
		if len(vk.IC) != len(in)+1 {
			return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, "VerifyAggregateProof: public input count does not match verifying key IC length")
		}
	}
	return nil
}

func gtIdentity() bn254.GT {
	var gt bn254.GT
	gt.SetOne()
	return gt
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
