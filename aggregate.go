package aggregator

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/errs"
	"github.com/go-snarkpack/aggregator/internal/gipa"
	"github.com/go-snarkpack/aggregator/internal/ip"
	"github.com/go-snarkpack/aggregator/internal/kzgopen"
	"github.com/go-snarkpack/aggregator/internal/obslog"
	"github.com/go-snarkpack/aggregator/internal/parallel"
	"github.com/go-snarkpack/aggregator/internal/srs"
	"github.com/go-snarkpack/aggregator/internal/transcript"
)

// AggregateProofs commits to the A/B/C vectors of
// proofs, draws the linear-combination challenge r from the transcript,
// rescales B by powers of r, runs the GIPA recursion (TIPP over A,B
// and MIPP over C,r simultaneously), and closes the recursion with two KZG
// openings over the final, length-1 commitment keys.
//
// Callers that need public inputs bound into the Fiat-Shamir transcript
// (recommended whenever inputs are not fixed ahead of time) must append them
// to tr before calling AggregateProofs - this function only appends the
// protocol's own commitments and challenges.
func AggregateProofs(prover *srs.ProverSRS, tr *transcript.Transcript, proofs []Groth16Proof) (*AggregateProof, error) {
	n := len(proofs)
	if n < 2 {
		return nil, errs.New(errs.KindInvalidProof, errs.ErrTooFewProofs, "AggregateProofs")
	}
	if n&(n-1) != 0 {
		return nil, errs.New(errs.KindInvalidProof, errs.ErrNotPowerOfTwo, "AggregateProofs")
	}
	if !prover.HasCorrectLen(n) {
		return nil, errs.New(errs.KindInvalidSRS, errs.ErrSRSLengthMismatch, "AggregateProofs")
	}

	log := obslog.Logger().With().Int("n", n).Logger()
	log.Debug().Msg("aggregating proofs")

	a := make([]bn254.G1Affine, n)
	b := make([]bn254.G2Affine, n)
	c := make([]bn254.G1Affine, n)
	for i, p := range proofs {
		a[i], b[i], c[i] = p.A, p.B, p.C
	}

	comAB, err := commitment.Pair(&prover.VKey, &prover.WKey, a, b)
	if err != nil {
		return nil, err
	}
	comC, err := commitment.SingleG1(&prover.VKey, c)
	if err != nil {
		return nil, err
	}

	tr.AppendGT(&comAB.Left)
	tr.AppendGT(&comAB.Right)
	tr.AppendGT(&comC.Left)
	tr.AppendGT(&comC.Right)
	r, err := tr.ChallengeScalar()
	if err != nil {
		return nil, err
	}

	rVec := structuredScalarPowers(r, n)
	rInvVec := make([]fr.Element, n)
	for i := range rVec {
		rInvVec[i].Inverse(&rVec[i])
	}

	bR, err := scalePointsG2(b, rVec)
	if err != nil {
		return nil, err
	}

	ipAB, err := ip.Pairing(a, bR)
	if err != nil {
		return nil, err
	}
	aggCPoint, err := ip.MultiExponentiation(c, rVec)
	if err != nil {
		return nil, err
	}

	wPrime, err := prover.WKey.Scale(rInvVec)
	if err != nil {
		return nil, err
	}

	gp, challenges, challengesInv, err := gipa.Prove(tr, prover.VKey, wPrime, a, bR, c, rVec, ipAB, aggCPoint)
	if err != nil {
		return nil, err
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
		return nil, err
	}

	var rInverse fr.Element
	rInverse.Inverse(&r)

	vOpening, _, err := kzgopen.ProveV(&prover.VKey, challengesInv, z)
	if err != nil {
		return nil, err
	}
	wOpening, _, err := kzgopen.ProveW(prover.WOpeningAlpha, prover.WOpeningBeta, challenges, rInverse, z)
	if err != nil {
		return nil, err
	}

	log.Debug().Msg("aggregation complete")

	return &AggregateProof{
		ComAB: CommitmentOutput(comAB),
		ComC:  CommitmentOutput(comC),
		IPAB:  ipAB,
		AggC:  aggCPoint,
		TMIPP: TippMippProof{
			Gipa:        gp,
			VKeyOpening: vOpening,
			WKeyOpening: wOpening,
		},
	}, nil
}

// structuredScalarPowers returns [1, r, r^2, ..., r^{n-1}].
func structuredScalarPowers(r fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &r)
	}
	return out
}

func scalePointsG2(points []bn254.G2Affine, scalars []fr.Element) ([]bn254.G2Affine, error) {
	out := make([]bn254.G2Affine, len(points))
	err := parallel.Do(len(points), func(i int) error {
		var sBig big.Int
		scalars[i].BigInt(&sBig)
		var j bn254.G2Jac
		j.FromAffine(&points[i])
		j.ScalarMultiplication(&j, &sBig)
		out[i].FromJacobian(&j)
		return nil
	})
	return out, err
}

func reverse(s []fr.Element) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
