package gipa

import (
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/ip"
	"github.com/go-snarkpack/aggregator/internal/transcript"
)

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

func randG1s(rng *mrand.Rand, n int) []bn254.G1Affine {
	_, _, g1Gen, _ := bn254.Generators()
	out := make([]bn254.G1Affine, n)
	for i := range out {
		s := randScalar(rng)
		var sBig big.Int
		s.BigInt(&sBig)
		out[i].ScalarMultiplication(&g1Gen, &sBig)
	}
	return out
}

func randG2s(rng *mrand.Rand, n int) []bn254.G2Affine {
	_, _, _, g2Gen := bn254.Generators()
	out := make([]bn254.G2Affine, n)
	for i := range out {
		s := randScalar(rng)
		var sBig big.Int
		s.BigInt(&sBig)
		out[i].ScalarMultiplication(&g2Gen, &sBig)
	}
	return out
}

// Prove and Replay must derive identical challenge sequences, and the
// replayed fold of (com_ab, com_c, ip_ab, agg_c) must land exactly on the
// leaf values the final witnesses satisfy. This is the round-by-round
// compression identity com_after = com_before * tab_l^c * tab_r^{c_inv},
// exercised across two rounds.
func TestProveReplayFoldConsistency(t *testing.T) {
	rng := mrand.New(mrand.NewSource(31))
	const n = 4

	a := randG1s(rng, n)
	b := randG2s(rng, n)
	c := randG1s(rng, n)
	r := make([]fr.Element, n)
	for i := range r {
		r[i] = randScalar(rng)
	}
	v := commitment.VKey{A: randG2s(rng, n), B: randG2s(rng, n)}
	w := commitment.WKey{A: randG1s(rng, n), B: randG1s(rng, n)}

	comAB, err := commitment.Pair(&v, &w, a, b)
	require.NoError(t, err)
	comC, err := commitment.SingleG1(&v, c)
	require.NoError(t, err)
	ipAB, err := ip.Pairing(a, b)
	require.NoError(t, err)
	aggC, err := ip.MultiExponentiation(c, r)
	require.NoError(t, err)

	proveTr := transcript.New(2)
	proof, challenges, challengesInv, err := Prove(proveTr, v, w, a, b, c, r, ipAB, aggC)
	require.NoError(t, err)
	require.Len(t, proof.Rounds, 2)
	require.True(t, proveTr.Done())

	replayTr := transcript.New(2)
	rChallenges, rChallengesInv, foldedComAB, foldedComC, foldedIPAB, foldedAggC, err :=
		Replay(replayTr, proof.Rounds, comAB, comC, ipAB, aggC)
	require.NoError(t, err)

	require.Equal(t, len(challenges), len(rChallenges))
	for i := range challenges {
		require.True(t, challenges[i].Equal(&rChallenges[i]), "challenge %d", i)
		require.True(t, challengesInv[i].Equal(&rChallengesInv[i]), "challenge inv %d", i)
	}

	finalV := commitment.VKey{
		A: []bn254.G2Affine{proof.FinalVKey[0]},
		B: []bn254.G2Affine{proof.FinalVKey[1]},
	}
	finalW := commitment.WKey{
		A: []bn254.G1Affine{proof.FinalWKey[0]},
		B: []bn254.G1Affine{proof.FinalWKey[1]},
	}

	leafComAB, err := commitment.Pair(&finalV, &finalW, []bn254.G1Affine{proof.FinalA}, []bn254.G2Affine{proof.FinalB})
	require.NoError(t, err)
	require.True(t, leafComAB.Left.Equal(&foldedComAB.Left))
	require.True(t, leafComAB.Right.Equal(&foldedComAB.Right))

	leafComC, err := commitment.SingleG1(&finalV, []bn254.G1Affine{proof.FinalC})
	require.NoError(t, err)
	require.True(t, leafComC.Left.Equal(&foldedComC.Left))
	require.True(t, leafComC.Right.Equal(&foldedComC.Right))

	leafIPAB, err := ip.Pairing([]bn254.G1Affine{proof.FinalA}, []bn254.G2Affine{proof.FinalB})
	require.NoError(t, err)
	require.True(t, leafIPAB.Equal(&foldedIPAB))

	// agg_c folds to r_final * final_c, where r_final is the scalar vector
	// folded with the inverse challenges in round order.
	folded := append([]fr.Element(nil), r...)
	for i := range rChallengesInv {
		split := len(folded) / 2
		folded = foldFr(folded[:split], folded[split:], &rChallengesInv[i])
	}
	require.Len(t, folded, 1)
	var rfBig big.Int
	folded[0].BigInt(&rfBig)
	var expected bn254.G1Jac
	expected.FromAffine(&proof.FinalC)
	expected.ScalarMultiplication(&expected, &rfBig)
	var expectedAff bn254.G1Affine
	expectedAff.FromJacobian(&expected)
	require.True(t, expectedAff.Equal(&foldedAggC))
}

func TestProve_RejectsNonPowerOfTwo(t *testing.T) {
	rng := mrand.New(mrand.NewSource(32))
	a := randG1s(rng, 3)
	b := randG2s(rng, 3)
	c := randG1s(rng, 3)
	r := make([]fr.Element, 3)
	v := commitment.VKey{A: randG2s(rng, 3), B: randG2s(rng, 3)}
	w := commitment.WKey{A: randG1s(rng, 3), B: randG1s(rng, 3)}

	var gtOne bn254.GT
	gtOne.SetOne()
	tr := transcript.New(2)
	_, _, _, err := Prove(tr, v, w, a, b, c, r, gtOne, bn254.G1Affine{})
	require.Error(t, err)
}
