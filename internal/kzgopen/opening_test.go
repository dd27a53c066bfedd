package kzgopen

import (
	crand "crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/pairingcheck"
)

// trapdoor power tables let these tests state the folded final keys in
// closed form (h^{f(alpha)}, g^{alpha^n f(alpha)}) instead of replaying a
// whole GIPA run.
func powersG1Test(gen bn254.G1Affine, x fr.Element, n int) []bn254.G1Affine {
	out := make([]bn254.G1Affine, n)
	cur := fr.One()
	for i := 0; i < n; i++ {
		var cBig big.Int
		cur.BigInt(&cBig)
		out[i].ScalarMultiplication(&gen, &cBig)
		cur.Mul(&cur, &x)
	}
	return out
}

func powersG2Test(gen bn254.G2Affine, x fr.Element, n int) []bn254.G2Affine {
	out := make([]bn254.G2Affine, n)
	cur := fr.One()
	for i := 0; i < n; i++ {
		var cBig big.Int
		cur.BigInt(&cBig)
		out[i].ScalarMultiplication(&gen, &cBig)
		cur.Mul(&cur, &x)
	}
	return out
}

func verifyPairGroups(t *testing.T, groups [2][2]pairingcheck.Pair) {
	t.Helper()
	var mu sync.Mutex
	var gtOne bn254.GT
	gtOne.SetOne()
	for k := range groups {
		check, err := pairingcheck.Rand(&mu, crand.Reader, groups[k][:], gtOne)
		require.NoError(t, err)
		require.True(t, check.Verify(), "pair group %d", k)
	}
}

func TestProveVOpeningVerifies(t *testing.T) {
	rng := mrand.New(mrand.NewSource(21))
	const n = 4
	alpha := randScalar(rng)
	beta := randScalar(rng)
	_, _, g1Gen, g2Gen := bn254.Generators()

	vkey := commitment.VKey{
		A: powersG2Test(g2Gen, alpha, n),
		B: powersG2Test(g2Gen, beta, n),
	}

	challengesInv := randScalars(rng, 2)
	z := randScalar(rng)

	opening, y, err := ProveV(&vkey, challengesInv, z)
	require.NoError(t, err)

	one := fr.One()
	wantY := Evaluate(challengesInv, z, one)
	require.True(t, y.Equal(&wantY))

	// The final V key a GIPA fold over these challenges would produce.
	fAlpha := Evaluate(challengesInv, alpha, one)
	fBeta := Evaluate(challengesInv, beta, one)
	finalV := [2]bn254.G2Affine{
		scalarMulG2(g2Gen, &fAlpha),
		scalarMulG2(g2Gen, &fBeta),
	}
	fixedG1 := [2]bn254.G1Affine{
		scalarMulG1(g1Gen, &alpha),
		scalarMulG1(g1Gen, &beta),
	}

	verifyPairGroups(t, VCheckPairs(finalV, fixedG1, g1Gen, g2Gen, z, y, opening))
}

func TestProveWOpeningVerifies(t *testing.T) {
	rng := mrand.New(mrand.NewSource(22))
	const n = 4
	alpha := randScalar(rng)
	beta := randScalar(rng)
	_, _, g1Gen, g2Gen := bn254.Generators()

	tableAlpha := powersG1Test(g1Gen, alpha, 2*n)
	tableBeta := powersG1Test(g1Gen, beta, 2*n)

	challenges := randScalars(rng, 2)
	rInv := randScalar(rng)
	z := randScalar(rng)

	opening, y, err := ProveW(tableAlpha, tableBeta, challenges, rInv, z)
	require.NoError(t, err)

	var zPowN fr.Element
	zPowN.Exp(z, big.NewInt(n))
	wantY := Evaluate(challenges, z, rInv)
	wantY.Mul(&wantY, &zPowN)
	require.True(t, y.Equal(&wantY))

	// final W key: g^{alpha^n * f(alpha)} since W is the top half of the
	// power table.
	var alphaPowN, betaPowN fr.Element
	alphaPowN.Exp(alpha, big.NewInt(n))
	betaPowN.Exp(beta, big.NewInt(n))
	fwAlpha := Evaluate(challenges, alpha, rInv)
	fwAlpha.Mul(&fwAlpha, &alphaPowN)
	fwBeta := Evaluate(challenges, beta, rInv)
	fwBeta.Mul(&fwBeta, &betaPowN)
	finalW := [2]bn254.G1Affine{
		scalarMulG1(g1Gen, &fwAlpha),
		scalarMulG1(g1Gen, &fwBeta),
	}
	fixedG2 := [2]bn254.G2Affine{
		scalarMulG2(g2Gen, &alpha),
		scalarMulG2(g2Gen, &beta),
	}

	verifyPairGroups(t, WCheckPairs(finalW, fixedG2, g1Gen, g2Gen, z, y, opening))
}
