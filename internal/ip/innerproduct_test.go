package ip

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestPairing_MatchesDirectPairing(t *testing.T) {
	_, _, g1Gen, g2Gen := bn254.Generators()

	var a bn254.G1Affine
	a.ScalarMultiplication(&g1Gen, big.NewInt(2))
	var b bn254.G2Affine
	b.ScalarMultiplication(&g2Gen, big.NewInt(3))

	got, err := Pairing([]bn254.G1Affine{a}, []bn254.G2Affine{b})
	require.NoError(t, err)

	want, err := bn254.Pair([]bn254.G1Affine{a}, []bn254.G2Affine{b})
	require.NoError(t, err)
	require.True(t, got.Equal(&want))
}

func TestPairing_RejectsLengthMismatch(t *testing.T) {
	_, _, g1Gen, g2Gen := bn254.Generators()
	_, err := Pairing([]bn254.G1Affine{g1Gen, g1Gen}, []bn254.G2Affine{g2Gen})
	require.Error(t, err)
}

func TestMultiExponentiation_MatchesNaiveSum(t *testing.T) {
	_, _, g1Gen, _ := bn254.Generators()

	points := make([]bn254.G1Affine, 4)
	scalars := make([]fr.Element, 4)
	for i := range points {
		points[i].ScalarMultiplication(&g1Gen, big.NewInt(int64(i+1)))
		scalars[i].SetUint64(uint64(2*i + 1))
	}

	got, err := MultiExponentiation(points, scalars)
	require.NoError(t, err)

	var acc bn254.G1Jac
	for i := range points {
		var sBig big.Int
		scalars[i].BigInt(&sBig)
		var term bn254.G1Jac
		term.FromAffine(&points[i])
		term.ScalarMultiplication(&term, &sBig)
		acc.AddAssign(&term)
	}
	var want bn254.G1Affine
	want.FromJacobian(&acc)
	require.True(t, got.Equal(&want))
}

func TestMultiExponentiation_RejectsLengthMismatch(t *testing.T) {
	_, _, g1Gen, _ := bn254.Generators()
	_, err := MultiExponentiation([]bn254.G1Affine{g1Gen}, nil)
	require.Error(t, err)
}
