package commitment

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func testVKey(t *testing.T, n int) VKey {
	t.Helper()
	_, _, _, g2Gen := bn254.Generators()
	a := make([]bn254.G2Affine, n)
	b := make([]bn254.G2Affine, n)
	for i := range a {
		var jac bn254.G2Jac
		jac.FromAffine(&g2Gen)
		jac.ScalarMultiplication(&jac, big.NewInt(int64(i+1)))
		a[i].FromJacobian(&jac)
		jac.ScalarMultiplication(&jac, big.NewInt(int64(i+2)))
		b[i].FromJacobian(&jac)
	}
	return VKey{A: a, B: b}
}

func TestVKey_SplitAndCompressRoundTrip(t *testing.T) {
	k := testVKey(t, 4)
	left, right := k.Split(2)
	require.Equal(t, 2, left.Len())
	require.Equal(t, 2, right.Len())

	var x fr.Element
	x.SetUint64(3)
	folded, err := left.Compress(&right, &x)
	require.NoError(t, err)
	require.Equal(t, 2, folded.Len())
}

func TestVKey_CompressRejectsLengthMismatch(t *testing.T) {
	left := testVKey(t, 2)
	right := testVKey(t, 3)
	var x fr.Element
	x.SetOne()
	_, err := left.Compress(&right, &x)
	require.Error(t, err)
}

func TestVKey_FirstAfterFullFold(t *testing.T) {
	k := testVKey(t, 1)
	a, b := k.First()
	require.True(t, a.Equal(&k.A[0]))
	require.True(t, b.Equal(&k.B[0]))
}
