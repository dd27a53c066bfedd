// Package commitment implements the paired commitment keys V and W
// and the vector commitments built over them. V carries
// the SRS row (h^{α^i}, h^{β^i}) over G2; W carries the shifted SRS row
// (g^{α^{n+i}}, g^{β^{n+i}}) over G1.
package commitment

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/errs"
	"github.com/go-snarkpack/aggregator/internal/parallel"
)

// VKey is the commitment key used to commit to the A and C vectors: a pair
// of equal-length G2 sequences.
type VKey struct {
	A []bn254.G2Affine
	B []bn254.G2Affine
}

// WKey is the commitment key used to commit to the B vector (and, scaled by
// r^-1, to fold TIPP/MIPP alongside W): a pair of equal-length G1 sequences.
type WKey struct {
	A []bn254.G1Affine
	B []bn254.G1Affine
}

// Len returns the common length of the key's coordinate sequences.
func (k *VKey) Len() int { return len(k.A) }

// Len returns the common length of the key's coordinate sequences.
func (k *WKey) Len() int { return len(k.A) }

// Split returns two keys of length at and len-at sharing no backing storage
// with each other or with the receiver after the call.
func (k *VKey) Split(at int) (left, right VKey) {
	left = VKey{A: append([]bn254.G2Affine(nil), k.A[:at]...), B: append([]bn254.G2Affine(nil), k.B[:at]...)}
	right = VKey{A: append([]bn254.G2Affine(nil), k.A[at:]...), B: append([]bn254.G2Affine(nil), k.B[at:]...)}
	return
}

// Split returns two keys of length at and len-at sharing no backing storage
// with each other or with the receiver after the call.
func (k *WKey) Split(at int) (left, right WKey) {
	left = WKey{A: append([]bn254.G1Affine(nil), k.A[:at]...), B: append([]bn254.G1Affine(nil), k.B[:at]...)}
	right = WKey{A: append([]bn254.G1Affine(nil), k.A[at:]...), B: append([]bn254.G1Affine(nil), k.B[at:]...)}
	return
}

// Compress returns a new key with out[i] = k[i] + x*other[i],
// coordinate-wise (the two must already share the same length, as they are
// always the two halves of one split). It does not work in place: neither
// the receiver nor other is modified, and the result has its own storage.
func (k *VKey) Compress(other *VKey, x *fr.Element) (VKey, error) {
	if len(k.A) != len(other.A) {
		return VKey{}, errs.New(errs.KindInvalidProof, errs.ErrKeyLengthMismatch, "VKey.Compress")
	}
	n := len(k.A)
	out := VKey{A: make([]bn254.G2Affine, n), B: make([]bn254.G2Affine, n)}
	xBig := new(big.Int)
	x.BigInt(xBig)
	err := parallel.Do(n, func(i int) error {
		out.A[i] = addScaledG2(&k.A[i], &other.A[i], xBig)
		out.B[i] = addScaledG2(&k.B[i], &other.B[i], xBig)
		return nil
	})
	return out, err
}

// Compress returns a new key with out[i] = k[i] + x*other[i],
// coordinate-wise. It does not work in place: neither the receiver nor
// other is modified, and the result has its own storage.
func (k *WKey) Compress(other *WKey, x *fr.Element) (WKey, error) {
	if len(k.A) != len(other.A) {
		return WKey{}, errs.New(errs.KindInvalidProof, errs.ErrKeyLengthMismatch, "WKey.Compress")
	}
	n := len(k.A)
	out := WKey{A: make([]bn254.G1Affine, n), B: make([]bn254.G1Affine, n)}
	xBig := new(big.Int)
	x.BigInt(xBig)
	err := parallel.Do(n, func(i int) error {
		out.A[i] = addScaledG1(&k.A[i], &other.A[i], xBig)
		out.B[i] = addScaledG1(&k.B[i], &other.B[i], xBig)
		return nil
	})
	return out, err
}

// Scale returns key[i] <- s[i]*key[i], element-wise. Used exactly once, to
// produce w^{r^-1} before entering GIPA.
func (k *WKey) Scale(s []fr.Element) (WKey, error) {
	if len(s) != len(k.A) {
		return WKey{}, errs.New(errs.KindInvalidProof, errs.ErrKeyLengthMismatch, "WKey.Scale")
	}
	n := len(k.A)
	out := WKey{A: make([]bn254.G1Affine, n), B: make([]bn254.G1Affine, n)}
	err := parallel.Do(n, func(i int) error {
		sBig := new(big.Int)
		s[i].BigInt(sBig)
		var ja, jb bn254.G1Jac
		ja.FromAffine(&k.A[i])
		ja.ScalarMultiplication(&ja, sBig)
		out.A[i].FromJacobian(&ja)
		jb.FromAffine(&k.B[i])
		jb.ScalarMultiplication(&jb, sBig)
		out.B[i].FromJacobian(&jb)
		return nil
	})
	return out, err
}

// First returns the singleton tuple at length 1; callers must only invoke it
// once the recursion has reduced the key to a single coordinate pair.
func (k *VKey) First() (bn254.G2Affine, bn254.G2Affine) {
	return k.A[0], k.B[0]
}

// First returns the singleton tuple at length 1.
func (k *WKey) First() (bn254.G1Affine, bn254.G1Affine) {
	return k.A[0], k.B[0]
}

func addScaledG2(left, right *bn254.G2Affine, x *big.Int) bn254.G2Affine {
	var rj, lj bn254.G2Jac
	rj.FromAffine(right)
	rj.ScalarMultiplication(&rj, x)
	lj.FromAffine(left)
	lj.AddAssign(&rj)
	var out bn254.G2Affine
	out.FromJacobian(&lj)
	return out
}

func addScaledG1(left, right *bn254.G1Affine, x *big.Int) bn254.G1Affine {
	var rj, lj bn254.G1Jac
	rj.FromAffine(right)
	rj.ScalarMultiplication(&rj, x)
	lj.FromAffine(left)
	lj.AddAssign(&rj)
	var out bn254.G1Affine
	out.FromJacobian(&lj)
	return out
}
