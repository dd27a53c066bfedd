// Package pairingcheck implements the randomized batching of pairing
// equalities: many assertions of the form
// prod_i e(A_i,B_i) = T are combined via random linear combination so that
// the whole batch collapses into a single final exponentiation.
package pairingcheck

import (
	"io"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/errs"
	"github.com/go-snarkpack/aggregator/internal/parallel"
)

// Pair is one (A,B) operand of a prod_i e(A_i,B_i) equation.
type Pair struct {
	A bn254.G1Affine
	B bn254.G2Affine
}

// PairingCheck accumulates a miller-loop product (left) to be
// final-exponentiated and compared against an already-reduced right-hand
// side. At most one contributor may be non-randomized; see Verify.
type PairingCheck struct {
	left          bn254.GT
	right         bn254.GT
	nonRandomized uint8
}

// New returns the identity check "1 = 1", which always verifies and never
// counts as a non-randomized contributor.
func New() *PairingCheck {
	p := &PairingCheck{}
	p.left.SetOne()
	p.right.SetOne()
	return p
}

// NewInvalid returns a check that can never verify, used in tests to assert
// Verify's failure path.
func NewInvalid() *PairingCheck {
	p := &PairingCheck{nonRandomized: 2}
	p.left.SetOne()
	p.right.SetOne()
	p.right.Add(&p.right, &p.right) // right = 2 != 1 = left
	return p
}

// FromPair builds a non-randomized check asserting
// FinalExponentiation(result) == exp. There must be at most one such check
// in a merged batch.
func FromPair(result, exp bn254.GT) *PairingCheck {
	return &PairingCheck{left: result, right: exp, nonRandomized: 1}
}

// FromProducts builds a non-randomized check from the product of several
// already-accumulated miller-loop outputs.
func FromProducts(lefts []bn254.GT, right bn254.GT) *PairingCheck {
	product := bn254.GT{}
	product.SetOne()
	for _, l := range lefts {
		product.Mul(&product, &l)
	}
	return FromPair(product, right)
}

// Rand draws a nonzero random scalar rho from rng (serialized through mu)
// and returns a randomized check for prod_i e(rho*A_i, B_i) == out^rho,
// which holds (with overwhelming probability over rho) iff
// prod_i e(A_i,B_i) == out.
func Rand(mu *sync.Mutex, rng io.Reader, pairs []Pair, out bn254.GT) (*PairingCheck, error) {
	rho, err := randFr(mu, rng)
	if err != nil {
		return nil, err
	}
	var rhoBig big.Int
	rho.BigInt(&rhoBig)

	millerOuts := make([]bn254.GT, len(pairs))
	err = parallel.Do(len(pairs), func(i int) error {
		var aj bn254.G1Jac
		aj.FromAffine(&pairs[i].A)
		aj.ScalarMultiplication(&aj, &rhoBig)
		var a bn254.G1Affine
		a.FromJacobian(&aj)

		ml, err := bn254.MillerLoop([]bn254.G1Affine{a}, []bn254.G2Affine{pairs[i].B})
		if err != nil {
			return err
		}
		millerOuts[i] = ml
		return nil
	})
	if err != nil {
		return nil, err
	}

	left := bn254.GT{}
	left.SetOne()
	for i := range millerOuts {
		left.Mul(&left, &millerOuts[i])
	}

	right := out
	if !out.IsOne() {
		right.Exp(out, &rhoBig)
	}

	return &PairingCheck{left: left, right: right}, nil
}

// Merge folds other's left and right sides into the receiver. Both sides
// must already be randomized, except for at most one non-randomized
// contributor across the whole merge chain.
func (p *PairingCheck) Merge(other *PairingCheck) {
	mulIfNotOne(&p.left, &other.left)
	mulIfNotOne(&p.right, &other.right)
	p.nonRandomized += other.nonRandomized
}

// Verify reports whether FinalExponentiation(left) == right, as long as at
// most one contributor to this check was non-randomized.
func (p *PairingCheck) Verify() bool {
	if p.nonRandomized > 1 {
		return false
	}
	fe := bn254.FinalExponentiation(&p.left)
	return fe.Equal(&p.right)
}

// VerifyStrict is Verify but surfaces the "too many non-randomized checks"
// condition as the classified sentinel error instead of folding it into a
// bare false, for callers that want to distinguish bookkeeping bugs from
// genuine verification failure.
func (p *PairingCheck) VerifyStrict() error {
	if p.nonRandomized > 1 {
		return errs.New(errs.KindPairingCheckFailed, errs.ErrTooManyNonRandomized, "")
	}
	if !p.Verify() {
		return errs.New(errs.KindPairingCheckFailed, errs.ErrPairingCheckFailed, "")
	}
	return nil
}

func mulIfNotOne(left *bn254.GT, right *bn254.GT) {
	if left.IsOne() {
		*left = *right
		return
	}
	if right.IsOne() {
		return
	}
	left.Mul(left, right)
}

// randFr draws a uniformly random nonzero scalar from rng, serialized
// through mu so random draws stay deterministic relative to a seeded
// caller, never parallelized across workers.
func randFr(mu *sync.Mutex, rng io.Reader) (fr.Element, error) {
	mu.Lock()
	defer mu.Unlock()

	var buf [fr.Bytes]byte
	var out fr.Element
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return fr.Element{}, err
		}
		out.SetBytes(buf[:])
		if !out.IsZero() {
			return out, nil
		}
	}
}
