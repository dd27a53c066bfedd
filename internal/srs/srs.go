// Package srs implements the structured reference string the aggregator
// consumes. The trusted-setup ceremony itself is out of scope;
// Setup exists only so tests and local tooling can produce
// an SRS compatible with the aggregator without depending on an external
// ceremony transcript.
package srs

import (
	"math/big"
	"math/rand"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/errs"
)

// SRS holds the full toxic-waste power tables up to NMax, from which any
// power-of-two specialization n <= NMax can be carved out by truncation.
type SRS struct {
	NMax uint32

	G1Gen bn254.G1Affine
	G2Gen bn254.G2Affine

	// G1AlphaPowers[i] = g^{alpha^i}, G1BetaPowers[i] = g^{beta^i}, i in
	// [0,2*NMax). The doubled length over NMax is what makes the W key work:
	// W is carved from the top half (g^{alpha^{n+i}}, i in [0,n)), so the
	// folded final W key is g^{alpha^n*f(alpha)} and its opening polynomial
	// f_w(X) = X^n*f(X) commits against the full [0,2n) table.
	G1AlphaPowers []bn254.G1Affine
	G1BetaPowers  []bn254.G1Affine
	// G2AlphaPowers[i] = h^{alpha^i}, G2BetaPowers[i] = h^{beta^i}, i in [0,NMax).
	G2AlphaPowers []bn254.G2Affine
	G2BetaPowers  []bn254.G2Affine

	AlphaG1 bn254.G1Affine // g^alpha
	BetaG1  bn254.G1Affine // g^beta
	AlphaG2 bn254.G2Affine // h^alpha
	BetaG2  bn254.G2Affine // h^beta
}

// ProverSRS is the prover's half of the SRS, specialized to n.
type ProverSRS struct {
	N    uint32
	VKey commitment.VKey // h^{alpha^i}, h^{beta^i}, i in [0,n); doubles as V's own KZG-opening table
	WKey commitment.WKey // g^{alpha^{n+i}}, g^{beta^{n+i}}, i in [0,n)

	// WOpeningAlpha / WOpeningBeta hold g^{alpha^i}, g^{beta^i} for i in
	// [0,2n): the full-width table W's KZG opening MSMs against, since it
	// commits the quotient of the n-shifted polynomial f_w.
	WOpeningAlpha []bn254.G1Affine
	WOpeningBeta  []bn254.G1Affine
}

// HasCorrectLen reports whether this SRS was specialized to exactly n.
func (p *ProverSRS) HasCorrectLen(n int) bool {
	return int(p.N) == n && p.VKey.Len() == n && p.WKey.Len() == n
}

// VerifierSRS is the verifier's half of the SRS, specialized to n.
type VerifierSRS struct {
	N uint32

	G1Gen bn254.G1Affine
	G2Gen bn254.G2Affine

	AlphaG1 bn254.G1Affine
	BetaG1  bn254.G1Affine
	AlphaG2 bn254.G2Affine
	BetaG2  bn254.G2Affine
}

// Setup deterministically derives toxic-waste scalars from seed and builds
// power tables up to NextPowerOfTwo(n). Not a substitute for a real
// multi-party ceremony; see package doc.
func Setup(seed int64, n uint32) (*SRS, error) {
	if n == 0 {
		return nil, errs.New(errs.KindInvalidSRS, errs.ErrSRSLengthMismatch, "setup size must be > 0")
	}
	nMax := uint32(ecc.NextPowerOfTwo(uint64(n)))
	g1TableLen := 2 * nMax

	rng := rand.New(rand.NewSource(seed))
	alpha := randFr(rng)
	beta := randFr(rng)

	_, _, g1Gen, g2Gen := bn254.Generators()

	s := &SRS{
		NMax:  nMax,
		G1Gen: g1Gen,
		G2Gen: g2Gen,
	}

	var alphaBig, betaBig big.Int
	alpha.BigInt(&alphaBig)
	beta.BigInt(&betaBig)
	s.AlphaG1.ScalarMultiplication(&g1Gen, &alphaBig)
	s.BetaG1.ScalarMultiplication(&g1Gen, &betaBig)
	s.AlphaG2.ScalarMultiplication(&g2Gen, &alphaBig)
	s.BetaG2.ScalarMultiplication(&g2Gen, &betaBig)

	s.G1AlphaPowers = powersG1(g1Gen, alpha, g1TableLen)
	s.G1BetaPowers = powersG1(g1Gen, beta, g1TableLen)
	s.G2AlphaPowers = powersG2(g2Gen, alpha, nMax)
	s.G2BetaPowers = powersG2(g2Gen, beta, nMax)

	return s, nil
}

// powersG1 returns [gen, gen^x, gen^{x^2}, ..., gen^{x^{n-1}}], built with a
// running scalar so only one exponentiation touches the curve per step,
// the same incremental-power construction used elsewhere in this ecosystem
// to build roots of unity.
func powersG1(gen bn254.G1Affine, x fr.Element, n uint32) []bn254.G1Affine {
	out := make([]bn254.G1Affine, n)
	out[0] = gen
	current := fr.One()
	for i := uint32(1); i < n; i++ {
		current.Mul(&current, &x)
		var cBig big.Int
		current.BigInt(&cBig)
		out[i].ScalarMultiplication(&gen, &cBig)
	}
	return out
}

func powersG2(gen bn254.G2Affine, x fr.Element, n uint32) []bn254.G2Affine {
	out := make([]bn254.G2Affine, n)
	out[0] = gen
	current := fr.One()
	for i := uint32(1); i < n; i++ {
		current.Mul(&current, &x)
		var cBig big.Int
		current.BigInt(&cBig)
		out[i].ScalarMultiplication(&gen, &cBig)
	}
	return out
}

func randFr(rng *rand.Rand) fr.Element {
	var buf [fr.Bytes]byte
	_, _ = rng.Read(buf[:])
	var out fr.Element
	out.SetBytes(buf[:])
	if out.IsZero() {
		out.SetOne()
	}
	return out
}

// Specialize carves the prover and verifier halves of the SRS for exactly n
// proofs, n <= s.NMax. HasCorrectLen is enforced by the caller
// comparing ProverSRS.N against the proof count.
func (s *SRS) Specialize(n uint32) (*ProverSRS, *VerifierSRS, error) {
	if n == 0 || n > s.NMax {
		return nil, nil, errs.New(errs.KindInvalidSRS, errs.ErrSRSLengthMismatch, "requested specialization exceeds SRS capacity")
	}

	wOpeningLen := 2 * n
	prover := &ProverSRS{
		N: n,
		VKey: commitment.VKey{
			A: append([]bn254.G2Affine(nil), s.G2AlphaPowers[:n]...),
			B: append([]bn254.G2Affine(nil), s.G2BetaPowers[:n]...),
		},
		WKey: commitment.WKey{
			A: append([]bn254.G1Affine(nil), s.G1AlphaPowers[n:wOpeningLen]...),
			B: append([]bn254.G1Affine(nil), s.G1BetaPowers[n:wOpeningLen]...),
		},
		WOpeningAlpha: append([]bn254.G1Affine(nil), s.G1AlphaPowers[:wOpeningLen]...),
		WOpeningBeta:  append([]bn254.G1Affine(nil), s.G1BetaPowers[:wOpeningLen]...),
	}

	verifier := &VerifierSRS{
		N:       n,
		G1Gen:   s.G1Gen,
		G2Gen:   s.G2Gen,
		AlphaG1: s.AlphaG1,
		BetaG1:  s.BetaG1,
		AlphaG2: s.AlphaG2,
		BetaG2:  s.BetaG2,
	}

	return prover, verifier, nil
}
