// Package gipa implements the generalized inner-product argument recursion
// that both TIPP (the pairing product over A,B) and MIPP (the
// multiexponentiation over C,r) reduce to. Each round halves the
// witness vectors and the commitment keys, recording eight cross-term
// commitments that let the verifier replay the fold in O(log n) without ever
// seeing the full-length vectors.
package gipa

import (
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/errs"
	"github.com/go-snarkpack/aggregator/internal/ip"
	"github.com/go-snarkpack/aggregator/internal/transcript"
)

// Round holds the eight cross-term commitments a single recursion round
// produces: the paired commitments (tab, tuc) and the raw inner products
// (zab, zc), each split into a left and a right half - collapsed into one
// struct per round rather than four parallel arrays.
type Round struct {
	TabL, TabR commitment.Output
	TucL, TucR commitment.Output
	ZabL, ZabR bn254.GT
	ZcL, ZcR   bn254.G1Affine
}

// Proof is the full GIPA transcript: the recorded rounds plus the final,
// length-1 witnesses and commitment keys the recursion bottoms out at.
type Proof struct {
	NProofs uint32
	Rounds  []Round

	FinalA bn254.G1Affine
	FinalB bn254.G2Affine
	FinalC bn254.G1Affine

	FinalVKey [2]bn254.G2Affine // (v_a[0], v_b[0])
	FinalWKey [2]bn254.G1Affine // (w_a[0], w_b[0])
}

type eightValues struct {
	tabL, tabR commitment.Output
	tucL, tucR commitment.Output
	zabL, zabR bn254.GT
	zcL, zcR   bn254.G1Affine
}

// computeRound runs the eight independent cross-term computations
// concurrently, collecting into a fixed struct so ordering never
// depends on goroutine completion order.
func computeRound(vL, vR *commitment.VKey, wL, wR *commitment.WKey, aL, aR []bn254.G1Affine, bL, bR []bn254.G2Affine, cL, cR []bn254.G1Affine, rL, rR []fr.Element) (eightValues, error) {
	var out eightValues
	var errSlice [8]error
	var wg sync.WaitGroup
	wg.Add(8)

	go func() { defer wg.Done(); out.tabL, errSlice[0] = commitment.Pair(vL, wR, aR, bL) }()
	go func() { defer wg.Done(); out.tabR, errSlice[1] = commitment.Pair(vR, wL, aL, bR) }()
	go func() { defer wg.Done(); out.zabL, errSlice[2] = ip.Pairing(aR, bL) }()
	go func() { defer wg.Done(); out.zabR, errSlice[3] = ip.Pairing(aL, bR) }()
	go func() { defer wg.Done(); out.zcL, errSlice[4] = ip.MultiExponentiation(cR, rL) }()
	go func() { defer wg.Done(); out.zcR, errSlice[5] = ip.MultiExponentiation(cL, rR) }()
	go func() { defer wg.Done(); out.tucL, errSlice[6] = commitment.SingleG1(vL, cR) }()
	go func() { defer wg.Done(); out.tucR, errSlice[7] = commitment.SingleG1(vR, cL) }()
	wg.Wait()

	for _, e := range errSlice {
		if e != nil {
			return eightValues{}, e
		}
	}
	return out, nil
}

// Prove runs the GIPA recursion on (a,b,c,r) under keys (v,w), returning the
// proof together with the forward and inverse challenge sequences in round
// order (not yet reversed - the caller does that, since reversal is an
// aggregator-level concern shared with the KZG opening).
func Prove(tr *transcript.Transcript, v commitment.VKey, w commitment.WKey, a []bn254.G1Affine, b []bn254.G2Affine, c []bn254.G1Affine, r []fr.Element, ipAB bn254.GT, aggC bn254.G1Affine) (*Proof, []fr.Element, []fr.Element, error) {
	n := len(a)
	if n == 0 || n&(n-1) != 0 {
		return nil, nil, nil, errs.New(errs.KindInvalidProof, errs.ErrNotPowerOfTwo, "gipa.Prove")
	}

	tr.AppendGT(&ipAB)
	tr.AppendG1(&aggC)
	curCInv, err := tr.ChallengeScalar()
	if err != nil {
		return nil, nil, nil, err
	}
	var curC fr.Element
	curC.Inverse(&curCInv)

	var rounds []Round
	var challenges, challengesInv []fr.Element

	for len(a) > 1 {
		split := len(a) / 2
		aL, aR := a[:split], a[split:]
		bL, bR := b[:split], b[split:]
		cL, cR := c[:split], c[split:]
		rL, rR := r[:split], r[split:]
		vL, vR := v.Split(split)
		wL, wR := w.Split(split)

		vals, err := computeRound(&vL, &vR, &wL, &wR, aL, aR, bL, bR, cL, cR, rL, rR)
		if err != nil {
			return nil, nil, nil, err
		}

		if len(rounds) > 0 {
			tr.AppendFr(&curCInv)
			tr.AppendGT(&vals.zabL)
			tr.AppendGT(&vals.zabR)
			tr.AppendG1(&vals.zcL)
			tr.AppendG1(&vals.zcR)
			tr.AppendGT(&vals.tabL.Left)
			tr.AppendGT(&vals.tabL.Right)
			tr.AppendGT(&vals.tabR.Left)
			tr.AppendGT(&vals.tabR.Right)
			tr.AppendGT(&vals.tucL.Left)
			tr.AppendGT(&vals.tucL.Right)
			tr.AppendGT(&vals.tucR.Left)
			tr.AppendGT(&vals.tucR.Right)

			curCInv, err = tr.ChallengeScalar()
			if err != nil {
				return nil, nil, nil, err
			}
			curC.Inverse(&curCInv)
		}

		a, err = foldG1(aL, aR, &curC)
		if err != nil {
			return nil, nil, nil, err
		}
		b, err = foldG2(bL, bR, &curCInv)
		if err != nil {
			return nil, nil, nil, err
		}
		c, err = foldG1(cL, cR, &curC)
		if err != nil {
			return nil, nil, nil, err
		}
		r = foldFr(rL, rR, &curCInv)

		foldedV, err := vL.Compress(&vR, &curCInv)
		if err != nil {
			return nil, nil, nil, err
		}
		v = foldedV
		foldedW, err := wL.Compress(&wR, &curC)
		if err != nil {
			return nil, nil, nil, err
		}
		w = foldedW

		rounds = append(rounds, Round{
			TabL: vals.tabL, TabR: vals.tabR,
			TucL: vals.tucL, TucR: vals.tucR,
			ZabL: vals.zabL, ZabR: vals.zabR,
			ZcL: vals.zcL, ZcR: vals.zcR,
		})
		challenges = append(challenges, curC)
		challengesInv = append(challengesInv, curCInv)
	}

	vA, vB := v.First()
	wA, wB := w.First()

	return &Proof{
		NProofs:   uint32(n),
		Rounds:    rounds,
		FinalA:    a[0],
		FinalB:    b[0],
		FinalC:    c[0],
		FinalVKey: [2]bn254.G2Affine{vA, vB},
		FinalWKey: [2]bn254.G1Affine{wA, wB},
	}, challenges, challengesInv, nil
}
