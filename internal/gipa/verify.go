package gipa

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/transcript"
)

// Replay re-derives the forward and inverse challenge sequences from a
// proof's recorded rounds and, in the same pass, folds
// the claimed (com_ab, com_c, ip_ab, agg_c) down to the single leaf-level
// values the final witnesses must satisfy. Doing both in one loop
// avoids replaying the round structure twice.
func Replay(tr *transcript.Transcript, rounds []Round, comAB, comC commitment.Output, ipAB bn254.GT, aggC bn254.G1Affine) (challenges, challengesInv []fr.Element, foldedComAB, foldedComC commitment.Output, foldedIPAB bn254.GT, foldedAggC bn254.G1Affine, err error) {
	tr.AppendGT(&ipAB)
	tr.AppendG1(&aggC)
	curCInv, err := tr.ChallengeScalar()
	if err != nil {
		return
	}
	var curC fr.Element
	curC.Inverse(&curCInv)

	foldedComAB, foldedComC, foldedIPAB, foldedAggC = comAB, comC, ipAB, aggC

	for i := range rounds {
		rd := &rounds[i]

		if i > 0 {
			tr.AppendFr(&curCInv)
			tr.AppendGT(&rd.ZabL)
			tr.AppendGT(&rd.ZabR)
			tr.AppendG1(&rd.ZcL)
			tr.AppendG1(&rd.ZcR)
			tr.AppendGT(&rd.TabL.Left)
			tr.AppendGT(&rd.TabL.Right)
			tr.AppendGT(&rd.TabR.Left)
			tr.AppendGT(&rd.TabR.Right)
			tr.AppendGT(&rd.TucL.Left)
			tr.AppendGT(&rd.TucL.Right)
			tr.AppendGT(&rd.TucR.Left)
			tr.AppendGT(&rd.TucR.Right)

			curCInv, err = tr.ChallengeScalar()
			if err != nil {
				return
			}
			curC.Inverse(&curCInv)
		}

		challenges = append(challenges, curC)
		challengesInv = append(challengesInv, curCInv)

		foldedComAB.Left = foldGT(foldedComAB.Left, rd.TabL.Left, rd.TabR.Left, curC, curCInv)
		foldedComAB.Right = foldGT(foldedComAB.Right, rd.TabL.Right, rd.TabR.Right, curC, curCInv)
		foldedComC.Left = foldGT(foldedComC.Left, rd.TucL.Left, rd.TucR.Left, curC, curCInv)
		foldedComC.Right = foldGT(foldedComC.Right, rd.TucL.Right, rd.TucR.Right, curC, curCInv)
		foldedIPAB = foldGT(foldedIPAB, rd.ZabL, rd.ZabR, curC, curCInv)
		foldedAggC = foldG1Additive(foldedAggC, rd.ZcL, rd.ZcR, curC, curCInv)
	}

	return
}
