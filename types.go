package aggregator

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/go-snarkpack/aggregator/internal/commitment"
	"github.com/go-snarkpack/aggregator/internal/gipa"
	"github.com/go-snarkpack/aggregator/internal/kzgopen"
)

// CommitmentOutput is a (GT,GT) pair: the value produced by committing a
// vector under the paired keys V and W.
type CommitmentOutput = commitment.Output

// Groth16Proof is the external Groth16 collaborator's proof shape: a triple
// (A,B,C) whose validity is a pairing equation against a verifying key and a
// set of public inputs. Named A/B/C (rather than gnark's Ar/Bs/Krs) because
// the TIPP/MIPP equations throughout this package are phrased in exactly
// these terms.
type Groth16Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

// Groth16VerifyingKey is the external Groth16 collaborator's verifying key:
// enough to recompute, for a given public input vector, the linear
// combination vk_x = IC[0] + sum_j input[j]*IC[j+1] that the per-proof
// pairing equation checks against gamma.
type Groth16VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	IC    []bn254.G1Affine
}

// TippMippProof is the inner argument: the GIPA recursion plus the two KZG
// openings that prove the final, length-1 commitment keys the recursion
// bottoms out at were folded honestly.
type TippMippProof struct {
	Gipa        *gipa.Proof
	VKeyOpening kzgopen.VOpening
	WKeyOpening kzgopen.WOpening
}

// AggregateProof is the complete output of AggregateProofs: the top-level
// commitments bound into the transcript before any challenge is drawn, the
// verifier's short values, and the inner TIPP/MIPP argument.
type AggregateProof struct {
	ComAB CommitmentOutput
	ComC  CommitmentOutput
	IPAB  bn254.GT
	AggC  bn254.G1Affine
	TMIPP TippMippProof
}
