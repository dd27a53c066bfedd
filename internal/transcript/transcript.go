// Package transcript implements the Fiat-Shamir challenge oracle shared by
// the prover and the verifier. It is a thin, Keccak-backed wrapper around
// gnark-crypto's fiat-shamir transcript: the same package used by
// gnark-crypto's own FRI and plookup provers to derive sequential,
// named round challenges from a rolling hash state.
package transcript

import (
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
	"golang.org/x/crypto/sha3"
)

// domainSepLabel is absorbed once, before any other data, so that this
// protocol's transcript can never collide with another protocol's transcript
// fed the same curve points.
const domainSepLabel = "groth16-aggregation-snarkpack-v1"

// Transcript is the single-owner, append-only challenge oracle. It must be
// driven identically, in the same order, by the prover and the verifier.
type Transcript struct {
	fs     *fiatshamir.Transcript
	names  []string
	cursor int
}

// RoundChallengeCount returns the number of sequential challenges an
// aggregation of nProofs proofs will draw from the transcript: one for `r`,
// one GIPA prelude challenge, one more per recursion round past the first,
// and one final KZG evaluation challenge `z`. That is l+2 where
// l = log2(nProofs).
func RoundChallengeCount(nProofs uint32) int {
	l := bits.Len32(nProofs) - 1
	return l + 2
}

// New allocates a transcript able to derive exactly numChallenges sequential
// challenges and immediately performs the domain separation step.
func New(numChallenges int) *Transcript {
	names := make([]string, numChallenges)
	for i := range names {
		names[i] = fmt.Sprintf("snarkpack/round-%d", i)
	}
	t := &Transcript{
		fs:    fiatshamir.NewTranscript(sha3.NewLegacyKeccak256(), names...),
		names: names,
	}
	t.DomainSep()
	return t
}

// DomainSep absorbs the application-level domain separation tag. Called once
// by New; exposed so tests can exercise it explicitly.
func (t *Transcript) DomainSep() {
	t.bind([]byte(domainSepLabel))
}

func (t *Transcript) bind(buf []byte) {
	name := t.names[t.cursor]
	if err := t.fs.Bind(name, buf); err != nil {
		// Bind only fails if the named challenge was already computed, which
		// would mean the prover/verifier round bookkeeping is out of sync
		// with RoundChallengeCount - a programming error, not a runtime one.
		panic(fmt.Sprintf("transcript: bind after challenge %q already drawn: %v", name, err))
	}
}

// AppendBytes absorbs raw canonical bytes into the challenge currently being
// accumulated.
func (t *Transcript) AppendBytes(b []byte) {
	t.bind(b)
}

// AppendG1 absorbs the uncompressed (Marshal) encoding of a G1 point.
func (t *Transcript) AppendG1(p *bn254.G1Affine) {
	b := p.Marshal()
	t.bind(b)
}

// AppendG2 absorbs the uncompressed (Marshal) encoding of a G2 point.
func (t *Transcript) AppendG2(p *bn254.G2Affine) {
	b := p.Marshal()
	t.bind(b)
}

// AppendGT absorbs a target-group element.
func (t *Transcript) AppendGT(p *bn254.GT) {
	b := p.Marshal()
	t.bind(b)
}

// AppendFr absorbs a scalar.
func (t *Transcript) AppendFr(x *fr.Element) {
	b := x.Bytes()
	t.bind(b[:])
}

// ChallengeScalar squeezes the challenge currently being built, reduces it to
// a field element with rejection sampling to avoid returning zero, and
// advances the transcript to the next named challenge.
func (t *Transcript) ChallengeScalar() (fr.Element, error) {
	name := t.names[t.cursor]
	digest, err := t.fs.ComputeChallenge(name)
	if err != nil {
		return fr.Element{}, fmt.Errorf("transcript: computing challenge %q: %w", name, err)
	}

	var out fr.Element
	out.SetBytes(digest)
	for out.IsZero() {
		h := sha3.NewLegacyKeccak256()
		h.Write(digest)
		digest = h.Sum(nil)
		out.SetBytes(digest)
	}

	t.cursor++
	return out, nil
}

// Done reports whether every pre-declared challenge has been drawn, so a
// caller can check that its challenge budget matched the number of
// challenges it actually drew. AggregateProofs and VerifyAggregateProof do
// not call it themselves.
func (t *Transcript) Done() bool {
	return t.cursor == len(t.names)
}
