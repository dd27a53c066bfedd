package aggregator_test

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	aggregator "github.com/go-snarkpack/aggregator"
	"github.com/go-snarkpack/aggregator/internal/errs"
	"github.com/go-snarkpack/aggregator/internal/srs"
	"github.com/go-snarkpack/aggregator/internal/transcript"
	"github.com/go-snarkpack/aggregator/snarkjs"
)

// randomProofs builds n syntactically valid but otherwise unrelated
// Groth16Proof values: AggregateProofs treats A/B/C as opaque curve points,
// so a real circuit is not needed to exercise the TIPP/MIPP machinery.
func randomProofs(t *testing.T, rng *mrand.Rand, n int) []aggregator.Groth16Proof {
	t.Helper()
	_, _, g1Gen, g2Gen := bn254.Generators()
	out := make([]aggregator.Groth16Proof, n)
	for i := range out {
		sa := randScalar(rng)
		sb := randScalar(rng)
		sc := randScalar(rng)
		out[i] = aggregator.Groth16Proof{
			A: scalarMulG1(g1Gen, sa),
			B: scalarMulG2(g2Gen, sb),
			C: scalarMulG1(g1Gen, sc),
		}
	}
	return out
}

func randScalar(rng *mrand.Rand) fr.Element {
	var buf [32]byte
	rng.Read(buf[:])
	var e fr.Element
	e.SetBytes(buf[:])
	if e.IsZero() {
		e.SetOne()
	}
	return e
}

func scalarMulG1(gen bn254.G1Affine, s fr.Element) bn254.G1Affine {
	var sBig big.Int
	s.BigInt(&sBig)
	var j bn254.G1Jac
	j.FromAffine(&gen)
	j.ScalarMultiplication(&j, &sBig)
	var out bn254.G1Affine
	out.FromJacobian(&j)
	return out
}

func scalarMulG2(gen bn254.G2Affine, s fr.Element) bn254.G2Affine {
	var sBig big.Int
	s.BigInt(&sBig)
	var j bn254.G2Jac
	j.FromAffine(&gen)
	j.ScalarMultiplication(&j, &sBig)
	var out bn254.G2Affine
	out.FromJacobian(&j)
	return out
}

func setupSRS(t *testing.T, n uint32) (*srs.ProverSRS, *srs.VerifierSRS) {
	t.Helper()
	full, err := srs.Setup(1, n)
	require.NoError(t, err)
	prover, verifier, err := full.Specialize(n)
	require.NoError(t, err)
	return prover, verifier
}

// n=8 synthetic proofs aggregate and verify cleanly.
func TestAggregateAndVerify_Completeness(t *testing.T) {
	rng := mrand.New(mrand.NewSource(1))
	const n = 8
	prover, verifier := setupSRS(t, n)
	proofs := randomProofs(t, rng, n)

	proveTr := transcript.New(transcript.RoundChallengeCount(n))
	agg, err := aggregator.AggregateProofs(prover, proveTr, proofs)
	require.NoError(t, err)

	verifyTr := transcript.New(transcript.RoundChallengeCount(n))
	err = aggregator.VerifyAggregateProof(verifier, nil, nil, agg, rand.Reader, verifyTr)
	require.NoError(t, err)
}

// Corrupting agg_c after the fact must fail verification with
// PairingCheckFailed, not silently succeed or panic.
func TestVerify_CorruptedAggC_Fails(t *testing.T) {
	rng := mrand.New(mrand.NewSource(2))
	const n = 8
	prover, verifier := setupSRS(t, n)
	proofs := randomProofs(t, rng, n)

	proveTr := transcript.New(transcript.RoundChallengeCount(n))
	agg, err := aggregator.AggregateProofs(prover, proveTr, proofs)
	require.NoError(t, err)

	_, _, g1Gen, _ := bn254.Generators()
	var corrupted bn254.G1Jac
	corrupted.FromAffine(&agg.AggC)
	var genJac bn254.G1Jac
	genJac.FromAffine(&g1Gen)
	corrupted.AddAssign(&genJac)
	agg.AggC.FromJacobian(&corrupted)

	verifyTr := transcript.New(transcript.RoundChallengeCount(n))
	err = aggregator.VerifyAggregateProof(verifier, nil, nil, agg, rand.Reader, verifyTr)
	require.Error(t, err)
	var aggErr *aggregator.AggregationError
	require.True(t, errors.As(err, &aggErr))
	require.Equal(t, aggregator.KindPairingCheckFailed, aggErr.Kind)
}

// A proof count that is not a power of two is rejected before any
// cryptographic work happens.
func TestAggregate_NotPowerOfTwo_Rejected(t *testing.T) {
	rng := mrand.New(mrand.NewSource(3))
	prover, _ := setupSRS(t, 8)
	proofs := randomProofs(t, rng, 3)

	tr := transcript.New(transcript.RoundChallengeCount(4))
	_, err := aggregator.AggregateProofs(prover, tr, proofs)
	require.Error(t, err)
	require.ErrorIs(t, err, aggregator.ErrNotPowerOfTwo)
}

// Two SnarkJS-originated proofs, decoded through the JSON interop layer
// (projective-to-affine normalization included), aggregate and verify like
// any other proof pair.
func TestAggregateAndVerify_SnarkJSProofs(t *testing.T) {
	const n = 2
	prover, verifier := setupSRS(t, n)

	proofJSON := []byte(`[
		{
			"curve": "bn128",
			"protocol": "groth16",
			"pi_a": ["1", "2", "1"],
			"pi_b": [
				["10857046999023057135944570762232829481370756359578518086990519993285655852781",
				 "11559732032986387107991004021392285783925812861821192530917403151452391805634"],
				["8495653923123431417604973247489272438418190587263600148770280649306958101930",
				 "4082367875863433681332203403145435568316851327593401208105741076214120093531"],
				["1", "0"]
			],
			"pi_c": ["1", "2", "1"]
		},
		{
			"curve": "bn128",
			"protocol": "groth16",
			"pi_a": ["1", "2", "1"],
			"pi_b": [
				["10857046999023057135944570762232829481370756359578518086990519993285655852781",
				 "11559732032986387107991004021392285783925812861821192530917403151452391805634"],
				["8495653923123431417604973247489272438418190587263600148770280649306958101930",
				 "4082367875863433681332203403145435568316851327593401208105741076214120093531"],
				["1", "0"]
			],
			"pi_c": ["1", "2", "1"]
		}
	]`)

	var snarkProofs []snarkjs.Proof
	require.NoError(t, json.Unmarshal(proofJSON, &snarkProofs))
	require.Len(t, snarkProofs, n)

	proofs := make([]aggregator.Groth16Proof, n)
	for i := range snarkProofs {
		p, err := snarkProofs[i].ToGroth16Proof()
		require.NoError(t, err)
		proofs[i] = p
	}

	proveTr := transcript.New(transcript.RoundChallengeCount(n))
	agg, err := aggregator.AggregateProofs(prover, proveTr, proofs)
	require.NoError(t, err)

	verifyTr := transcript.New(transcript.RoundChallengeCount(n))
	err = aggregator.VerifyAggregateProof(verifier, nil, nil, agg, rand.Reader, verifyTr)
	require.NoError(t, err)
}

// Binding an extra element into only one side's transcript breaks
// Fiat-Shamir symmetry and must be caught as a pairing failure.
func TestVerify_AsymmetricTranscript_Fails(t *testing.T) {
	rng := mrand.New(mrand.NewSource(5))
	const n = 4
	prover, verifier := setupSRS(t, n)
	proofs := randomProofs(t, rng, n)

	proveTr := transcript.New(transcript.RoundChallengeCount(n))
	proveTr.AppendBytes([]byte("only the prover saw this"))
	agg, err := aggregator.AggregateProofs(prover, proveTr, proofs)
	require.NoError(t, err)

	verifyTr := transcript.New(transcript.RoundChallengeCount(n))
	err = aggregator.VerifyAggregateProof(verifier, nil, nil, agg, rand.Reader, verifyTr)
	require.Error(t, err)
}

// Two aggregations of identical inputs with identically seeded transcripts
// must produce byte-identical proofs.
func TestAggregate_Deterministic(t *testing.T) {
	const n = 4
	prover, _ := setupSRS(t, n)

	aggregateOnce := func() []byte {
		rng := mrand.New(mrand.NewSource(9))
		proofs := randomProofs(t, rng, n)
		tr := transcript.New(transcript.RoundChallengeCount(n))
		agg, err := aggregator.AggregateProofs(prover, tr, proofs)
		require.NoError(t, err)
		data, err := agg.MarshalBinary()
		require.NoError(t, err)
		return data
	}

	require.Equal(t, aggregateOnce(), aggregateOnce())
}

// Aggregating n=16 proofs against an SRS specialized to n=8 must be
// rejected as an SRS/proof-count mismatch, not silently truncated.
func TestAggregate_SRSSizeMismatch_Rejected(t *testing.T) {
	rng := mrand.New(mrand.NewSource(6))
	prover, _ := setupSRS(t, 8)
	proofs := randomProofs(t, rng, 16)

	tr := transcript.New(transcript.RoundChallengeCount(16))
	_, err := aggregator.AggregateProofs(prover, tr, proofs)
	require.Error(t, err)
	var aggErr *aggregator.AggregationError
	require.True(t, errors.As(err, &aggErr))
	require.Equal(t, aggregator.KindInvalidSRS, aggErr.Kind)
	require.True(t, errors.Is(err, errs.ErrSRSLengthMismatch))
}
