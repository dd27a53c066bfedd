// Package aggregator aggregates many Groth16 proofs over BN254 into a
// single proof that verifies in O(log n): an inner-pairing-product (TIPP)
// and multiexponentiation (MIPP) argument over a Groth16-compatible
// structured reference string, closed with KZG polynomial openings and
// bound together by a Fiat-Shamir transcript.
//
// The curve/field arithmetic, pairings and the Groth16 proof system itself
// are external collaborators (github.com/consensys/gnark-crypto); this
// package implements only the aggregation and verification logic layered on
// top of them.
package aggregator
