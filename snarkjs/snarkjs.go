// Package snarkjs decodes the JSON proof and verifying-key formats produced
// by the snarkjs toolchain so they can be fed into the aggregator alongside
// proofs produced by gnark's own groth16 backend.
//
// snarkjs encodes every curve point as a 3-element projective (x, y, z)
// coordinate triple in the base field, even though the points it represents
// are always affine: converting back means dividing through by z.
package snarkjs

import (
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	aggregator "github.com/go-snarkpack/aggregator"
)

// Proof mirrors the JSON object produced by `snarkjs groth16 prove`.
type Proof struct {
	Curve    string     `json:"curve"`
	Protocol string     `json:"protocol"`
	PiA      []string   `json:"pi_a"`
	PiB      [][]string `json:"pi_b"`
	PiC      []string   `json:"pi_c"`
}

// VerifyingKey mirrors the JSON object produced by `snarkjs zkey export
// verificationkey`.
type VerifyingKey struct {
	Curve         string       `json:"curve"`
	Protocol      string       `json:"protocol"`
	NPublic       int          `json:"nPublic"`
	VkAlpha1      []string     `json:"vk_alpha_1"`
	VkBeta2       [][]string   `json:"vk_beta_2"`
	VkGamma2      [][]string   `json:"vk_gamma_2"`
	VkDelta2      [][]string   `json:"vk_delta_2"`
	VkAlphaBeta12 [][][]string `json:"vk_alphabeta_12"`
	IC            [][]string   `json:"IC"`
}

// ParseProof decodes a snarkjs proof JSON document.
func ParseProof(data []byte) (*Proof, error) {
	var p Proof
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("snarkjs: parse proof: %w", err)
	}
	return &p, nil
}

// ParseVerifyingKey decodes a snarkjs verifying-key JSON document.
func ParseVerifyingKey(data []byte) (*VerifyingKey, error) {
	var vk VerifyingKey
	if err := json.Unmarshal(data, &vk); err != nil {
		return nil, fmt.Errorf("snarkjs: parse verifying key: %w", err)
	}
	return &vk, nil
}

// ToGroth16Proof converts a decoded snarkjs proof into the aggregator's
// native Groth16Proof, normalizing every point from projective to affine.
func (p *Proof) ToGroth16Proof() (aggregator.Groth16Proof, error) {
	a, err := g1FromStr(p.PiA)
	if err != nil {
		return aggregator.Groth16Proof{}, fmt.Errorf("snarkjs: pi_a: %w", err)
	}
	b, err := g2FromStr(p.PiB)
	if err != nil {
		return aggregator.Groth16Proof{}, fmt.Errorf("snarkjs: pi_b: %w", err)
	}
	c, err := g1FromStr(p.PiC)
	if err != nil {
		return aggregator.Groth16Proof{}, fmt.Errorf("snarkjs: pi_c: %w", err)
	}
	return aggregator.Groth16Proof{A: a, B: b, C: c}, nil
}

// ToGroth16VerifyingKey converts a decoded snarkjs verifying key into the
// aggregator's native Groth16VerifyingKey. vk_alphabeta_12 is the verifier's
// own precomputed pairing and is not carried over: the aggregator never
// evaluates the Groth16 pairing equation, and only uses the verifying key's
// IC length.
func (vk *VerifyingKey) ToGroth16VerifyingKey() (*aggregator.Groth16VerifyingKey, error) {
	alpha, err := g1FromStr(vk.VkAlpha1)
	if err != nil {
		return nil, fmt.Errorf("snarkjs: vk_alpha_1: %w", err)
	}
	beta, err := g2FromStr(vk.VkBeta2)
	if err != nil {
		return nil, fmt.Errorf("snarkjs: vk_beta_2: %w", err)
	}
	gamma, err := g2FromStr(vk.VkGamma2)
	if err != nil {
		return nil, fmt.Errorf("snarkjs: vk_gamma_2: %w", err)
	}
	delta, err := g2FromStr(vk.VkDelta2)
	if err != nil {
		return nil, fmt.Errorf("snarkjs: vk_delta_2: %w", err)
	}
	ic := make([]bn254.G1Affine, len(vk.IC))
	for i, raw := range vk.IC {
		p, err := g1FromStr(raw)
		if err != nil {
			return nil, fmt.Errorf("snarkjs: IC[%d]: %w", i, err)
		}
		ic[i] = p
	}
	return &aggregator.Groth16VerifyingKey{
		Alpha: alpha,
		Beta:  beta,
		Gamma: gamma,
		Delta: delta,
		IC:    ic,
	}, nil
}

// frFromStr parses a base-10 scalar-field element, as snarkjs encodes
// public inputs and witnesses.
func frFromStr(s string) (fr.Element, error) {
	var e fr.Element
	if _, err := e.SetString(s); err != nil {
		return fr.Element{}, fmt.Errorf("fr_from_str(%q): %w", s, err)
	}
	return e, nil
}

// PublicInputsFromStrings converts the decimal-string public input vector
// snarkjs emits alongside a proof into scalar field elements.
func PublicInputsFromStrings(inputs []string) ([]fr.Element, error) {
	out := make([]fr.Element, len(inputs))
	for i, s := range inputs {
		e, err := frFromStr(s)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func fqFromStr(s string) (fp.Element, error) {
	var e fp.Element
	if _, err := e.SetString(s); err != nil {
		return fp.Element{}, fmt.Errorf("fq_from_str(%q): %w", s, err)
	}
	return e, nil
}

// g1FromStr parses a snarkjs [x, y, z] projective coordinate triple in the
// base field and normalizes it to an affine G1 point.
func g1FromStr(coords []string) (bn254.G1Affine, error) {
	if len(coords) != 3 {
		return bn254.G1Affine{}, fmt.Errorf("g1_from_str: need 3 coordinates, got %d", len(coords))
	}
	x, err := fqFromStr(coords[0])
	if err != nil {
		return bn254.G1Affine{}, err
	}
	y, err := fqFromStr(coords[1])
	if err != nil {
		return bn254.G1Affine{}, err
	}
	z, err := fqFromStr(coords[2])
	if err != nil {
		return bn254.G1Affine{}, err
	}
	if z.IsZero() {
		return bn254.G1Affine{}, nil
	}
	var zInv fp.Element
	zInv.Inverse(&z)
	var out bn254.G1Affine
	out.X.Mul(&x, &zInv)
	out.Y.Mul(&y, &zInv)
	return out, nil
}

// g2FromStr parses a snarkjs [[x0,x1], [y0,y1], [z0,z1]] projective
// coordinate triple in the quadratic extension field and normalizes it to
// an affine G2 point.
func g2FromStr(coords [][]string) (bn254.G2Affine, error) {
	if len(coords) != 3 {
		return bn254.G2Affine{}, fmt.Errorf("g2_from_str: need 3 coordinates, got %d", len(coords))
	}
	x, err := fq2FromStr(coords[0])
	if err != nil {
		return bn254.G2Affine{}, err
	}
	y, err := fq2FromStr(coords[1])
	if err != nil {
		return bn254.G2Affine{}, err
	}
	z, err := fq2FromStr(coords[2])
	if err != nil {
		return bn254.G2Affine{}, err
	}
	if z.IsZero() {
		return bn254.G2Affine{}, nil
	}
	var zInv bn254.E2
	zInv.Inverse(&z)
	var out bn254.G2Affine
	out.X.Mul(&x, &zInv)
	out.Y.Mul(&y, &zInv)
	return out, nil
}

func fq2FromStr(coords []string) (bn254.E2, error) {
	if len(coords) != 2 {
		return bn254.E2{}, fmt.Errorf("fq2_from_str: need 2 coordinates, got %d", len(coords))
	}
	a0, err := fqFromStr(coords[0])
	if err != nil {
		return bn254.E2{}, err
	}
	a1, err := fqFromStr(coords[1])
	if err != nil {
		return bn254.E2{}, err
	}
	return bn254.E2{A0: a0, A1: a1}, nil
}
