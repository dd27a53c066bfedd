// Command snarkpack drives aggregation and verification of batches of
// Groth16 proofs from the command line: setup builds an SRS and writes it to
// srs_path, aggregate folds a batch of proofs into one, verify checks the result, and
// import-snarkjs sanity-checks a snarkjs-exported proof/verifying-key pair
// before it is handed to aggregate.
package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	aggregator "github.com/go-snarkpack/aggregator"
	"github.com/go-snarkpack/aggregator/internal/config"
	"github.com/go-snarkpack/aggregator/internal/srs"
	"github.com/go-snarkpack/aggregator/internal/transcript"
	"github.com/go-snarkpack/aggregator/snarkjs"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "setup":
		err = runSetup(os.Args[2:])
	case "aggregate":
		err = runAggregate(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "import-snarkjs":
		err = runImportSnarkJS(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "snarkpack:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: snarkpack <setup|aggregate|verify|import-snarkjs> [flags]")
}

func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	cfgPath := fs.String("config", "snarkpack.yaml", "path to the YAML manifest")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	s, err := srs.Setup(cfg.Seed, cfg.NumProofs)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	data, err := s.MarshalBinary()
	if err != nil {
		return fmt.Errorf("setup: encode SRS: %w", err)
	}
	if err := os.WriteFile(cfg.SRSPath, data, 0o644); err != nil {
		return fmt.Errorf("setup: write %s: %w", cfg.SRSPath, err)
	}
	fmt.Printf("wrote SRS for up to %d proofs to %s\n", s.NMax, cfg.SRSPath)
	return nil
}

func runAggregate(args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	cfgPath := fs.String("config", "snarkpack.yaml", "path to the YAML manifest")
	proofsPath := fs.String("proofs", "", "path to a snarkjs-format JSON array of proofs")
	outPath := fs.String("out", "aggregate.proof", "path to write the aggregated proof")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *proofsPath == "" {
		return fmt.Errorf("aggregate: -proofs is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	prover, _, err := loadSpecializedSRS(cfg)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(*proofsPath)
	if err != nil {
		return fmt.Errorf("aggregate: read %s: %w", *proofsPath, err)
	}
	var snarkProofs []snarkjs.Proof
	if err := json.Unmarshal(raw, &snarkProofs); err != nil {
		return fmt.Errorf("aggregate: parse %s: %w", *proofsPath, err)
	}
	proofs := make([]aggregator.Groth16Proof, len(snarkProofs))
	for i := range snarkProofs {
		p, err := snarkProofs[i].ToGroth16Proof()
		if err != nil {
			return fmt.Errorf("aggregate: proof %d: %w", i, err)
		}
		proofs[i] = p
	}

	tr := transcript.New(transcript.RoundChallengeCount(uint32(len(proofs))))
	agg, err := aggregator.AggregateProofs(prover, tr, proofs)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	data, err := agg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("aggregate: encode proof: %w", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return fmt.Errorf("aggregate: write %s: %w", *outPath, err)
	}
	fmt.Printf("aggregated %d proofs into %s\n", len(proofs), *outPath)
	return nil
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	cfgPath := fs.String("config", "snarkpack.yaml", "path to the YAML manifest")
	proofPath := fs.String("proof", "aggregate.proof", "path to the aggregated proof")
	vkPath := fs.String("vk", "", "path to a snarkjs-format verifying key JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	_, verifier, err := loadSpecializedSRS(cfg)
	if err != nil {
		return err
	}

	var vk *aggregator.Groth16VerifyingKey
	if *vkPath != "" {
		raw, err := os.ReadFile(*vkPath)
		if err != nil {
			return fmt.Errorf("verify: read %s: %w", *vkPath, err)
		}
		snarkVk, err := snarkjs.ParseVerifyingKey(raw)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		vk, err = snarkVk.ToGroth16VerifyingKey()
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
	}

	raw, err := os.ReadFile(*proofPath)
	if err != nil {
		return fmt.Errorf("verify: read %s: %w", *proofPath, err)
	}
	var agg aggregator.AggregateProof
	if err := agg.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("verify: decode %s: %w", *proofPath, err)
	}

	tr := transcript.New(transcript.RoundChallengeCount(cfg.NumProofs))
	if err := aggregator.VerifyAggregateProof(verifier, vk, nil, &agg, rand.Reader, tr); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	fmt.Println("aggregated proof verified")
	return nil
}

func runImportSnarkJS(args []string) error {
	fs := flag.NewFlagSet("import-snarkjs", flag.ExitOnError)
	proofsPath := fs.String("proofs", "", "path to a snarkjs-format JSON array of proofs")
	vkPath := fs.String("vk", "", "path to a snarkjs-format verifying key JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *proofsPath == "" || *vkPath == "" {
		return fmt.Errorf("import-snarkjs: -proofs and -vk are required")
	}

	rawProofs, err := os.ReadFile(*proofsPath)
	if err != nil {
		return fmt.Errorf("import-snarkjs: read %s: %w", *proofsPath, err)
	}
	var snarkProofs []snarkjs.Proof
	if err := json.Unmarshal(rawProofs, &snarkProofs); err != nil {
		return fmt.Errorf("import-snarkjs: parse %s: %w", *proofsPath, err)
	}
	for i := range snarkProofs {
		if _, err := snarkProofs[i].ToGroth16Proof(); err != nil {
			return fmt.Errorf("import-snarkjs: proof %d: %w", i, err)
		}
	}

	rawVk, err := os.ReadFile(*vkPath)
	if err != nil {
		return fmt.Errorf("import-snarkjs: read %s: %w", *vkPath, err)
	}
	snarkVk, err := snarkjs.ParseVerifyingKey(rawVk)
	if err != nil {
		return fmt.Errorf("import-snarkjs: %w", err)
	}
	vk, err := snarkVk.ToGroth16VerifyingKey()
	if err != nil {
		return fmt.Errorf("import-snarkjs: %w", err)
	}

	fmt.Printf("parsed %d snarkjs proofs, protocol=%s curve=%s, verifying key IC length=%d\n",
		len(snarkProofs), snarkVk.Protocol, snarkVk.Curve, len(vk.IC))
	return nil
}

func loadSpecializedSRS(cfg *config.Config) (*srs.ProverSRS, *srs.VerifierSRS, error) {
	raw, err := os.ReadFile(cfg.SRSPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read SRS %s: %w", cfg.SRSPath, err)
	}
	var s srs.SRS
	if err := s.UnmarshalBinary(raw); err != nil {
		return nil, nil, fmt.Errorf("decode SRS %s: %w", cfg.SRSPath, err)
	}
	return s.Specialize(cfg.NumProofs)
}
