package aggregator

import "github.com/go-snarkpack/aggregator/internal/errs"

// ErrorKind classifies an aggregation failure:
// InvalidProof for structural problems with the proofs being aggregated,
// InvalidSRS for a size mismatch or KZG degree mismatch, PairingCheckFailed
// for a failed final batched equality, and MalformedProof for
// serialization failures.
type ErrorKind = errs.Kind

const (
	KindInvalidProof       = errs.KindInvalidProof
	KindInvalidSRS         = errs.KindInvalidSRS
	KindPairingCheckFailed = errs.KindPairingCheckFailed
	KindMalformedProof     = errs.KindMalformedProof
)

// AggregationError wraps a sentinel error with its Kind, so callers can
// both errors.Is a specific sentinel and switch on Kind when only the
// category matters.
type AggregationError = errs.Error

// Sentinel errors a caller can match with errors.Is.
var (
	ErrInvalidProofCount  = errs.ErrTooFewProofs
	ErrNotPowerOfTwo      = errs.ErrNotPowerOfTwo
	ErrSRSLengthMismatch  = errs.ErrSRSLengthMismatch
	ErrDegreeMismatch     = errs.ErrDegreeMismatch
	ErrPairingCheckFailed = errs.ErrPairingCheckFailed
	ErrTruncatedData      = errs.ErrTruncatedData
	ErrBadVersion         = errs.ErrBadVersion
)
