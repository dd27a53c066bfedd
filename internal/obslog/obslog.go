// Package obslog wires the aggregator's prove/verify entry points into the
// zerolog-backed logger gnark's own provers use
// (github.com/consensys/gnark/logger), rather than rolling a bespoke
// logging shim.
//
// Only size/timing/failure metadata is ever logged - never challenge
// scalars or any other witness material.
package obslog

import (
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// Logger returns the shared zerolog logger, pre-tagged with the component
// name so aggregate/verify log lines can be told apart in a mixed-workload
// process.
func Logger() zerolog.Logger {
	return logger.Logger().With().Str("component", "snarkpack").Logger()
}
