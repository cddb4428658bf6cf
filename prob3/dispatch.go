// Package prob3 provides the execution-target dispatch layer for the
// oscillation pipeline: per-event kernels are written once against a scratch
// Workspace and run unchanged under either a data-parallel target (one lane
// per worker, private scratch per lane) or a sequential target (one scratch
// reused across events).
//
// Both targets are required to produce bitwise-identical per-event results;
// the only difference is how lanes are scheduled and where scratch lives.
package prob3

import (
	"fmt"
	"os"
	"strconv"
)

// Target selects how an Engine runs kernels across an event batch.
type Target int

const (
	// TargetSequential runs kernels in a single loop over events with one
	// shared scratch workspace.
	TargetSequential Target = iota

	// TargetParallel runs kernels data-parallel across events with one
	// private scratch workspace per worker lane.
	TargetParallel
)

// String returns a human-readable name for the target.
func (t Target) String() string {
	switch t {
	case TargetSequential:
		return "sequential"
	case TargetParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// ParseTarget converts a configuration string into a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "sequential":
		return TargetSequential, nil
	case "parallel":
		return TargetParallel, nil
	default:
		return 0, fmt.Errorf("prob3: unknown target %q", s)
	}
}

// currentName is the detected hardware name for this runtime.
// Set by init() in dispatch_*.go files.
var currentName string

// currentMinChunk is the smallest event range worth handing to one lane on
// this hardware. Set by init() in dispatch_*.go files.
var currentMinChunk int

// HardwareName returns a human-readable name for the detected CPU class,
// e.g. "avx512", "avx2", "neon", "generic".
func HardwareName() string {
	return currentName
}

// MinChunk returns the minimum number of events per lane used when slicing
// a batch across workers.
func MinChunk() int {
	return currentMinChunk
}

// SequentialEnv checks whether the PROB3_SEQUENTIAL environment variable is
// set. When set, DefaultTarget returns the sequential target regardless of
// hardware; useful for testing and debugging.
func SequentialEnv() bool {
	val := os.Getenv("PROB3_SEQUENTIAL")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// DefaultTarget returns the target used when the caller does not choose one:
// parallel, unless PROB3_SEQUENTIAL is set.
func DefaultTarget() Target {
	if SequentialEnv() {
		return TargetSequential
	}
	return TargetParallel
}
