//go:build arm64

package prob3

import "golang.org/x/sys/cpu"

func init() {
	// ARM64 (AArch64) always has NEON (ASIMD); the cpu check is kept for
	// consistency with future SVE detection.
	if cpu.ARM64.HasASIMD {
		currentName = "neon"
		currentMinChunk = 128
	} else {
		currentName = "generic"
		currentMinChunk = 64
	}
}
