//go:build amd64

package prob3

import "golang.org/x/sys/cpu"

func init() {
	// Wider SIMD generally means better scalar FP throughput per core as
	// well; larger chunks amortize scheduling over that throughput.
	switch {
	case cpu.X86.HasAVX512F:
		currentName = "avx512"
		currentMinChunk = 256
	case cpu.X86.HasAVX2:
		currentName = "avx2"
		currentMinChunk = 128
	default:
		// SSE2 is the x86-64 baseline.
		currentName = "sse2"
		currentMinChunk = 64
	}
}
