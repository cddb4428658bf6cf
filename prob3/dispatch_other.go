//go:build !amd64 && !arm64

package prob3

func init() {
	currentName = "generic"
	currentMinChunk = 64
}
