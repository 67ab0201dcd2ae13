package quantize

import (
	"os"
	"strconv"

	"golang.org/x/sys/cpu"
)

// NoAccelEnv names the environment variable that forces BackendScalar.
const NoAccelEnv = "PIXLATO_NO_ACCEL"

// Backend selects the implementation of the LAB nearest-color search.
type Backend int

const (
	// BackendScalar compares every pixel against every slot in a loop.
	BackendScalar Backend = iota
	// BackendAccelerated computes each tile's distance matrix as one
	// matrix product.
	BackendAccelerated
)

func (b Backend) String() string {
	switch b {
	case BackendAccelerated:
		return "accelerated"
	default:
		return "scalar"
	}
}

// DetectBackend reports the best backend for this CPU. Wide SIMD units
// (AVX2 on amd64, ASIMD on arm64) make the batched product worthwhile.
// Setting PIXLATO_NO_ACCEL to a true value forces BackendScalar.
func DetectBackend() Backend {
	if noAccelEnv() {
		return BackendScalar
	}
	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		return BackendAccelerated
	}
	return BackendScalar
}

func noAccelEnv() bool {
	val := os.Getenv(NoAccelEnv)
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}
