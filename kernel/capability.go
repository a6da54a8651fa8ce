package kernel

import (
	"os"
	"strings"
)

// ISA identifies which dispatch target is active.
type ISA uint8

const (
	// Generic is the portable 8-lane scalar fallback.
	Generic ISA = iota
	// Wide is the 32-lane (4x unrolled) dispatch target, selected when the
	// host CPU capability probe reports a wide vector unit.
	Wide
)

func (i ISA) String() string {
	switch i {
	case Wide:
		return "wide"
	default:
		return "generic"
	}
}

var (
	activeISA   = Generic
	hasOverride bool
)

// ActiveISA reports which dispatch target is currently selected.
func ActiveISA() ISA { return activeISA }

// IsOverridden reports whether VEKTA_KERNEL forced a specific dispatch
// target, bypassing CPU capability probing.
func IsOverridden() bool { return hasOverride }

// applyOverride checks VEKTA_KERNEL (mirroring the teacher's VECGO_SIMD
// escape hatch) before falling back to the architecture's auto-detected
// choice. Called from each architecture's init() after capability probing
// has set the auto-detected default.
func applyOverride(autoDetected ISA) ISA {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("VEKTA_KERNEL")))
	switch v {
	case "generic":
		hasOverride = true
		return Generic
	case "wide":
		hasOverride = true
		return Wide
	case "":
		return autoDetected
	default:
		// Unrecognized override: ignore and use the auto-detected choice.
		return autoDetected
	}
}

func selectImpl(isa ISA) kernelFunc {
	if isa == Wide {
		return kernelWide
	}
	return kernelGeneric
}
