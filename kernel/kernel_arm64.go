//go:build arm64

package kernel

import "golang.org/x/sys/cpu"

func init() {
	auto := Generic
	if cpu.ARM64.HasASIMD {
		auto = Wide
	}
	activeISA = applyOverride(auto)
	kernelImpl = selectImpl(activeISA)
}
