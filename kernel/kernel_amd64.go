//go:build amd64

package kernel

import "golang.org/x/sys/cpu"

func init() {
	auto := Generic
	if cpu.X86.HasAVX2 {
		auto = Wide
	}
	activeISA = applyOverride(auto)
	kernelImpl = selectImpl(activeISA)
}
