//go:build !amd64 && !arm64

package kernel

func init() {
	activeISA = applyOverride(Generic)
	kernelImpl = selectImpl(activeISA)
}
