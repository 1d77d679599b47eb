//go:build arm64

package device

import "golang.org/x/sys/cpu"

func init() {
	if cpu.ARM64.HasASIMD {
		hostFeatures = append(hostFeatures, "asimd")
	}
	if cpu.ARM64.HasSVE2 {
		hostFeatures = append(hostFeatures, "sve2")
	}
}
