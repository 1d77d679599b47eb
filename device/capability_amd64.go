//go:build amd64

package device

import "golang.org/x/sys/cpu"

func init() {
	if cpu.X86.HasPOPCNT {
		hostFeatures = append(hostFeatures, "popcnt")
	}
	if cpu.X86.HasAVX2 {
		hostFeatures = append(hostFeatures, "avx2")
	}
	if cpu.X86.HasAVX512VPOPCNTDQ {
		hostFeatures = append(hostFeatures, "avx512vpopcntdq")
	}
}
