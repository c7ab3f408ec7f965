//go:build linux

package device

import "golang.org/x/sys/unix"

func hasAccelerator() bool {
	if unix.Access("/dev/nvidia0", unix.R_OK) == nil {
		return true
	}
	if unix.Access("/proc/driver/nvidia/version", unix.R_OK) == nil {
		return true
	}
	return nvidiaSMIPresent()
}
