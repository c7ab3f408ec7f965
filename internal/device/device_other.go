//go:build !linux

package device

func hasAccelerator() bool {
	return nvidiaSMIPresent()
}
