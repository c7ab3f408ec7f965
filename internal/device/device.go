// Package device probes the host for an inference accelerator.
package device

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	CPU  = "cpu"
	CUDA = "cuda"
	Auto = "auto"
)

// EnvBackend forces the device class, bypassing detection.
const EnvBackend = "QWEND_BACKEND"

// Normalize validates a backend name. Empty means auto.
func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case CPU, CUDA, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, cpu, or cuda)", backend)
	}
}

// Detect returns the device class to run inference on. The probe is cheap
// and recomputed on every call so status reporting reflects current state.
func Detect() string {
	if forced, err := Normalize(os.Getenv(EnvBackend)); err == nil && forced != Auto {
		return forced
	}
	if hasAccelerator() {
		return CUDA
	}
	return CPU
}

func nvidiaSMIPresent() bool {
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}
