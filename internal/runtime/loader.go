package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/woocode/qwend/internal/device"
	"github.com/woocode/qwend/internal/hub"
	"github.com/woocode/qwend/internal/logger"
)

const (
	// DefaultModel is the checkpoint served when nothing else is configured.
	DefaultModel = "Qwen/Qwen3-Coder-30B-A3B-Instruct"

	// CPUFallbackModel replaces very large checkpoints when no accelerator
	// is present.
	CPUFallbackModel = "Qwen/Qwen2.5-Coder-7B-Instruct"

	// DefaultContextTokens is the prompt truncation ceiling.
	DefaultContextTokens = 32768

	offloadDirName = "offload"

	// All repurposable layers go to the GPU when an accelerator is used.
	allGPULayers = 999
)

// Strategy is one candidate way to bring the checkpoint up. Strategies are
// tried in order; the first that loads wins.
type Strategy struct {
	Name         string
	Quantization string
	FileSuffix   string
	GPULayers    int
	// MMap pages weights from disk instead of loading them up front; used
	// by the last-resort offload strategy.
	MMap bool
}

// Plan returns the ordered load strategies for a device class. Every plan
// ends with the disk-offload fallback, so a failed primary load gets
// exactly one retry with weights staged on disk.
func Plan(deviceClass string) []Strategy {
	var strategies []Strategy
	if deviceClass == device.CUDA {
		strategies = append(strategies,
			Strategy{
				Name:         "gpu-quantized",
				Quantization: "4-bit",
				FileSuffix:   "q4_k_m",
				GPULayers:    allGPULayers,
			},
			Strategy{
				Name:         "gpu-full",
				Quantization: "f16",
				FileSuffix:   "f16",
				GPULayers:    allGPULayers,
			},
		)
	} else {
		strategies = append(strategies, Strategy{
			Name:         "cpu-full",
			Quantization: "f16",
			FileSuffix:   "f16",
		})
	}
	return append(strategies, Strategy{
		Name:         "disk-offload",
		Quantization: "f16",
		FileSuffix:   "f16",
		MMap:         true,
	})
}

// OpenFunc opens an engine from a weights file. It is a seam so tests can
// load without the native runtime.
type OpenFunc func(path string, s Strategy, contextTokens int) (Engine, error)

// Loader resolves a model identifier to a ready Handle.
type Loader struct {
	CacheDir      string
	Hub           *hub.Client
	ContextTokens int
	Log           logger.Logger

	// Open defaults to the llama.cpp backend.
	Open OpenFunc
}

// Load runs the strategy chain for modelID. Exhausting the chain is an
// error; the caller treats that as fatal to startup.
func (l *Loader) Load(ctx context.Context, modelID string) (*Handle, error) {
	log := l.log()
	deviceClass := device.Detect()
	resolved := ResolveModelID(modelID, deviceClass, log)
	log.Info("loading model", "model", resolved, "device", deviceClass)

	if err := os.MkdirAll(filepath.Join(l.CacheDir, offloadDirName), 0o755); err != nil {
		return nil, fmt.Errorf("prepare cache dir: %w", err)
	}

	open := l.Open
	if open == nil {
		open = OpenLlama
	}
	contextTokens := l.ContextTokens
	if contextTokens <= 0 {
		contextTokens = DefaultContextTokens
	}

	var lastErr error
	for _, s := range Plan(deviceClass) {
		path, err := l.Hub.Fetch(ctx, resolved, ArtifactName(resolved, s.FileSuffix), l.CacheDir)
		if err != nil {
			lastErr = err
			log.Warn("artifact unavailable", "strategy", s.Name, "error", err)
			continue
		}
		engine, err := open(path, s, contextTokens)
		if err != nil {
			lastErr = err
			log.Warn("load strategy failed", "strategy", s.Name, "error", err)
			continue
		}
		log.Info("model loaded", "model", resolved, "strategy", s.Name,
			"quantization", s.Quantization, "device", deviceClass)
		return NewHandle(engine, resolved, deviceClass, s.Quantization), nil
	}
	return nil, fmt.Errorf("all load strategies failed for %s: %w", resolved, lastErr)
}

// ResolveModelID applies the CPU downgrade heuristic: identifiers that look
// like 30B/32B checkpoints are substituted with a smaller model when no
// accelerator is present. This is a substring check, not a capability probe.
func ResolveModelID(modelID, deviceClass string, log logger.Logger) string {
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultModel
	}
	if deviceClass == device.CPU &&
		(strings.Contains(modelID, "30B") || strings.Contains(modelID, "32B")) {
		log.Warn("checkpoint too large for CPU, substituting smaller model",
			"requested", modelID, "using", CPUFallbackModel)
		return CPUFallbackModel
	}
	return modelID
}

// ArtifactName maps a hub model id and precision suffix to the GGUF file
// name convention used by the model publishers.
func ArtifactName(modelID, suffix string) string {
	base := modelID
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.ToLower(base) + "-" + suffix + ".gguf"
}

// DefaultCacheDir is the per-user weight cache.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".woocode", "models"), nil
}

func (l *Loader) log() logger.Logger {
	if l.Log != nil {
		return l.Log
	}
	return logger.Default()
}
