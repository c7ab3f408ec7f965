// Package runtime owns the loaded model handle and the boundary to the
// native inference runtime. All heavy lifting (tokenization, attention,
// sampling) happens behind the Engine interface.
package runtime

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// StreamFunc receives generated tokens as they are produced.
type StreamFunc func(token string)

// Engine is one loaded checkpoint ready to generate.
type Engine interface {
	Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error)
	Close() error
}

// Request carries one generation call's parameters.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int

	// MaxPromptTokens is the hard ceiling on prompt tokens; anything past
	// it is dropped silently.
	MaxPromptTokens int
}

// Result is the raw runtime output. Text may or may not echo the prompt,
// depending on the backend; callers trim it themselves.
type Result struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Handle is the process-wide model handle: engine plus load metadata,
// created once at startup and read by every request afterwards. The
// generation slot serializes engine access, since the underlying runtime
// is not safe for concurrent calls.
type Handle struct {
	Engine       Engine
	ModelID      string
	Device       string
	Quantization string

	slot *semaphore.Weighted
}

func NewHandle(engine Engine, modelID, deviceClass, quantization string) *Handle {
	return &Handle{
		Engine:       engine,
		ModelID:      modelID,
		Device:       deviceClass,
		Quantization: quantization,
		slot:         semaphore.NewWeighted(1),
	}
}

// Acquire claims the single generation slot, blocking until it is free or
// the context is done.
func (h *Handle) Acquire(ctx context.Context) error {
	return h.slot.Acquire(ctx, 1)
}

func (h *Handle) Release() {
	h.slot.Release(1)
}

// HandleRef is a write-once holder for the handle. It lets the HTTP layer
// start before loading finishes and answer "not loaded" cleanly until the
// handle is set.
type HandleRef struct {
	ptr atomic.Pointer[Handle]
}

func (r *HandleRef) Set(h *Handle) {
	r.ptr.Store(h)
}

// Get returns the handle, or nil if startup has not populated it.
func (r *HandleRef) Get() *Handle {
	return r.ptr.Load()
}
