//go:build llama

package runtime

import (
	"context"
	"fmt"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaEngine runs inference through the llama.cpp bindings. The bindings
// are not safe for concurrent calls; the Handle's generation slot is the
// only guard.
type llamaEngine struct {
	model *llama.LLama
}

// OpenLlama loads a GGUF weights file with the strategy's placement.
func OpenLlama(path string, s Strategy, contextTokens int) (Engine, error) {
	opts := []llama.ModelOption{
		llama.SetContext(contextTokens),
		llama.SetMMap(s.MMap),
	}
	if s.GPULayers > 0 {
		opts = append(opts, llama.SetGPULayers(s.GPULayers))
	}
	model, err := llama.New(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("llama.cpp load %s: %w", path, err)
	}
	return &llamaEngine{model: model}, nil
}

func (e *llamaEngine) Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := req.Prompt
	promptTokens, err := e.countTokens(prompt)
	if err != nil {
		return nil, fmt.Errorf("tokenize prompt: %w", err)
	}
	// Over-length prompts are cut down to the budget, never rejected.
	// Trimming the tail keeps the start of the conversation, matching
	// tokenizer-side truncation.
	if req.MaxPromptTokens > 0 && promptTokens > req.MaxPromptTokens {
		prompt, promptTokens, err = truncateToBudget(prompt, req.MaxPromptTokens, e.countTokens)
		if err != nil {
			return nil, fmt.Errorf("truncate prompt: %w", err)
		}
	}

	opts := []llama.PredictOption{
		llama.SetTokens(req.MaxTokens),
		llama.SetTemperature(req.Temperature),
		llama.SetTopP(req.TopP),
		llama.SetTopK(req.TopK),
	}
	if stream != nil {
		opts = append(opts, llama.SetTokenCallback(func(tok string) bool {
			stream(tok)
			return true
		}))
	}

	text, err := e.model.Predict(prompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	completionTokens, err := e.countTokens(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize completion: %w", err)
	}

	return &Result{
		Text:             text,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, nil
}

func (e *llamaEngine) countTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	n, _, err := e.model.TokenizeString(text)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (e *llamaEngine) Close() error {
	e.model.Free()
	return nil
}
