package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/woocode/qwend/internal/prompt"
	"github.com/woocode/qwend/internal/runtime"
)

const modelNotLoadedMsg = "Model not loaded"

// maxPromptTokens is the hard truncation ceiling; over-length prompts are
// cut silently rather than rejected.
const maxPromptTokens = 32768

func (s *Server) handleGenerate(c *echo.Context) error {
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}

	h := s.handle.Get()
	if h == nil {
		return writeError(c, http.StatusInternalServerError, modelNotLoadedMsg)
	}

	params := req.resolve()
	log := s.log.With("request_id", "gen-"+uuid.NewString())

	rendered := prompt.Render(toPromptMessages(req.Messages))

	ctx := c.Request().Context()
	if err := h.Acquire(ctx); err != nil {
		log.Error("generation aborted before start", "error", err)
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
	defer h.Release()

	result, err := h.Engine.Generate(ctx, &runtime.Request{
		Prompt:          rendered,
		MaxTokens:       params.MaxTokens,
		Temperature:     params.Temperature,
		TopP:            params.TopP,
		TopK:            params.TopK,
		MaxPromptTokens: maxPromptTokens,
	}, nil)
	if err != nil {
		log.Error("generation failed", "error", err)
		return writeError(c, http.StatusInternalServerError, err.Error())
	}

	content := prompt.ExtractCompletion(result.Text, rendered)
	log.Info("generation complete",
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens)

	return c.JSON(http.StatusOK, GenerateResponse{
		Content: content,
		Usage: Usage{
			PromptTokens:     result.PromptTokens,
			CompletionTokens: result.CompletionTokens,
			TotalTokens:      result.PromptTokens + result.CompletionTokens,
		},
	})
}

func toPromptMessages(msgs []ChatMessage) []prompt.Message {
	out := make([]prompt.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, prompt.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
