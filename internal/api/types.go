package api

// ChatMessage is one conversation turn as sent by clients.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is the POST /generate body. Pointer fields distinguish
// "absent" from zero so defaults can be applied.
type GenerateRequest struct {
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	TopK        *int          `json:"top_k,omitempty"`
	// Stream is accepted for wire compatibility but has no effect.
	Stream *bool `json:"stream,omitempty"`
}

// genParams are the resolved sampling parameters for one request.
type genParams struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

func (r *GenerateRequest) resolve() genParams {
	p := genParams{
		MaxTokens:   512,
		Temperature: 0.7,
		TopP:        0.95,
		TopK:        40,
	}
	if r.MaxTokens != nil {
		p.MaxTokens = *r.MaxTokens
	}
	if r.Temperature != nil {
		p.Temperature = *r.Temperature
	}
	if r.TopP != nil {
		p.TopP = *r.TopP
	}
	if r.TopK != nil {
		p.TopK = *r.TopK
	}
	return p
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type GenerateResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// HealthResponse is the GET / body. Device is probed on every call.
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Device string `json:"device"`
}

type CatalogModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CatalogResponse struct {
	Models []CatalogModel `json:"models"`
}

type errorBody struct {
	Detail string `json:"detail"`
}
