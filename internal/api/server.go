// Package api exposes the local generation HTTP surface.
package api

import (
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/woocode/qwend/internal/device"
	"github.com/woocode/qwend/internal/logger"
	"github.com/woocode/qwend/internal/runtime"
)

// modelFamily is the fixed label reported by the health endpoint,
// independent of which checkpoint is actually loaded.
const modelFamily = "Qwen3-Coder"

type Server struct {
	log    logger.Logger
	handle *runtime.HandleRef

	// detectDevice is a seam for tests; defaults to device.Detect.
	detectDevice func() string
}

func NewServer(log logger.Logger, handle *runtime.HandleRef) *Server {
	return &Server{
		log:          log,
		handle:       handle,
		detectDevice: device.Detect,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/", s.handleHealth)
	e.POST("/generate", s.handleGenerate)
	e.GET("/models", s.handleListModels)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "running",
		Model:  modelFamily,
		Device: s.detectDevice(),
	})
}

// handleListModels returns the static catalog. The entries describe what
// this server knows how to serve, not what is loaded.
func (s *Server) handleListModels(c *echo.Context) error {
	return c.JSON(http.StatusOK, CatalogResponse{
		Models: []CatalogModel{
			{
				ID:          "Qwen/Qwen3-Coder-30B-A3B-Instruct",
				Name:        "Qwen3-Coder 30B A3B",
				Description: "Advanced coding model with 30B parameters",
			},
			{
				ID:          "Qwen/Qwen2.5-Coder-32B-Instruct",
				Name:        "Qwen2.5-Coder 32B",
				Description: "Latest Qwen2.5 coding model",
			},
			{
				ID:          "Qwen/Qwen2.5-Coder-7B-Instruct",
				Name:        "Qwen2.5-Coder 7B",
				Description: "Smaller, faster Qwen2.5 model",
			},
		},
	})
}

func writeError(c *echo.Context, status int, detail string) error {
	return c.JSON(status, errorBody{Detail: detail})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decode request body: %w", err)
	}
	return v, nil
}
