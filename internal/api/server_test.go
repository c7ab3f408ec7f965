package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/woocode/qwend/internal/logger"
	"github.com/woocode/qwend/internal/runtime"
)

// fakeEngine scripts the runtime boundary for handler tests.
type fakeEngine struct {
	respond func(req *runtime.Request) (*runtime.Result, error)
	lastReq *runtime.Request
}

func (e *fakeEngine) Generate(_ context.Context, req *runtime.Request, _ runtime.StreamFunc) (*runtime.Result, error) {
	e.lastReq = req
	return e.respond(req)
}

func (e *fakeEngine) Close() error { return nil }

// echoingEngine mimics a runtime whose decoded output includes the prompt.
func echoingEngine(completion string, promptTokens, completionTokens int) *fakeEngine {
	return &fakeEngine{respond: func(req *runtime.Request) (*runtime.Result, error) {
		return &runtime.Result{
			Text:             req.Prompt + completion,
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
		}, nil
	}}
}

func newTestServer(eng runtime.Engine) (*Server, *echo.Echo) {
	ref := &runtime.HandleRef{}
	if eng != nil {
		ref.Set(runtime.NewHandle(eng, "Qwen/Qwen2.5-Coder-1.5B-Instruct", "cpu", "f16"))
	}
	s := NewServer(logger.JSON(&bytes.Buffer{}, slog.LevelInfo), ref)
	s.detectDevice = func() string { return "cpu" }
	e := echo.New()
	s.Register(e)
	return s, e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	_, e := newTestServer(echoingEngine("ok", 1, 1))
	rec := doJSON(t, e, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "running" {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Model != "Qwen3-Coder" {
		t.Fatalf("model label = %q", resp.Model)
	}
	if resp.Device != "cpu" {
		t.Fatalf("device = %q", resp.Device)
	}
}

func TestListModelsIsStatic(t *testing.T) {
	t.Parallel()

	// The catalog is fixed regardless of the loaded checkpoint, including
	// when nothing is loaded at all.
	for _, eng := range []runtime.Engine{nil, echoingEngine("x", 1, 1)} {
		_, e := newTestServer(eng)
		rec := doJSON(t, e, http.MethodGet, "/models", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp CatalogResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Models) != 3 {
			t.Fatalf("expected 3 catalog entries, got %d", len(resp.Models))
		}
		if resp.Models[0].ID != "Qwen/Qwen3-Coder-30B-A3B-Instruct" {
			t.Fatalf("unexpected first entry %q", resp.Models[0].ID)
		}
	}
}
