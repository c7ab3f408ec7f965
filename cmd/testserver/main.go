// Command testserver starts the generation server with a small checkpoint
// for local smoke testing. It always loads the 1.5B model so the server
// comes up quickly on modest hardware, regardless of how the environment
// is configured.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/woocode/qwend/internal/api"
	"github.com/woocode/qwend/internal/hub"
	"github.com/woocode/qwend/internal/logger"
	"github.com/woocode/qwend/internal/runtime"
)

const (
	testModel = "Qwen/Qwen2.5-Coder-1.5B-Instruct"
	listen    = "127.0.0.1:8765"
)

func main() {
	if err := run(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Pretty(os.Stderr, slog.LevelInfo)

	log.Info("starting test server", "model", testModel)

	cacheDir, err := runtime.DefaultCacheDir()
	if err != nil {
		return fmt.Errorf("resolve cache dir: %w", err)
	}

	loader := &runtime.Loader{
		CacheDir: cacheDir,
		Hub:      hub.NewClient(log),
		Log:      log,
	}
	handle, err := loader.Load(ctx, testModel)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer func() { _ = handle.Engine.Close() }()

	ref := &runtime.HandleRef{}
	ref.Set(handle)

	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	api.NewServer(log, ref).Register(e)

	log.Info("test server listening", "address", listen)
	sc := echo.StartConfig{
		Address: listen,
		BeforeServeFunc: func(srv *http.Server) error {
			srv.ReadHeaderTimeout = 30 * time.Second
			return nil
		},
	}
	return sc.Start(ctx, e)
}
