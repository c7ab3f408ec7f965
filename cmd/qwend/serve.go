package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/woocode/qwend/internal/api"
	"github.com/woocode/qwend/internal/hub"
	"github.com/woocode/qwend/internal/logger"
	"github.com/woocode/qwend/internal/runtime"
)

func serveCmd() *cli.Command {
	var (
		model       string
		host        string
		port        int64
		cacheDir    string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Load the model and serve the generation API",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "model identifier to load",
				Value:       runtime.DefaultModel,
				Destination: &model,
			},
			&cli.StringFlag{
				Name:        "host",
				Usage:       "listen host",
				Value:       "127.0.0.1",
				Destination: &host,
			},
			&cli.Int64Flag{
				Name:        "port",
				Aliases:     []string{"p"},
				Usage:       "listen port",
				Value:       8765,
				Destination: &port,
			},
			&cli.StringFlag{
				Name:        "cache-dir",
				Usage:       "model weight cache directory",
				Destination: &cacheDir,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyServeConfig(cmd, cfg, &model, &port, &cacheDir)

			log := buildLogger(logFormat, logLevel)
			ctx = logger.WithContext(ctx, log)

			if cacheDir == "" {
				var err error
				cacheDir, err = runtime.DefaultCacheDir()
				if err != nil {
					return fmt.Errorf("resolve cache dir: %w", err)
				}
			}

			loader := &runtime.Loader{
				CacheDir: cacheDir,
				Hub:      hub.NewClient(log),
				Log:      log,
			}

			// Load once before accepting traffic; a startup failure here
			// is fatal, there is no partial-availability mode.
			handle, err := loader.Load(ctx, model)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			defer func() { _ = handle.Engine.Close() }()

			ref := &runtime.HandleRef{}
			ref.Set(handle)

			addr := net.JoinHostPort(host, strconv.FormatInt(port, 10))
			return startServer(ctx, log, ref, addr, readTimeout)
		},
	}
}

func startServer(ctx context.Context, log logger.Logger, ref *runtime.HandleRef, addr string, readTimeout time.Duration) error {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	api.NewServer(log, ref).Register(e)

	log.Info("starting server", "address", addr)
	sc := echo.StartConfig{
		Address: addr,
		BeforeServeFunc: func(srv *http.Server) error {
			srv.ReadHeaderTimeout = readTimeout
			return nil
		},
	}
	return sc.Start(ctx, e)
}
