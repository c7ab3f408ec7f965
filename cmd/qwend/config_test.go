package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/woocode/qwend/internal/runtime"
)

func TestLoadConfigFileMissing(t *testing.T) {
	t.Parallel()

	cfg := loadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg != (Config{}) {
		t.Fatalf("missing file must yield zero config, got %+v", cfg)
	}
	if cfg := loadConfigFile(""); cfg != (Config{}) {
		t.Fatalf("empty path must yield zero config, got %+v", cfg)
	}
}

func TestLoadConfigFileParses(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "model: Qwen/Qwen2.5-Coder-7B-Instruct\nport: 9000\ncache_dir: /tmp/weights\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := loadConfigFile(path)
	if cfg.Model != "Qwen/Qwen2.5-Coder-7B-Instruct" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.Port == nil || *cfg.Port != 9000 {
		t.Errorf("port = %v", cfg.Port)
	}
	if cfg.CacheDir != "/tmp/weights" {
		t.Errorf("cache_dir = %q", cfg.CacheDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
}

func TestLoadConfigFileMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg := loadConfigFile(path); cfg != (Config{}) {
		t.Fatalf("malformed file must yield zero config, got %+v", cfg)
	}
}

// runServeConfig parses args with the serve flag set and runs
// applyServeConfig against cfg, returning the resolved values.
func runServeConfig(t *testing.T, args []string, cfg Config) (model string, port int64, cacheDir string) {
	t.Helper()
	cmd := &cli.Command{
		Name: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Value: runtime.DefaultModel, Destination: &model},
			&cli.Int64Flag{Name: "port", Value: 8765, Destination: &port},
			&cli.StringFlag{Name: "cache-dir", Destination: &cacheDir},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			applyServeConfig(c, cfg, &model, &port, &cacheDir)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"serve"}, args...)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return model, port, cacheDir
}

func TestServeConfigPrecedence(t *testing.T) {
	t.Setenv(envModel, "Env/Model")
	t.Setenv(envPort, "9100")
	cfgPort := int64(9000)
	cfg := Config{Model: "Cfg/Model", Port: &cfgPort, CacheDir: "/cfg/cache"}

	model, port, _ := runServeConfig(t, []string{"--model", "Flag/Model", "--port", "7000"}, cfg)
	if model != "Flag/Model" || port != 7000 {
		t.Fatalf("explicit flags must win: model=%q port=%d", model, port)
	}

	model, port, cacheDir := runServeConfig(t, nil, cfg)
	if model != "Env/Model" || port != 9100 {
		t.Fatalf("environment must beat the config file: model=%q port=%d", model, port)
	}
	if cacheDir != "/cfg/cache" {
		t.Fatalf("cache dir must come from the config file, got %q", cacheDir)
	}
}

func TestServeConfigFileFillsUnset(t *testing.T) {
	t.Setenv(envModel, "")
	t.Setenv(envPort, "")
	cfgPort := int64(9000)

	model, port, _ := runServeConfig(t, nil, Config{Model: "Cfg/Model", Port: &cfgPort})
	if model != "Cfg/Model" || port != 9000 {
		t.Fatalf("config file must fill unset flags: model=%q port=%d", model, port)
	}

	model, port, _ = runServeConfig(t, nil, Config{})
	if model != runtime.DefaultModel || port != 8765 {
		t.Fatalf("empty config must leave defaults: model=%q port=%d", model, port)
	}
}

func TestServeConfigIgnoresBadPortEnv(t *testing.T) {
	t.Setenv(envModel, "")
	t.Setenv(envPort, "not-a-port")
	cfgPort := int64(9000)

	if _, port, _ := runServeConfig(t, nil, Config{Port: &cfgPort}); port != 9000 {
		t.Fatalf("unparseable port env must not override the config file, got %d", port)
	}
	if _, port, _ := runServeConfig(t, nil, Config{}); port != 8765 {
		t.Fatalf("unparseable port env must leave the default, got %d", port)
	}
}
