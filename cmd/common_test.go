package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitalstory/vitalstory/internal/config"
	"github.com/vitalstory/vitalstory/internal/followup"
)

func TestLoadConfigDefaults(t *testing.T) {
	resetConfig(t, "http://localhost:9/predict")
	viper.Set("session.dir", "./sessions")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Backend != config.BackendEndpoint {
		t.Errorf("Backend = %q, want endpoint", cfg.Backend)
	}
	if cfg.Session.Dir != "./sessions" || cfg.Watch.Rate != 1 || cfg.Redaction.Enabled {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.TimestampFormats) == 0 {
		t.Error("timestamp_formats default missing")
	}
}

func TestNewTransportSelectsBackend(t *testing.T) {
	resetConfig(t, "http://localhost:9/predict")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}

	tr, err := newTransport(context.Background(), cfg, testCmdLogger(cfg))
	if err != nil {
		t.Fatalf("newTransport() error = %v", err)
	}
	if _, ok := tr.(*followup.EndpointTransport); !ok {
		t.Errorf("endpoint backend built %T", tr)
	}

	cfg.Backend = config.BackendOllama
	tr, err = newTransport(context.Background(), cfg, testCmdLogger(cfg))
	if err != nil {
		t.Fatalf("newTransport() error = %v", err)
	}
	if _, ok := tr.(*followup.ModelTransport); !ok {
		t.Errorf("ollama backend built %T", tr)
	}

	cfg.Backend = config.BackendEndpoint
	cfg.Endpoint.Timeout = "soon"
	if _, err := newTransport(context.Background(), cfg, testCmdLogger(cfg)); err == nil {
		t.Error("newTransport() should reject an invalid timeout")
	}
}

func testCmdLogger(cfg *config.Config) *slog.Logger {
	l, _ := newLogger(cfg)
	return l
}

func TestNewLoggerWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitalstory.log")
	cfg := &config.Config{Verbose: true, Log: config.LogConfig{File: path, MaxSizeMB: 1, MaxBackups: 1}}

	logger, closeLog := newLogger(cfg)
	logger.Info("follow-up questions received", "count", 3)
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "follow-up questions received") {
		t.Errorf("log file content = %q", data)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		infoOn  bool
		debugOn bool
	}{
		{"quiet", config.Config{}, false, false},
		{"verbose", config.Config{Verbose: true}, true, false},
		{"debug", config.Config{Debug: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, closeLog := newLogger(&tt.cfg)
			defer closeLog()
			ctx := t.Context()
			if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := logger.Enabled(ctx, slog.LevelInfo); got != tt.infoOn {
				t.Errorf("info enabled = %v, want %v", got, tt.infoOn)
			}
		})
	}
}

func TestReadLogText(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("from stdin\n"))

	got, err := readLogText(cmd, []string{"from", "args"})
	if err != nil || got != "from args" {
		t.Errorf("readLogText(args) = %q, %v", got, err)
	}

	got, err = readLogText(cmd, nil)
	if err != nil || got != "from stdin" {
		t.Errorf("readLogText(stdin) = %q, %v", got, err)
	}
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	if !strings.HasPrefix(out.String(), "vitalstory dev") {
		t.Errorf("version output = %q", out.String())
	}
}
