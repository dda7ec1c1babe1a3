package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vitalstory/vitalstory/internal/config"
	"github.com/vitalstory/vitalstory/internal/followup"
	"github.com/vitalstory/vitalstory/internal/llm"
	"github.com/vitalstory/vitalstory/internal/output"
	"github.com/vitalstory/vitalstory/internal/redact"
)

// logOutput is where diagnostic logs go in addition to log.file.
var logOutput io.Writer = os.Stderr

// loadConfig unmarshals and validates the current viper settings.
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the slog logger for a command. The returned function
// closes the rotating log file, if any.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	level := slog.LevelError
	switch {
	case cfg.Debug:
		level = slog.LevelDebug
	case cfg.Verbose:
		level = slog.LevelInfo
	}

	w := logOutput
	closer := func() {}
	if cfg.Log.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
		w = io.MultiWriter(logOutput, lj)
		closer = func() { _ = lj.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer
}

// ollamaCheckTimeout bounds the startup health check of the Ollama backend.
const ollamaCheckTimeout = 3 * time.Second

// newTransport selects the question source configured by backend.
func newTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (followup.Transport, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendOllama:
		provider, err := llm.NewProvider(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM provider: %w", err)
		}
		checkOllama(ctx, provider, cfg, logger)
		return followup.NewModelTransport(provider, &llm.ChatOptions{
			Model:       cfg.LLM.Ollama.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}, logger)

	default:
		timeout, err := cfg.Endpoint.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		return followup.NewEndpointTransport(cfg.Endpoint.URL, logger, followup.WithTimeout(timeout))
	}
}

// checkOllama warns when the Ollama server is down or the model is not
// pulled. Requests are still attempted and resolve to the unavailable
// questions if they fail.
func checkOllama(ctx context.Context, provider llm.Provider, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, ollamaCheckTimeout)
	defer cancel()

	if err := provider.Heartbeat(ctx); err != nil {
		logger.Warn("cannot connect to Ollama, start it with: ollama serve",
			"host", cfg.LLM.Ollama.Host,
			"error", err,
		)
		return
	}

	model := cfg.LLM.Ollama.Model
	if model == "" {
		return
	}
	ok, err := provider.ModelAvailable(ctx, model)
	switch {
	case err != nil:
		logger.Warn("cannot list Ollama models", "error", err)
	case !ok:
		logger.Warn("Ollama model is not pulled, run: ollama pull "+model, "model", model)
	}
}

// newResolver wires transport, redaction, service and resolver together.
func newResolver(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*followup.Resolver, error) {
	transport, err := newTransport(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var opts []followup.ServiceOption
	if cfg.Redaction.Enabled {
		opts = append(opts, followup.WithRedactor(redact.New(true, cfg.Redaction.Patterns)))
	}

	svc, err := followup.NewService(transport, logger, opts...)
	if err != nil {
		return nil, err
	}
	return followup.NewResolver(svc, logger)
}

// newWriter creates an output writer for cmd using the configured format
// and color mode.
func newWriter(cmd *cobra.Command) (*output.Writer, error) {
	mode, err := output.ParseColorMode(viper.GetString("color"))
	if err != nil {
		return nil, err
	}
	return output.NewWithColor(cmd.OutOrStdout(), output.ParseFormat(viper.GetString("format")), mode), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readLogText takes the log entry from args, or from stdin when no args are
// given and stdin is not a terminal. Empty piped input is an empty entry,
// the same as an empty argument.
func readLogText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && output.IsTerminal(f) {
		return "", errors.New("no log text: pass it as an argument or pipe it on stdin")
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
