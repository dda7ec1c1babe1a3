package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/vitalstory/vitalstory/internal/config"
	"github.com/vitalstory/vitalstory/internal/journal"
	"github.com/vitalstory/vitalstory/internal/output"
	"github.com/vitalstory/vitalstory/internal/tail"
)

var watchCmd = &cobra.Command{
	Use:   "watch <journal>",
	Short: "Print follow-up questions for each new journal entry",
	Long: `Watch a journal file and print follow-up questions for every entry
appended to it, like "tail -f".

Requests are paced by watch.rate (requests per second) and watch.burst so
a large paste into the journal does not flood the question source.

Examples:
  vitalstory watch journal.log
  vitalstory watch --lines 3 journal.log
  vitalstory watch --follow-rotate --pattern '(?i)pain' journal.log`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntP("lines", "n", 0, "also process the last N existing entries")
	watchCmd.Flags().Bool("no-follow", false, "process the last N entries and exit (don't follow)")
	watchCmd.Flags().Bool("follow-rotate", false, "keep following when the journal is rotated")
	watchCmd.Flags().StringP("pattern", "p", "", "only process entries matching regex pattern")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	lines, _ := cmd.Flags().GetInt("lines")
	noFollow, _ := cmd.Flags().GetBool("no-follow")
	followRotate, _ := cmd.Flags().GetBool("follow-rotate")
	pattern, _ := cmd.Flags().GetString("pattern")

	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	}

	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot watch journal: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer closeLog()

	resolver, err := newResolver(commandContext(cmd), cfg, logger)
	if err != nil {
		return err
	}
	writer, err := newWriter(cmd)
	if err != nil {
		return err
	}

	limiter := newLimiter(cfg.Watch)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tailer := tail.New(tail.Options{
		FilePath:     args[0],
		Lines:        lines,
		Follow:       !noFollow,
		FollowRotate: followRotate,
		Pattern:      re,
		Parser:       journal.New(cfg.TimestampFormats),
		Logger:       logger,
		OnEntry: func(e journal.Entry) error {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			batch := resolver.Resolve(ctx, e.Text)
			return writer.WriteResult(output.Result{
				Source:    args[0],
				Line:      e.Line,
				Timestamp: e.Timestamp,
				LogText:   e.Text,
				Questions: batch,
			})
		},
	})

	logger.Info("watching journal", "file", args[0], "rate", cfg.Watch.Rate, "burst", cfg.Watch.Burst)
	if err := tailer.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// newLimiter paces outbound requests. A zero rate means unlimited.
func newLimiter(cfg config.WatchConfig) *rate.Limiter {
	if cfg.Rate == 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.Rate), burst)
}
