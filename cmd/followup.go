package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vitalstory/vitalstory/internal/config"
	"github.com/vitalstory/vitalstory/internal/followup"
	"github.com/vitalstory/vitalstory/internal/journal"
	"github.com/vitalstory/vitalstory/internal/output"
	"github.com/vitalstory/vitalstory/internal/session"
)

var followupCmd = &cobra.Command{
	Use:     "followup [log text]",
	Aliases: []string{"ask"},
	Short:   "Get three follow-up questions for a health log entry",
	Long: `Get three follow-up questions for a health log entry.

The entry is taken from the arguments, from stdin, or from every entry of
one or more journal files. Exactly three questions are always printed:
when the question source is unreachable or answers with something that
cannot be used, fixed fallback questions are printed instead.

Examples:
  vitalstory followup "Sharp pain in my lower back since yesterday"
  cat today.txt | vitalstory followup --format json
  vitalstory followup --file 'journals/*.log' --since 2024-03-01 --concurrency 8
  vitalstory followup --answer --save "Felt faint during my run"`,
	RunE: runFollowup,
}

func init() {
	followupCmd.Flags().StringSliceP("file", "F", []string{}, "journal file(s) to read entries from (globs allowed, repeatable)")
	followupCmd.Flags().String("since", "", "only entries after this time (relative like '7d', '12h', or absolute like '2024-03-01')")
	followupCmd.Flags().String("until", "", "only entries before this time (relative duration or absolute timestamp)")
	followupCmd.Flags().Int("concurrency", 4, "maximum requests in flight when reading journal files")
	followupCmd.Flags().Bool("answer", false, "prompt for an answer to each question")
	followupCmd.Flags().Bool("save", false, "store the entry, questions and answers as a session")

	rootCmd.AddCommand(followupCmd)
}

func runFollowup(cmd *cobra.Command, args []string) error {
	files, _ := cmd.Flags().GetStringSlice("file")
	answer, _ := cmd.Flags().GetBool("answer")
	save, _ := cmd.Flags().GetBool("save")

	if len(files) > 0 && len(args) > 0 {
		return errors.New("pass either log text or --file, not both")
	}
	if len(files) > 0 && (answer || save) {
		return errors.New("--answer and --save work on a single entry, not --file")
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

	if len(files) > 0 {
		return runFollowupFiles(cmd, cfg, logger, resolver, writer, files)
	}

	// Answers are read from stdin, so the entry must come from args.
	if answer && len(args) == 0 {
		return errors.New("--answer needs the log text as an argument")
	}
	logText, err := readLogText(cmd, args)
	if err != nil {
		return err
	}

	batch := resolver.Resolve(commandContext(cmd), logText)

	var answers []string
	if answer {
		answers, err = promptAnswers(cmd.InOrStdin(), cmd.ErrOrStderr(), batch)
		if err != nil {
			return err
		}
	}

	if !save && !answer {
		return writer.WriteBatch(batch)
	}

	sess := session.New(logText, batch, answers)
	if save {
		store, err := session.NewStore(cfg.Session.Dir)
		if err != nil {
			return err
		}
		path, err := store.Save(sess)
		if err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		logger.Info("session saved", "id", sess.ID, "path", path)
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved session %s\n", sess.ID)
	}
	return writer.WriteSession(sess)
}

// promptAnswers asks each question on w and reads one line per answer from
// r. Running out of input leaves the remaining answers empty.
func promptAnswers(r io.Reader, w io.Writer, batch followup.Batch) ([]string, error) {
	scanner := bufio.NewScanner(r)
	answers := make([]string, 0, followup.BatchSize)
	for _, q := range batch {
		fmt.Fprintf(w, "%s %s\n> ", q.Number(), q.Text)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading answer: %w", err)
			}
			fmt.Fprintln(w)
			break
		}
		answers = append(answers, strings.TrimSpace(scanner.Text()))
	}
	return answers, nil
}

func runFollowupFiles(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, resolver *followup.Resolver, writer *output.Writer, files []string) error {
	sinceStr, _ := cmd.Flags().GetString("since")
	untilStr, _ := cmd.Flags().GetString("until")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", concurrency)
	}

	var since, until time.Time
	var err error
	if sinceStr != "" {
		if since, err = config.ParseTimeRef(sinceStr); err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
	}
	if untilStr != "" {
		if until, err = config.ParseTimeRef(untilStr); err != nil {
			return fmt.Errorf("invalid --until value: %w", err)
		}
	}

	expanded, err := config.ExpandGlobs(files)
	if err != nil {
		return err
	}

	p := journal.New(cfg.TimestampFormats)
	var results []output.Result
	for _, file := range expanded {
		entries, err := p.ParseFile(file)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", file, err)
		}
		for _, e := range journal.Filter(entries, since, until) {
			results = append(results, output.Result{
				Source:    file,
				Line:      e.Line,
				Timestamp: e.Timestamp,
				LogText:   e.Text,
			})
		}
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No journal entries matched your filters.")
		return nil
	}

	logger.Info("resolving follow-up questions", "entries", len(results), "files", len(expanded), "concurrency", concurrency)

	g, ctx := errgroup.WithContext(commandContext(cmd))
	g.SetLimit(concurrency)
	for i := range results {
		g.Go(func() error {
			results[i].Questions = resolver.Resolve(ctx, results[i].LogText)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return writer.WriteResults(results)
}
