package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitalstory/vitalstory/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List or show saved follow-up sessions",
	Long: `List or show sessions saved with "followup --answer --save".

Sessions are stored as JSON files under session.dir (default ./sessions).
A session can be shown by its full id or any unique prefix.

Examples:
  vitalstory sessions
  vitalstory sessions show 0b8a53c2
  vitalstory sessions list --format json`,
	Args: cobra.NoArgs,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved session with its answers",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// sessionStore opens the store without requiring a backend to be configured.
func sessionStore() (*session.Store, error) {
	return session.NewStore(viper.GetString("session.dir"))
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	sessions, err := store.List()
	if err != nil {
		return err
	}
	writer, err := newWriter(cmd)
	if err != nil {
		return err
	}
	return writer.WriteSessions(sessions)
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	sess, err := store.Load(args[0])
	if err != nil {
		return err
	}
	writer, err := newWriter(cmd)
	if err != nil {
		return err
	}
	return writer.WriteSession(sess)
}
