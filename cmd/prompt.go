package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitalstory/vitalstory/internal/output"
	"github.com/vitalstory/vitalstory/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt [log text]",
	Short: "Print the prompt sent to the model for a log entry",
	Long: `Print the instruction that asks a model for three follow-up questions.

With --format json the chat messages sent to a local model are printed
instead of the bare prompt.

Examples:
  vitalstory prompt "Coughing at night for a week"
  vitalstory prompt --format json "Coughing at night for a week"`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	logText, err := readLogText(cmd, args)
	if err != nil {
		return err
	}

	switch format := output.ParseFormat(viper.GetString("format")); format {
	case output.FormatJSON, output.FormatYAML:
		messages, err := prompt.Build(prompt.TypeFollowUp, prompt.BuildOptions{LogText: logText})
		if err != nil {
			return err
		}
		w := output.New(cmd.OutOrStdout(), format)
		if format == output.FormatYAML {
			return w.WriteYAML(messages)
		}
		return w.WriteJSON(messages)
	default:
		_, err := fmt.Fprintln(cmd.OutOrStdout(), prompt.FollowUp(logText))
		return err
	}
}
