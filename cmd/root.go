package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vitalstory",
	Short: "Follow-up questions for health journal entries",
	Long: `VitalStory turns a free-text health log entry into exactly three
follow-up questions that help clarify severity, duration, and other
clinically relevant detail.

Questions come from a remote inference endpoint or a local Ollama model.
When the source answers with something unusable, a fixed set of default
questions is used instead, so a command always prints three questions.

Examples:
  vitalstory followup "Woke up with a migraine, took ibuprofen"
  echo "Knee pain after running" | vitalstory followup
  vitalstory followup --file journal.log --since 7d
  vitalstory followup --answer --save "Dizzy after standing up"
  vitalstory watch journal.log
  vitalstory sessions show 0b8a53c2`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vitalstory.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("backend", "", "question source (endpoint, ollama)")
	rootCmd.PersistentFlags().String("endpoint", "", "inference endpoint URL")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto, always, never)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("endpoint.url", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error loading .env file:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".vitalstory")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VITALSTORY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func setDefaults() {
	viper.SetDefault("format", "text")
	viper.SetDefault("verbose", false)
	viper.SetDefault("debug", false)
	viper.SetDefault("color", "auto")
	viper.SetDefault("backend", "endpoint")
	viper.SetDefault("endpoint.url", "")
	viper.SetDefault("endpoint.timeout", "")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 512)
	viper.SetDefault("llm.ollama.host", "http://localhost:11434")
	viper.SetDefault("llm.ollama.model", "llama3.2")
	viper.SetDefault("redaction.enabled", false)
	viper.SetDefault("redaction.patterns", []string{})
	viper.SetDefault("session.dir", "./sessions")
	viper.SetDefault("watch.rate", 1.0)
	viper.SetDefault("watch.burst", 1)
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("timestamp_formats", []string{
		"2006-01-02T15:04:05Z07:00", // RFC3339
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"01/02/2006",
	})
}
