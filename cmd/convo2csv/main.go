package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/theimaginaryfoundation/convo-flatten/flatten"
	"github.com/theimaginaryfoundation/convo-flatten/flatten/provider"
	"github.com/theimaginaryfoundation/convo-flatten/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultSummarizer).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

// usageError marks bad flags or configuration (exit status 2).
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

type summarizerFactory func(cfg Config) flatten.ThreadSummarizer

func defaultSummarizer(cfg Config) flatten.ThreadSummarizer {
	if cfg.APIKey == "" {
		return provider.PlaceholderSummarizer{}
	}
	return provider.NewOpenAISummarizer(cfg.APIKey, cfg.Model)
}

func newRootCmd(newSummarizer summarizerFactory) *cobra.Command {
	flagCfg := defaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "convo2csv",
		Short: "Convert ChatGPT conversations.json exports to CSV",
		Long: `convo2csv flattens a ChatGPT conversations export into CSV tables.

It writes <name>_raw.csv (no cleaning), <name>_cleaned.csv (normalized text, sorted by
conversation and time) and <name>_analysis.txt next to the input or into --output.

Examples:
  convo2csv                                  # find conversations.json under the current directory
  convo2csv -i conversations.json            # use a specific input file
  convo2csv -d ~/Downloads/chatgpt-export    # search a directory
  convo2csv -i input.json -o out --minimal   # visualizer columns only
  convo2csv -i input.json --summarize 5      # add AI summaries of the first 5 threads`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return usageError{err}
			}
			applyFlags(cmd.Flags(), &cfg, flagCfg)
			if err := cfg.Validate(); err != nil {
				return usageError{err}
			}

			log, err := logging.New(cfg.LogLevel, cfg.LogFormat, zapcore.AddSync(cmd.ErrOrStderr()))
			if err != nil {
				return usageError{err}
			}
			defer func() { _ = log.Sync() }()

			a := &app{
				cfg:           cfg,
				log:           log,
				stdin:         cmd.InOrStdin(),
				stdout:        cmd.OutOrStdout(),
				newSummarizer: newSummarizer,
			}
			return a.run(cmd.Context())
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	f := cmd.Flags()
	f.StringVarP(&flagCfg.InputPath, "input", "i", "", "Input JSON file path (searched for when omitted)")
	f.StringVarP(&flagCfg.SearchDir, "directory", "d", "", "Directory to search for conversations.json (default: current directory)")
	f.StringVarP(&flagCfg.OutputDir, "output", "o", "", "Output directory (default: same as input file)")
	f.StringVar(&flagCfg.ArrayField, "array-field", "", "If top-level JSON is an object, name of field containing the conversations array")
	f.BoolVar(&flagCfg.RawOnly, "raw-only", false, "Only create the raw CSV (skip the cleaned version)")
	f.BoolVar(&flagCfg.CleanedOnly, "cleaned-only", false, "Only create the cleaned CSV (skip the raw version)")
	f.BoolVar(&flagCfg.Minimal, "minimal", false, "Only include columns needed for the chat visualizer (id, conversation_id, parent_id, role, content)")
	f.IntVar(&flagCfg.Summarize, "summarize", 0, "Summarize the first N conversations into the analysis report")
	f.StringVar(&flagCfg.Model, "model", flagCfg.Model, "OpenAI model used by --summarize")
	f.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "Log level (debug, info, warn, error)")
	f.StringVar(&flagCfg.LogFormat, "log-format", flagCfg.LogFormat, "Log format (console, json)")
	f.StringVar(&configPath, "config", "", "Optional YAML config file")

	return cmd
}
