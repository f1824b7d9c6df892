package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/doclink/internal/autolink"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel     string
	matchersFile string
	log          *slog.Logger
}

// matchers returns the configured matchers, or nil for the defaults.
func (o *rootOptions) matchers() ([]autolink.Matcher, error) {
	if o.matchersFile == "" {
		return nil, nil
	}
	return autolink.LoadMatchersFile(o.matchersFile)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "doclink",
		Short: "Detect and link URLs in documents",
		Long: `doclink turns plain URLs and e-mail addresses in documents into links.

Input may be text, Markdown, HTML, DOCX, PDF, CSV or a JSON document state.
Output is HTML, Markdown or JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q", opts.logLevel)
			}
			opts.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Set log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.matchersFile, "matchers", os.Getenv("MATCHERS_FILE"), "YAML file with custom matchers")

	rootCmd.AddCommand(newLinkifyCmd(opts))
	rootCmd.AddCommand(newMatchersCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
