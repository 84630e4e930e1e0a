package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	logFormat string
	verbose   bool
}

// NewRootCmd builds the pyq-analyzer command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "pyq-analyzer",
		Short: "Find the questions that keep coming back in past exam papers",
		Long: `pyq-analyzer reads a batch of past exam papers (PDF, image or text),
extracts every question, merges paraphrases across papers and ranks the
recurring questions by how often they were asked, with a model answer each.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log output format: text or json")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("pyq-analyzer version %s\n", version)
		},
	}
}

// newLogger installs a slog handler writing to w; time and level are kept for json output only.
func newLogger(w io.Writer, opts *rootOptions) (*slog.Logger, error) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(opts.logFormat) {
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	case "text", "":
		hopts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
		h = slog.NewTextHandler(w, hopts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.logFormat)
	}
	return slog.New(h), nil
}
