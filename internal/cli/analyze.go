package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/async"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm/openai"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/pipeline"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/prep"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
	"github.com/joseph-ayodele/pyq-analyzer/internal/export"
	"github.com/joseph-ayodele/pyq-analyzer/internal/ingest"
)

// backend bundles the two model-backed stages.
type backend interface {
	llm.QuestionExtractor
	llm.QuestionGrouper
}

// newBackend is swapped in tests.
var newBackend = func(cfg *common.Config, logger *slog.Logger) backend {
	return openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
}

type analyzeOptions struct {
	dir           string
	includeHidden bool
	jsonOut       string
	xlsxOut       string
	watch         bool
	quiet         bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze a batch of exam papers",
		Long: `Extracts questions from every paper, merges repeats across papers and
groups paraphrases into ranked questions with model answers.
Papers may be given as arguments, with --dir, or both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), root)
			if err != nil {
				return err
			}
			if opts.watch && opts.dir == "" {
				return errors.New("--watch requires --dir")
			}
			return runAnalyze(cmd.Context(), cmd, opts, args, logger)
		},
	}
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "directory of exam papers to analyze")
	cmd.Flags().BoolVar(&opts.includeHidden, "include-hidden", false, "include dot-files and dot-directories under --dir")
	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "write the full result as JSON to this path (- for stdout)")
	cmd.Flags().StringVarP(&opts.xlsxOut, "out", "o", "", "write an XLSX report to this path")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run the analysis whenever papers under --dir change")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, opts *analyzeOptions, args []string, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	be := newBackend(cfg, logger)
	fanout := async.NewFanout(logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithProcessTimeout(cfg.Pipeline.ExtractTimeout),
		async.WithRateLimit(cfg.Pipeline.RequestsPerMinute),
	)
	normalizer := prep.NewNormalizer(prep.Config{
		MaxEdge: cfg.Pipeline.MaxImageEdge,
		Quality: cfg.Pipeline.ImageQuality,
	}, logger)
	proc := pipeline.NewProcessor(logger,
		pipeline.NewExtractStage(normalizer, be, logger),
		pipeline.NewGroupStage(be, logger),
		fanout,
		cfg.Pipeline.AnalysisTimeout,
	)
	loader := ingest.NewFSLoader(cfg.Ingest.MaxFiles, cfg.Ingest.MaxFileMB, logger)
	exporter := export.NewService(logger)

	once := func() error {
		docs, err := loadDocuments(ctx, loader, opts, args)
		if err != nil {
			return err
		}
		tracker := pipeline.NewTracker(progressPrinter(cmd.ErrOrStderr(), opts.quiet))
		res, err := proc.Run(ctx, docs, tracker)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return writeOutputs(cmd, exporter, opts, res)
	}

	if err := once(); err != nil {
		if !opts.watch || !errors.Is(err, common.ErrNoInput) {
			return err
		}
		// an empty directory is a valid place to start watching
		cmd.PrintErrf("No papers yet: %s\n", common.UserMessage(err))
	} else if !opts.watch {
		return nil
	}

	batches, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:      []string{opts.dir},
		SkipHidden: !opts.includeHidden,
		Debounce:   time.Second,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	cmd.PrintErrf("Watching %s for changes (Ctrl+C to stop)...\n", opts.dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed, ok := <-batches:
			if !ok {
				return nil
			}
			logger.Info("cli.watch.changed", "paths", changed)
			if err := once(); err != nil {
				cmd.PrintErrf("Analysis failed: %s\n", common.UserMessage(err))
			}
		case err, ok := <-errs:
			if ok {
				logger.Warn("cli.watch.error", "error", err)
			}
		}
	}
}

func loadDocuments(ctx context.Context, loader ingest.Loader, opts *analyzeOptions, args []string) ([]entity.SourceDocument, error) {
	docs, _, _, err := loader.Load(ctx, args, opts.dir, !opts.includeHidden)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func progressPrinter(w io.Writer, quiet bool) pipeline.ProgressFunc {
	if quiet {
		return nil
	}
	return func(p float64) {
		_, _ = fmt.Fprintf(w, "progress: %3.0f%%\n", p)
	}
}

func printResult(w io.Writer, res pipeline.RunResult) {
	_, _ = fmt.Fprintf(w, "Papers: %d  Questions extracted: %d  Question groups: %d\n\n",
		res.Summary.TotalPapers, res.Summary.TotalQuestionsExtracted, res.Summary.TotalRepeatedGroups)
	if len(res.Groups) == 0 {
		_, _ = fmt.Fprintln(w, "No questions found.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Freq", "Type", "Years", "Question"})
	table.SetAutoWrapText(true)
	table.SetColWidth(60)
	for i, g := range res.Groups {
		table.Append([]string{
			fmt.Sprint(i + 1),
			fmt.Sprint(g.Frequency),
			string(g.Type),
			strings.Join(g.Years, ", "),
			g.NormalizedQuestion,
		})
	}
	table.Render()
}

func writeOutputs(cmd *cobra.Command, exporter *export.Service, opts *analyzeOptions, res pipeline.RunResult) error {
	if opts.jsonOut != "" {
		b, err := exporter.ResultJSON(res)
		if err != nil {
			return err
		}
		if opts.jsonOut == "-" {
			if _, err := cmd.OutOrStdout().Write(b); err != nil {
				return err
			}
		} else if err := os.WriteFile(opts.jsonOut, b, 0o644); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	if opts.xlsxOut != "" {
		b, err := exporter.ResultXLSX(res)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsxOut, b, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		cmd.PrintErrf("Report written to %s\n", opts.xlsxOut)
	}
	return nil
}
