package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Harshitk-cp/distiller/internal/config"
	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/embedding"
	"github.com/Harshitk-cp/distiller/internal/extract"
	"github.com/Harshitk-cp/distiller/internal/llm"
	"github.com/Harshitk-cp/distiller/internal/service"
	"github.com/Harshitk-cp/distiller/internal/synthesis"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// signalNamespace makes CLI signal ids stable across invocations.
var signalNamespace = uuid.MustParse("0b7e3f52-4c1d-5a8e-9f26-7d3a1c5e8b40")

type runOptions struct {
	paramsFile        string
	embeddingProvider string
	llmProvider       string
	minLength         int
	timeout           time.Duration
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run <file>...",
	Short: "Synthesize axioms from memory files",
	Long: `Read one or more memory files, extract one signal per meaningful line,
and print the resulting axioms. Use "-" to read from stdin.

No database is needed; nothing is persisted.`,
	Example: `  distill run notes/*.md
  distill run --params params.yaml -o json journal.md
  cat notes.md | distill run --embedding openai -`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if runOpts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runOpts.timeout)
			defer cancel()
		}
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		return distill(ctx, runOpts, args, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.paramsFile, "params", "", "YAML file of synthesis parameters")
	runCmd.Flags().StringVar(&runOpts.embeddingProvider, "embedding", embedding.ProviderMock, "Embedding provider (mock, openai)")
	runCmd.Flags().StringVar(&runOpts.llmProvider, "label", llm.ProviderNone, "LLM provider used to label axioms (none, mock, openai, anthropic, gemini, cerebras)")
	runCmd.Flags().IntVar(&runOpts.minLength, "min-length", extract.DefaultMinLength, "Skip lines shorter than this many characters")
	runCmd.Flags().DurationVar(&runOpts.timeout, "timeout", 5*time.Minute, "Abort the run after this long")
	rootCmd.AddCommand(runCmd)
}

func distill(ctx context.Context, opts runOptions, files []string, stdin io.Reader, w io.Writer, logger *zap.Logger) error {
	cfg := domain.DefaultSynthesisConfig()
	if opts.paramsFile != "" {
		var err error
		if cfg, err = config.LoadSynthesisFile(opts.paramsFile); err != nil {
			return err
		}
	}

	renderer, err := rendererFor(output)
	if err != nil {
		return err
	}

	ec, err := embedding.NewClient(opts.embeddingProvider, config.OpenAIAPIKey())
	if err != nil {
		return err
	}

	drafts, err := readDrafts(files, stdin, opts.minLength)
	if err != nil {
		return err
	}

	signals, err := embedDrafts(ctx, ec, drafts)
	if err != nil {
		return err
	}
	logger.Info("signals extracted", zap.Int("count", len(signals)), zap.Int("files", len(files)))

	synth, err := synthesis.NewSynthesizer(cfg, logger)
	if err != nil {
		return err
	}
	run, err := synth.Run(ctx, signals)
	if err != nil {
		return err
	}

	if opts.llmProvider != "" && opts.llmProvider != llm.ProviderNone && len(run.Axioms) > 0 {
		lc, err := llm.NewClient(opts.llmProvider, llmKey(opts.llmProvider))
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]domain.Signal, len(signals))
		for _, s := range signals {
			byID[s.ID] = s
		}
		if err := service.NewLabeler(lc, logger).Apply(ctx, run, byID); err != nil {
			return err
		}
	}

	return renderer(w, run, signals)
}

func readDrafts(files []string, stdin io.Reader, minLength int) ([]extract.Draft, error) {
	var drafts []extract.Draft
	for _, f := range files {
		var (
			data   []byte
			err    error
			source = f
		)
		if f == "-" {
			data, err = io.ReadAll(stdin)
			source = "stdin"
		} else {
			data, err = os.ReadFile(f)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		drafts = append(drafts, extract.Lines(string(data), source, extract.Options{MinLength: minLength})...)
	}
	return drafts, nil
}

// embedDrafts turns drafts into signals in input order. Any embedding
// failure aborts the whole run.
func embedDrafts(ctx context.Context, ec domain.EmbeddingClient, drafts []extract.Draft) ([]domain.Signal, error) {
	base := time.Now().UTC()
	signals := make([]domain.Signal, 0, len(drafts))
	for i, d := range drafts {
		emb, err := ec.Embed(ctx, d.Content)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", d.Source, err)
		}
		signals = append(signals, domain.Signal{
			ID:        uuid.NewSHA1(signalNamespace, []byte(d.Source+"\x00"+d.Content)),
			Content:   d.Content,
			Embedding: emb,
			Source:    d.Source,
			CreatedAt: base.Add(time.Duration(i) * time.Microsecond),
		})
	}
	return signals, nil
}

func llmKey(provider string) string {
	switch provider {
	case llm.ProviderAnthropic:
		return config.AnthropicAPIKey()
	case llm.ProviderGemini:
		return config.GeminiAPIKey()
	case llm.ProviderCerebras:
		return config.CerebrasAPIKey()
	case llm.ProviderOpenAI:
		return config.OpenAIAPIKey()
	default:
		return ""
	}
}
