package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/veritube/internal/model"
	"github.com/ppiankov/veritube/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	languages   []string
	llmProvider string
	llmModel    string
	maxQueries  int
	perQuery    int
	noCache     bool
	withEnrich  bool
	noFooter    bool
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <video-url-or-id>",
	Short: "Evaluate a single video and generate an evidence-grounded report",
	Long: `Evaluate runs the full pipeline for one video:
- Fetch the transcript (preferred language first, any available fallback)
- Synthesize concise fact-checkable search queries
- Retrieve corroborating sources from the web
- Judge the video's claims against the evidence
- Classify overall sentiment

Example:
  veritube evaluate dQw4w9WgXcQ
  veritube evaluate "https://www.youtube.com/watch?v=dQw4w9WgXcQ" --json report.json --md report.md
  veritube evaluate dQw4w9WgXcQ --llm-provider anthropic --langs en,de`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	// Output flags
	evaluateCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	evaluateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	evaluateCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Pipeline flags
	evaluateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall request timeout")
	evaluateCmd.Flags().StringSliceVar(&languages, "langs", []string{"en"}, "transcript language preference order")
	evaluateCmd.Flags().IntVar(&maxQueries, "max-queries", 4, "maximum synthesized search queries")
	evaluateCmd.Flags().IntVar(&perQuery, "per-query", 5, "maximum results per search query")
	evaluateCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable search response cache")
	evaluateCmd.Flags().BoolVar(&withEnrich, "enrich", false, "fetch evidence pages to extend short snippets")

	// LLM flags
	evaluateCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	evaluateCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
}

// buildConfig assembles the runtime configuration: defaults, then the config
// file and VERITUBE_* environment via viper, then explicitly-set CLI flags,
// then credential environment variables
func buildConfig(flags *pflag.FlagSet) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// Flags only override the file and environment layers when set on the
	// command line. The batch command registers the per-video timeout as
	// "video-timeout"; its own "timeout" is the batch deadline.
	timeoutFlag := "timeout"
	if flags.Lookup("video-timeout") != nil {
		timeoutFlag = "video-timeout"
	}
	if flagChanged(flags, timeoutFlag) {
		cfg.Pipeline.Timeout = timeout
	}
	if flagChanged(flags, "langs") {
		cfg.Transcript.Languages = languages
	}
	if flagChanged(flags, "max-queries") {
		cfg.Pipeline.MaxQueries = maxQueries
	}
	if flagChanged(flags, "per-query") {
		cfg.Search.ResultsPerQuery = perQuery
	}
	if flagChanged(flags, "no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flagChanged(flags, "enrich") {
		cfg.Enrich.Enabled = withEnrich
	}
	if flagChanged(flags, "no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if flagChanged(flags, "llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flagChanged(flags, "llm-model") {
		cfg.LLM.Model = llmModel
	}
	cfg.Output.Verbose = verbose

	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.Search.APIKey = key
	}
	if cfg.Search.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY environment variable not set")
	}
	if cx := os.Getenv("GOOGLE_CX"); cx != "" {
		cfg.Search.EngineID = cx
	}
	if cfg.Search.EngineID == "" {
		return nil, fmt.Errorf("GOOGLE_CX environment variable not set")
	}

	return cfg, nil
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ref, err := model.ParseVideoReference(args[0])
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd.Flags())
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Evaluating: %s\n", ref.ID)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", cfg.Pipeline.Timeout)
		fmt.Fprintf(os.Stderr, "LLM: %s\n", cfg.LLM.Provider)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.Timeout)
	defer cancel()

	report, err := p.Evaluate(ctx, ref)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Transcript language: %s\n", report.Language)
		fmt.Fprintf(os.Stderr, "✓ Synthesized %d queries\n", len(report.Queries))
		fmt.Fprintf(os.Stderr, "✓ Retrieved %d evidence sources\n", len(report.Evidence))
		fmt.Fprintf(os.Stderr, "✓ Extracted %d factual points\n", len(report.Evaluation.FactualPoints))
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(report)

	return nil
}
