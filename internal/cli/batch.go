package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/veritube/internal/pipeline"
	"github.com/ppiankov/veritube/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate multiple videos from a file in parallel",
	Long: `Batch evaluates multiple videos concurrently:
- Read video IDs or URLs from input file (one per line, # comments allowed)
- Evaluate videos in parallel with configurable worker count
- Generate an individual JSON report for each video

Example:
  veritube batch videos.txt
  veritube batch videos.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent evaluations")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./veritube-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Inherit per-video flags from the evaluate command
	batchCmd.Flags().DurationVar(&timeout, "video-timeout", 2*time.Minute, "timeout for individual evaluations")
	batchCmd.Flags().StringSliceVar(&languages, "langs", []string{"en"}, "transcript language preference order")
	batchCmd.Flags().IntVar(&maxQueries, "max-queries", 4, "maximum synthesized search queries")
	batchCmd.Flags().IntVar(&perQuery, "per-query", 5, "maximum results per search query")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable search response cache")
	batchCmd.Flags().BoolVar(&withEnrich, "enrich", false, "fetch evidence pages to extend short snippets")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.BatchWorkers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Veritube Batch Processing\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.VideoID, result.Error)
			continue
		}

		successCount++

		jsonPath := filepath.Join(outputDir, result.VideoID+".json")
		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.VideoID, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (confidence: %s, sentiment: %s)\n",
			result.VideoID, result.Report.Assessment.Confidence, result.Report.Sentiment)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d videos\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
