package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veritube/internal/model"
)

// Evaluator defines the interface for evaluating a single video
type Evaluator interface {
	Evaluate(ctx context.Context, ref model.VideoReference) (*model.Report, error)
}

// EvalJob represents a single video evaluation job
type EvalJob struct {
	Ref       model.VideoReference
	Evaluator Evaluator
}

// Execute executes the evaluation job
func (j *EvalJob) Execute(ctx context.Context) Result {
	report, err := j.Evaluator.Evaluate(ctx, j.Ref)
	return &EvalResult{
		VideoID: j.Ref.ID,
		Report:  report,
		Error:   err,
	}
}

// EvalResult represents the result of an evaluation job
type EvalResult struct {
	VideoID string
	Report  *model.Report
	Error   error
}

// GetError returns the error from the evaluation result
func (r *EvalResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates multiple videos concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// ProcessRefs evaluates multiple videos concurrently. The caller's context
// bounds the whole batch: when it expires, in-flight evaluations are
// cancelled and queued ones are abandoned.
func (b *BatchProcessor) ProcessRefs(ctx context.Context, refs []model.VideoReference) []*EvalResult {
	if len(refs) == 0 {
		return []*EvalResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, ref := range refs {
		pool.Submit(&EvalJob{
			Ref:       ref,
			Evaluator: b.evaluator,
		})
	}

	results := pool.Wait()

	evalResults := make([]*EvalResult, len(results))
	for i, result := range results {
		evalResults[i] = result.(*EvalResult)
	}

	return evalResults
}

// ProcessFile reads video references from a file and evaluates them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*EvalResult, error) {
	refs, err := ReadRefsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read video references: %w", err)
	}

	return b.ProcessRefs(ctx, refs), nil
}

// ReadRefsFromFile reads video IDs or URLs from a file (one per line)
func ReadRefsFromFile(filePath string) ([]model.VideoReference, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var refs []model.VideoReference
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ref, err := model.ParseVideoReference(line)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}

		// Deduplicate by video ID
		if !seen[ref.ID] {
			seen[ref.ID] = true
			refs = append(refs, ref)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return refs, nil
}
