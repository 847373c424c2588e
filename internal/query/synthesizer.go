package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/veritube/internal/llm"
	"github.com/ppiankov/veritube/internal/model"
)

// Synthesizer distills a transcript into a small set of concise,
// fact-checkable search queries via the generative-text service.
type Synthesizer struct {
	provider       llm.Provider
	maxQueries     int
	maxPromptRunes int
	temperature    float32
	maxTokens      int
}

// NewSynthesizer creates a query synthesizer
func NewSynthesizer(provider llm.Provider, cfg *model.Config) *Synthesizer {
	return &Synthesizer{
		provider:       provider,
		maxQueries:     cfg.Pipeline.MaxQueries,
		maxPromptRunes: cfg.Pipeline.MaxPromptRunes,
		temperature:    cfg.LLM.QueryTemperature,
		maxTokens:      cfg.LLM.QueryMaxTokens,
	}
}

const querySystemPrompt = "You are a search query expert specializing in crafting concise, " +
	"fact-based search queries from video transcripts."

// buildPrompt constructs the query-synthesis instruction. The transcript is
// truncated deterministically to its leading window.
func (s *Synthesizer) buildPrompt(transcriptText string) string {
	return fmt.Sprintf(`Analyze the transcript below and produce up to %d short search queries that together cover the main factual claims made in the video. Requirements for each query:
- Focus on verifiable facts: names, dates, figures, events, significant terms.
- Exclude promotional content, advertisements, and filler.
- Use specific keywords reflecting the core message, 3-10 words per query.
- Order queries by importance, most important first.

Respond with one query per line and nothing else. No numbering, no commentary.

Transcript:
%s`, s.maxQueries, llm.TruncateForPrompt(transcriptText, s.maxPromptRunes))
}

// Synthesize returns up to MaxQueries queries in the model's order of
// importance. Zero usable queries is a recoverable condition: the pipeline
// proceeds with an empty set and a degraded report. An unreachable service
// is a model.ErrSynthesisFailure.
func (s *Synthesizer) Synthesize(ctx context.Context, transcriptText string) ([]string, error) {
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System:      querySystemPrompt,
		Prompt:      s.buildPrompt(transcriptText),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("query synthesis: %v: %w", err, model.ErrSynthesisFailure)
	}

	return ParseQueries(resp.Text, s.maxQueries), nil
}

// listPrefixRE strips bullet and numbering decorations the model sometimes
// adds despite instructions.
var listPrefixRE = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// ParseQueries parses a completion line-by-line into discrete queries:
// decorations stripped, blanks and duplicates discarded, response order
// preserved, capped at max.
func ParseQueries(text string, max int) []string {
	seen := make(map[string]bool)
	var queries []string

	for _, line := range strings.Split(text, "\n") {
		q := listPrefixRE.ReplaceAllString(line, "")
		q = strings.Trim(strings.TrimSpace(q), `"'`)
		if q == "" {
			continue
		}

		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true

		queries = append(queries, q)
		if max > 0 && len(queries) == max {
			break
		}
	}

	return queries
}
