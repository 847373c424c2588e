package evaluate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/veritube/internal/llm"
	"github.com/ppiankov/veritube/internal/model"
)

// Synthesizer produces the evidence-grounded judgment: factual claims with
// per-claim verdicts, a bias assessment, and logical-consistency notes.
// Pure function of (transcript, evidence); no state between requests.
type Synthesizer struct {
	provider       llm.Provider
	maxPromptRunes int
	temperature    float32
	maxTokens      int
}

// NewSynthesizer creates an evaluation synthesizer
func NewSynthesizer(provider llm.Provider, cfg *model.Config) *Synthesizer {
	return &Synthesizer{
		provider:       provider,
		maxPromptRunes: cfg.Pipeline.MaxPromptRunes,
		temperature:    cfg.LLM.EvalTemperature,
		maxTokens:      cfg.LLM.EvalMaxTokens,
	}
}

const evalSystemPrompt = "You are an expert fact-checker and media analyst with extensive " +
	"experience in evaluating online video content for accuracy, bias, and logical consistency."

// buildPrompt combines the truncated transcript with the serialized evidence
// list. The sectioned output format keeps parsing tractable without
// demanding strict structure from the model.
func (s *Synthesizer) buildPrompt(transcriptText string, evidence []model.EvidenceItem) string {
	var sb strings.Builder

	sb.WriteString(`Given the transcript of a YouTube video and a list of retrieved sources, analyze the video's content. Ignore promotions, advertisements, and monetization content.

1. Extract the discrete factual claims made in the transcript.
2. Cross-reference each claim against the sources: mark it supported, contradicted, or unverifiable, and cite the source URLs you used.
3. Examine the transcript for bias: selective presentation, omitted viewpoints, emotionally charged language.
4. Assess the logical flow of the argument: fallacies, inconsistencies, gaps in reasoning.

Format your answer with exactly these three sections:

FACTUAL POINTS:
- CLAIM: <the claim> | VERDICT: <supported|contradicted|unverifiable> | SOURCES: <urls, comma-separated, or none>

BIAS ASSESSMENT:
<your analysis>

LOGICAL CONSISTENCY:
<your analysis>

Keep the full answer under 500 words.

Transcript:
`)
	sb.WriteString(llm.TruncateForPrompt(transcriptText, s.maxPromptRunes))
	sb.WriteString("\n\nSources:\n")
	sb.WriteString(SerializeEvidence(evidence))

	return sb.String()
}

// SerializeEvidence renders evidence items for prompt inclusion, one per
// line, mirroring the search result shape
func SerializeEvidence(evidence []model.EvidenceItem) string {
	if len(evidence) == 0 {
		return "(no sources retrieved)"
	}
	var sb strings.Builder
	for _, item := range evidence {
		fmt.Fprintf(&sb, "- %s: %s - %s\n", item.Title, item.URL, item.Snippet)
	}
	return sb.String()
}

// Synthesize runs the evaluation call and parses the response. Service
// failure is a model.ErrSynthesisFailure; unparseable output is not an
// error, the raw text is retained as a fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, transcriptText string, evidence []model.EvidenceItem) (*model.Evaluation, error) {
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System:      evalSystemPrompt,
		Prompt:      s.buildPrompt(transcriptText, evidence),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation synthesis: %v: %w", err, model.ErrSynthesisFailure)
	}

	evaluation := ParseEvaluation(resp.Text)
	return &evaluation, nil
}
