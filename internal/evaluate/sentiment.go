package evaluate

import (
	"context"
	"fmt"

	"github.com/ppiankov/veritube/internal/llm"
	"github.com/ppiankov/veritube/internal/model"
)

// SentimentClassifier classifies the overall tone of the video from
// transcript text alone. Logically separate from the evaluation synthesizer:
// its output contract is a three-valued enum, and it may run concurrently
// with the evaluation call.
type SentimentClassifier struct {
	provider       llm.Provider
	maxPromptRunes int
}

// NewSentimentClassifier creates a sentiment classifier
func NewSentimentClassifier(provider llm.Provider, cfg *model.Config) *SentimentClassifier {
	return &SentimentClassifier{
		provider:       provider,
		maxPromptRunes: cfg.Pipeline.MaxPromptRunes,
	}
}

// Classify returns the video's overall sentiment. The service answer is
// normalized case-insensitively; anything unrecognized maps to neutral.
func (c *SentimentClassifier) Classify(ctx context.Context, transcriptText string) (model.Sentiment, error) {
	prompt := fmt.Sprintf(`Classify the overall sentiment of the following video transcript.
Respond with exactly one word: positive, neutral, or negative.

Transcript:
%s`, llm.TruncateForPrompt(transcriptText, c.maxPromptRunes))

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   5,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("sentiment classification: %v: %w", err, model.ErrSynthesisFailure)
	}

	return model.ParseSentiment(resp.Text), nil
}
