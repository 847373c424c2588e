package model

import (
	"strings"
	"time"
)

// Verdict classifies how the retrieved evidence relates to a claim.
type Verdict string

const (
	VerdictSupported    Verdict = "supported"
	VerdictContradicted Verdict = "contradicted"
	VerdictUnverifiable Verdict = "unverifiable"
)

// ParseVerdict maps free-text verdict labels to the three-valued enum.
// Unrecognized labels map to unverifiable.
func ParseVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ".,!"))) {
	case "supported", "support", "confirmed", "verified", "true", "accurate":
		return VerdictSupported
	case "contradicted", "contradict", "refuted", "false", "inaccurate", "disputed":
		return VerdictContradicted
	default:
		return VerdictUnverifiable
	}
}

// Sentiment is the overall tone classification of the video.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment maps a free-text classifier answer to the enum,
// case-insensitively. Anything unrecognized maps to neutral, the
// conservative default.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ".,!"))) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// FactualPoint is a discrete claim extracted from the transcript with its
// evidence verdict.
type FactualPoint struct {
	Claim   string   `json:"claim"`
	Verdict Verdict  `json:"verdict"`
	Sources []string `json:"sources,omitempty"` // Evidence URLs backing the verdict
}

// ParseMode tags whether the evaluation text was parsed into structured
// fields or retained as an unstructured fallback.
type ParseMode string

const (
	ParseStructured  ParseMode = "structured"
	ParseRawFallback ParseMode = "raw_fallback"
)

// Evaluation is the evidence-grounded judgment produced by the evaluation
// synthesizer.
type Evaluation struct {
	FactualPoints      []FactualPoint `json:"factual_points"`
	BiasAssessment     string         `json:"bias_assessment,omitempty"`
	LogicalConsistency string         `json:"logical_consistency,omitempty"`
	Mode               ParseMode      `json:"mode"`
	Raw                string         `json:"raw,omitempty"` // Full model output, kept on fallback
}

// Signal is a diagnostic note attached to the confidence assessment.
type Signal struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Assessment summarizes how much weight the report deserves given its
// evidence coverage.
type Assessment struct {
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals,omitempty"`
}

// Report is the assembled response for one evaluation request. Immutable
// after assembly, never persisted across requests.
type Report struct {
	VideoID     string         `json:"video_id"`
	Language    string         `json:"language"` // Transcript language actually used
	EvaluatedAt time.Time      `json:"evaluated_at"`
	Queries     []string       `json:"queries"`
	Evidence    []EvidenceItem `json:"evidence"`
	Evaluation  Evaluation     `json:"evaluation"`
	Sentiment   Sentiment      `json:"sentiment"`
	Assessment  Assessment     `json:"assessment"`

	// Degraded is set when query synthesis produced zero queries or
	// retrieval produced zero items: the evaluation went ahead with reduced
	// or no evidence and should not be read as equally reliable.
	Degraded bool     `json:"degraded"`
	Caveats  []string `json:"caveats,omitempty"`
}
