package score

import (
	"fmt"

	"github.com/ppiankov/veritube/internal/model"
)

// Scorer derives a transparent confidence assessment from query coverage,
// evidence volume, and how the evaluation parsed. It never judges truth,
// only how well the report's verdicts are backed.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Signal types attached to the assessment
const (
	SignalNoQueries     = "no_queries"
	SignalNoEvidence    = "no_evidence"
	SignalThinEvidence  = "thin_evidence"
	SignalRawFallback   = "raw_fallback"
	SignalUnverifiable  = "unverifiable_majority"
	SignalWellSupported = "well_supported"
)

// Assess produces the confidence level and its supporting signals
func (s *Scorer) Assess(queries []string, evidence []model.EvidenceItem, eval model.Evaluation) model.Assessment {
	var signals []model.Signal
	level := "high"

	if len(queries) == 0 {
		signals = append(signals, model.Signal{
			Type:        SignalNoQueries,
			Description: "query synthesis produced no usable queries; evaluation ran without retrieved evidence",
		})
		level = "low"
	} else if len(evidence) == 0 {
		signals = append(signals, model.Signal{
			Type:        SignalNoEvidence,
			Description: fmt.Sprintf("%d queries returned no evidence items", len(queries)),
		})
		level = "low"
	} else if len(evidence) < 3 {
		signals = append(signals, model.Signal{
			Type:        SignalThinEvidence,
			Description: fmt.Sprintf("only %d distinct sources retrieved", len(evidence)),
		})
		if level == "high" {
			level = "medium"
		}
	}

	if eval.Mode == model.ParseRawFallback {
		signals = append(signals, model.Signal{
			Type:        SignalRawFallback,
			Description: "evaluation output had no recognizable structure; raw text retained",
		})
		level = "low"
	}

	if n := len(eval.FactualPoints); n > 0 {
		unverifiable := 0
		supported := 0
		for _, p := range eval.FactualPoints {
			switch p.Verdict {
			case model.VerdictUnverifiable:
				unverifiable++
			case model.VerdictSupported:
				supported++
			}
		}
		if unverifiable*2 > n {
			signals = append(signals, model.Signal{
				Type:        SignalUnverifiable,
				Description: fmt.Sprintf("%d of %d claims could not be verified against evidence", unverifiable, n),
			})
			if level == "high" {
				level = "medium"
			}
		} else if supported*2 > n {
			signals = append(signals, model.Signal{
				Type:        SignalWellSupported,
				Description: fmt.Sprintf("%d of %d claims supported by retrieved sources", supported, n),
			})
		}
	}

	return model.Assessment{
		Confidence: level,
		Signals:    signals,
	}
}
