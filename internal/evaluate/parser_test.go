package evaluate

import (
	"strings"
	"testing"

	"github.com/ppiankov/veritube/internal/model"
)

const structuredResponse = `FACTUAL POINTS:
- CLAIM: The unemployment rate fell to 4% in April | VERDICT: supported | SOURCES: https://bls.gov/report, https://news.example.com/a
- CLAIM: Inflation hit 20% last year | VERDICT: contradicted | SOURCES: https://bls.gov/cpi
- CLAIM: The speaker met the chairman privately | VERDICT: unverifiable | SOURCES: none

BIAS ASSESSMENT:
The video presents only one side of the policy debate and uses charged
language when describing opponents.

LOGICAL CONSISTENCY:
The argument is mostly coherent, but the conclusion overreaches the
presented evidence.`

func TestParseEvaluation_Structured(t *testing.T) {
	eval := ParseEvaluation(structuredResponse)

	if eval.Mode != model.ParseStructured {
		t.Fatalf("expected structured mode, got %v", eval.Mode)
	}
	if len(eval.FactualPoints) != 3 {
		t.Fatalf("expected 3 factual points, got %d: %+v", len(eval.FactualPoints), eval.FactualPoints)
	}

	p := eval.FactualPoints[0]
	if p.Claim != "The unemployment rate fell to 4% in April" {
		t.Errorf("unexpected claim: %q", p.Claim)
	}
	if p.Verdict != model.VerdictSupported {
		t.Errorf("expected supported, got %s", p.Verdict)
	}
	if len(p.Sources) != 2 || p.Sources[0] != "https://bls.gov/report" {
		t.Errorf("unexpected sources: %v", p.Sources)
	}

	if eval.FactualPoints[1].Verdict != model.VerdictContradicted {
		t.Errorf("expected contradicted, got %s", eval.FactualPoints[1].Verdict)
	}
	if eval.FactualPoints[2].Verdict != model.VerdictUnverifiable {
		t.Errorf("expected unverifiable, got %s", eval.FactualPoints[2].Verdict)
	}
	if len(eval.FactualPoints[2].Sources) != 0 {
		t.Errorf("expected no sources, got %v", eval.FactualPoints[2].Sources)
	}

	if !strings.Contains(eval.BiasAssessment, "one side of the policy debate") {
		t.Errorf("unexpected bias assessment: %q", eval.BiasAssessment)
	}
	if !strings.Contains(eval.LogicalConsistency, "conclusion overreaches") {
		t.Errorf("unexpected logical consistency: %q", eval.LogicalConsistency)
	}
}

func TestParseEvaluation_MarkdownDecoratedHeaders(t *testing.T) {
	text := `## **Key Factual Points:**
1. CLAIM: The earth orbits the sun | VERDICT: Supported | SOURCES: https://nasa.gov/x

### Bias and Representation Analysis:
Minimal bias detected.

**Logical Consistency:**
Sound throughout.`

	eval := ParseEvaluation(text)

	if eval.Mode != model.ParseStructured {
		t.Fatalf("expected structured mode, got %v", eval.Mode)
	}
	if len(eval.FactualPoints) != 1 {
		t.Fatalf("expected 1 factual point, got %d", len(eval.FactualPoints))
	}
	if eval.FactualPoints[0].Verdict != model.VerdictSupported {
		t.Errorf("expected supported, got %s", eval.FactualPoints[0].Verdict)
	}
	if eval.BiasAssessment != "Minimal bias detected." {
		t.Errorf("unexpected bias assessment: %q", eval.BiasAssessment)
	}
	if eval.LogicalConsistency != "Sound throughout." {
		t.Errorf("unexpected logical consistency: %q", eval.LogicalConsistency)
	}
}

func TestParseEvaluation_UntaggedFactualLines(t *testing.T) {
	text := `FACTUAL POINTS:
- The moon landing happened in 1969
- Water boils at 100 degrees Celsius at sea level

BIAS ASSESSMENT:
None observed.`

	eval := ParseEvaluation(text)

	if eval.Mode != model.ParseStructured {
		t.Fatalf("expected structured mode, got %v", eval.Mode)
	}
	if len(eval.FactualPoints) != 2 {
		t.Fatalf("expected 2 factual points, got %d", len(eval.FactualPoints))
	}
	for _, p := range eval.FactualPoints {
		if p.Verdict != model.VerdictUnverifiable {
			t.Errorf("untagged line should default to unverifiable, got %s", p.Verdict)
		}
	}
	if eval.FactualPoints[0].Claim != "The moon landing happened in 1969" {
		t.Errorf("unexpected claim: %q", eval.FactualPoints[0].Claim)
	}
}

func TestParseEvaluation_ProseMentioningBiasIsNotAHeader(t *testing.T) {
	text := `FACTUAL POINTS:
- CLAIM: X | VERDICT: supported | SOURCES: none

BIAS ASSESSMENT:
Bias is minimal in this video.
The presenter cites both sides.`

	eval := ParseEvaluation(text)

	if eval.Mode != model.ParseStructured {
		t.Fatalf("expected structured mode, got %v", eval.Mode)
	}
	want := "Bias is minimal in this video.\nThe presenter cites both sides."
	if eval.BiasAssessment != want {
		t.Errorf("expected both prose lines kept, got %q", eval.BiasAssessment)
	}
}

func TestParseEvaluation_RawFallback(t *testing.T) {
	text := `The video makes a number of claims that are hard to verify. Overall it
seems reasonably balanced, though the speaker leans on anecdote.`

	eval := ParseEvaluation(text)

	if eval.Mode != model.ParseRawFallback {
		t.Fatalf("expected raw fallback mode, got %v", eval.Mode)
	}
	if eval.Raw == "" || !strings.Contains(eval.Raw, "hard to verify") {
		t.Errorf("expected raw text retained, got %q", eval.Raw)
	}
	if len(eval.FactualPoints) != 0 {
		t.Errorf("expected no factual points, got %+v", eval.FactualPoints)
	}
}

func TestParseEvaluation_Empty(t *testing.T) {
	eval := ParseEvaluation("")

	if eval.Mode != model.ParseRawFallback {
		t.Fatalf("expected raw fallback mode, got %v", eval.Mode)
	}
	if eval.Raw != "" {
		t.Errorf("expected empty raw, got %q", eval.Raw)
	}
}

func TestParseFactualLine(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantClaim   string
		wantVerdict model.Verdict
		wantOK      bool
	}{
		{
			name:        "full tagged line",
			input:       "- CLAIM: Rates rose | VERDICT: supported | SOURCES: https://a.example/1",
			wantClaim:   "Rates rose",
			wantVerdict: model.VerdictSupported,
			wantOK:      true,
		},
		{
			name:        "lowercase tags",
			input:       "- claim: Rates rose | verdict: Contradicted | sources: none",
			wantClaim:   "Rates rose",
			wantVerdict: model.VerdictContradicted,
			wantOK:      true,
		},
		{
			name:        "bare claim",
			input:       "Rates rose sharply.",
			wantClaim:   "Rates rose sharply",
			wantVerdict: model.VerdictUnverifiable,
			wantOK:      true,
		},
		{
			name:   "empty bullet",
			input:  "- ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, ok := parseFactualLine(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if point.Claim != tt.wantClaim {
				t.Errorf("expected claim %q, got %q", tt.wantClaim, point.Claim)
			}
			if point.Verdict != tt.wantVerdict {
				t.Errorf("expected verdict %s, got %s", tt.wantVerdict, point.Verdict)
			}
		})
	}
}
