package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veritube/internal/model"
)

// Renderer writes reports to JSON, Markdown, and a stdout summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Video Evaluation: %s\n\n", report.VideoID)
	fmt.Fprintf(&sb, "- **Transcript language:** %s\n", report.Language)
	fmt.Fprintf(&sb, "- **Evaluated:** %s\n", report.EvaluatedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&sb, "- **Sentiment:** %s\n", report.Sentiment)
	fmt.Fprintf(&sb, "- **Confidence:** %s\n\n", report.Assessment.Confidence)

	if report.Degraded {
		sb.WriteString("> **Caveat:** this report was assembled with degraded evidence coverage.\n")
		for _, c := range report.Caveats {
			fmt.Fprintf(&sb, "> - %s\n", c)
		}
		sb.WriteString("\n")
	}

	if len(report.Queries) > 0 {
		sb.WriteString("## Search Queries\n\n")
		for _, q := range report.Queries {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
		sb.WriteString("\n")
	}

	if report.Evaluation.Mode == model.ParseRawFallback {
		sb.WriteString("## Evaluation (unstructured)\n\n")
		sb.WriteString(report.Evaluation.Raw)
		sb.WriteString("\n\n")
	} else {
		if len(report.Evaluation.FactualPoints) > 0 {
			sb.WriteString("## Factual Points\n\n")
			for _, p := range report.Evaluation.FactualPoints {
				fmt.Fprintf(&sb, "- **%s**: %s", p.Verdict, p.Claim)
				if len(p.Sources) > 0 {
					fmt.Fprintf(&sb, " (%s)", strings.Join(p.Sources, ", "))
				}
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
		if report.Evaluation.BiasAssessment != "" {
			sb.WriteString("## Bias Assessment\n\n")
			sb.WriteString(report.Evaluation.BiasAssessment)
			sb.WriteString("\n\n")
		}
		if report.Evaluation.LogicalConsistency != "" {
			sb.WriteString("## Logical Consistency\n\n")
			sb.WriteString(report.Evaluation.LogicalConsistency)
			sb.WriteString("\n\n")
		}
	}

	if len(report.Evidence) > 0 {
		sb.WriteString("## Evidence\n\n")
		for _, e := range report.Evidence {
			fmt.Fprintf(&sb, "- [%s](%s)", e.Title, e.URL)
			if e.Snippet != "" {
				fmt.Fprintf(&sb, " - %s", e.Snippet)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if r.includeFooter {
		sb.WriteString("---\n*Generated by veritube. Verdicts describe evidence support, not truth.*\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a short summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\n")
	fmt.Printf("Video:      %s (transcript: %s)\n", report.VideoID, report.Language)
	fmt.Printf("Queries:    %d\n", len(report.Queries))
	fmt.Printf("Evidence:   %d sources\n", len(report.Evidence))
	fmt.Printf("Claims:     %d\n", len(report.Evaluation.FactualPoints))
	fmt.Printf("Sentiment:  %s\n", report.Sentiment)
	fmt.Printf("Confidence: %s\n", report.Assessment.Confidence)
	if report.Degraded {
		fmt.Printf("\n⚠ Degraded evidence coverage:\n")
		for _, c := range report.Caveats {
			fmt.Printf("  - %s\n", c)
		}
	}
	fmt.Printf("\n")
}
