package evaluate

import (
	"regexp"
	"strings"

	"github.com/ppiankov/veritube/internal/model"
)

// Section splitting for the evaluation response. The generative service is
// not guaranteed to emit strict structure, so header matching is tolerant of
// markdown decorations, numbering, and the longer headings some models
// prefer. When no recognizable section is found the raw text is retained
// rather than discarded.

type section int

const (
	sectionNone section = iota
	sectionFactual
	sectionBias
	sectionLogic
)

var (
	// Optional leading markdown/numbering decorations before a heading
	headerDecorRE = regexp.MustCompile(`^\s*(?:#+\s*|\*\*\s*|\d+[.)]\s*)*`)

	factualHeaderRE = regexp.MustCompile(`(?i)^(?:key\s+)?factual\s+(?:points?|claims?|assertions?)\b`)
	biasHeaderRE    = regexp.MustCompile(`(?i)^bias(?:\s+(?:assessment|analysis)|\s+and\s+representation(?:\s+analysis)?)?\b`)
	logicHeaderRE   = regexp.MustCompile(`(?i)^logical\s+(?:consistency|flow)(?:\s+(?:notes|and\s+reasoning))?\b`)

	claimTagRE   = regexp.MustCompile(`(?i)claim\s*:\s*`)
	verdictTagRE = regexp.MustCompile(`(?i)verdict\s*:\s*([a-z]+)`)
	sourcesTagRE = regexp.MustCompile(`(?i)sources?\s*:\s*(.*)`)
	urlRE        = regexp.MustCompile(`https?://[^\s,|\)\]]+`)
	bulletRE     = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
)

// classifyHeader reports which section a line opens, if any. A heading only
// counts when followed by a colon or the end of the line; prose that merely
// starts with "Bias" stays content.
func classifyHeader(line string) (section, bool) {
	stripped := headerDecorRE.ReplaceAllString(line, "")
	for _, h := range []struct {
		re  *regexp.Regexp
		sec section
	}{
		{factualHeaderRE, sectionFactual},
		{biasHeaderRE, sectionBias},
		{logicHeaderRE, sectionLogic},
	} {
		loc := h.re.FindStringIndex(stripped)
		if loc == nil {
			continue
		}
		rest := strings.TrimLeft(stripped[loc[1]:], "* ")
		if rest == "" || strings.HasPrefix(rest, ":") {
			return h.sec, true
		}
	}
	return sectionNone, false
}

// ParseEvaluation splits the model's free-text response into structured
// fields. Best-effort: minor formatting variance is tolerated, and a
// response with no recognizable sections comes back tagged RawFallback with
// the full text retained.
func ParseEvaluation(text string) model.Evaluation {
	var (
		points     []model.FactualPoint
		biasLines  []string
		logicLines []string
	)

	current := sectionNone
	sawHeader := false

	for _, line := range strings.Split(text, "\n") {
		if sec, ok := classifyHeader(line); ok {
			current = sec
			sawHeader = true
			// Content may follow the header on the same line
			line = afterHeaderColon(line)
			if line == "" {
				continue
			}
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch current {
		case sectionFactual:
			if point, ok := parseFactualLine(trimmed); ok {
				points = append(points, point)
			}
		case sectionBias:
			biasLines = append(biasLines, trimmed)
		case sectionLogic:
			logicLines = append(logicLines, trimmed)
		}
	}

	if !sawHeader {
		return model.Evaluation{
			Mode: model.ParseRawFallback,
			Raw:  strings.TrimSpace(text),
		}
	}

	return model.Evaluation{
		FactualPoints:      points,
		BiasAssessment:     strings.Join(biasLines, "\n"),
		LogicalConsistency: strings.Join(logicLines, "\n"),
		Mode:               model.ParseStructured,
	}
}

// afterHeaderColon returns any content following the header's colon on the
// same line, with trailing markdown decorations stripped
func afterHeaderColon(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(strings.TrimRight(line[idx+1:], "* "))
	}
	return ""
}

// parseFactualLine extracts one factual point from a bullet line. Handles
// the requested "CLAIM: … | VERDICT: … | SOURCES: …" shape and degrades to
// treating the whole line as an unverifiable claim when the tags are
// missing.
func parseFactualLine(line string) (model.FactualPoint, bool) {
	line = bulletRE.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)
	if line == "" {
		return model.FactualPoint{}, false
	}

	point := model.FactualPoint{Verdict: model.VerdictUnverifiable}

	if verdictTagRE.MatchString(line) {
		m := verdictTagRE.FindStringSubmatch(line)
		point.Verdict = model.ParseVerdict(m[1])
	}
	if m := sourcesTagRE.FindStringSubmatch(line); m != nil {
		point.Sources = urlRE.FindAllString(m[1], -1)
	}

	claim := line
	if loc := claimTagRE.FindStringIndex(line); loc != nil {
		claim = line[loc[1]:]
	}
	// Claim text runs to the first field separator
	if idx := strings.IndexAny(claim, "|"); idx >= 0 {
		claim = claim[:idx]
	}
	claim = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(claim), "."))
	if claim == "" {
		return model.FactualPoint{}, false
	}

	point.Claim = claim
	return point, true
}
