package model

import "testing"

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		input string
		want  Sentiment
	}{
		{"positive", SentimentPositive},
		{"Positive", SentimentPositive},
		{"POSITIVE", SentimentPositive},
		{" negative. ", SentimentNegative},
		{"neutral", SentimentNeutral},
		{"mixed", SentimentNeutral}, // unrecognized maps to neutral
		{"somewhat positive", SentimentNeutral},
		{"", SentimentNeutral},
	}

	for _, tt := range tests {
		if got := ParseSentiment(tt.input); got != tt.want {
			t.Errorf("ParseSentiment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		input string
		want  Verdict
	}{
		{"supported", VerdictSupported},
		{"Supported", VerdictSupported},
		{"confirmed", VerdictSupported},
		{"contradicted", VerdictContradicted},
		{"FALSE", VerdictContradicted},
		{"unverifiable", VerdictUnverifiable},
		{"unclear", VerdictUnverifiable},
		{"", VerdictUnverifiable},
	}

	for _, tt := range tests {
		if got := ParseVerdict(tt.input); got != tt.want {
			t.Errorf("ParseVerdict(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDedupeEvidence(t *testing.T) {
	items := []EvidenceItem{
		{Title: "A", URL: "https://example.com/1", Query: "q1"},
		{Title: "B", URL: "https://example.com/2", Query: "q1"},
		{Title: "A again", URL: "https://example.com/1", Query: "q2"},
		{Title: "no URL"},
		{Title: "C", URL: "https://example.com/3", Query: "q2"},
	}

	unique := DedupeEvidence(items)

	if len(unique) != 3 {
		t.Fatalf("expected 3 unique items, got %d", len(unique))
	}

	seen := make(map[string]bool)
	for _, item := range unique {
		if seen[item.URL] {
			t.Errorf("duplicate URL in result: %s", item.URL)
		}
		seen[item.URL] = true
	}

	// First occurrence wins, order preserved
	if unique[0].Title != "A" || unique[1].Title != "B" || unique[2].Title != "C" {
		t.Errorf("unexpected order: %+v", unique)
	}
}
