package model

// EvidenceItem is a retrieved web source used to corroborate or contradict
// claims made in the video.
type EvidenceItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	URL     string `json:"url"`
	Query   string `json:"query,omitempty"` // Search query that surfaced this item
}

// DedupeEvidence removes items sharing a source URL, keeping first occurrence
// order. Repeated sources across queries would bias the evaluation toward a
// single outlet.
func DedupeEvidence(items []EvidenceItem) []EvidenceItem {
	seen := make(map[string]bool, len(items))
	var unique []EvidenceItem
	for _, item := range items {
		if item.URL == "" || seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		unique = append(unique, item)
	}
	return unique
}
