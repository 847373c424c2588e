package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// VideoReference identifies a target video. Immutable, created per request.
type VideoReference struct {
	ID  string `json:"id"`  // Canonical 11-character video ID
	Raw string `json:"raw"` // Original input (URL or bare ID)
}

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoReference accepts a bare video ID, a watch URL, a youtu.be short
// link, or a /shorts/ link and returns a canonical reference.
func ParseVideoReference(raw string) (VideoReference, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return VideoReference{}, fmt.Errorf("empty video reference")
	}

	if videoIDRE.MatchString(trimmed) {
		return VideoReference{ID: trimmed, Raw: raw}, nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return VideoReference{}, fmt.Errorf("parse video reference: %w", err)
	}

	var id string
	switch {
	case strings.HasSuffix(parsed.Host, "youtu.be"):
		id = strings.Trim(parsed.Path, "/")
	case strings.Contains(parsed.Path, "/shorts/"):
		id = strings.TrimPrefix(parsed.Path, "/shorts/")
		id = strings.Trim(id, "/")
	default:
		id = parsed.Query().Get("v")
	}

	if !videoIDRE.MatchString(id) {
		return VideoReference{}, fmt.Errorf("no video ID found in %q", raw)
	}

	return VideoReference{ID: id, Raw: raw}, nil
}

// Segment is a single timed transcript entry.
type Segment struct {
	Start    float64 `json:"start"`    // Seconds from video start
	Duration float64 `json:"duration"` // Seconds
	Text     string  `json:"text"`
}

// Transcript is the ordered sequence of timed segments for one video.
// Invariant: Text() is non-empty iff Available is true.
type Transcript struct {
	VideoID   string    `json:"video_id"`
	Language  string    `json:"language"` // BCP-47 language code of the fetched track
	Segments  []Segment `json:"segments"`
	Available bool      `json:"available"`
}

// Text collapses the segments into a single normalized blob: timing stripped,
// segments joined with a single space.
func (t Transcript) Text() string {
	var sb strings.Builder
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}
