package transcript

import (
	"context"
	"fmt"

	"github.com/ppiankov/veritube/internal/model"
)

// Track describes one caption track a video offers.
type Track struct {
	Language string // BCP-47 language code, e.g. "en"
	Name     string // Human-readable track name
	Kind     string // "asr" for auto-generated tracks, empty for manual
	BaseURL  string // Source-specific fetch locator
}

// Source defines the interface for a transcript backend. The production
// implementation scrapes the watch page; tests substitute fakes.
type Source interface {
	// ListTracks returns the caption tracks available for a video.
	ListTracks(ctx context.Context, videoID string) ([]Track, error)

	// FetchTrack fetches and parses one track into timed segments.
	FetchTrack(ctx context.Context, track Track) ([]model.Segment, error)
}

// Provider fetches a video's transcript, preferring configured languages and
// falling back across whatever the source lists. No caching: each evaluation
// is a fresh fetch.
type Provider struct {
	source    Source
	languages []string
}

// NewProvider creates a transcript provider with the given language
// preference order.
func NewProvider(source Source, languages []string) *Provider {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &Provider{
		source:    source,
		languages: languages,
	}
}

// Fetch returns the transcript for a video or fails with
// model.ErrTranscriptUnavailable when no track in any language can be
// fetched.
func (p *Provider) Fetch(ctx context.Context, ref model.VideoReference) (*model.Transcript, error) {
	tracks, err := p.source.ListTracks(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("list tracks for %s: %v: %w", ref.ID, err, model.ErrTranscriptUnavailable)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no caption tracks for %s: %w", ref.ID, model.ErrTranscriptUnavailable)
	}

	for _, track := range orderTracks(tracks, p.languages) {
		segments, err := p.source.FetchTrack(ctx, track)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue // Try the next available track
		}

		transcript := &model.Transcript{
			VideoID:   ref.ID,
			Language:  track.Language,
			Segments:  segments,
			Available: true,
		}
		if transcript.Text() == "" {
			continue // Empty track, keep falling back
		}
		return transcript, nil
	}

	return nil, fmt.Errorf("no fetchable transcript for %s: %w", ref.ID, model.ErrTranscriptUnavailable)
}

// orderTracks sorts tracks by preference: manual tracks in a preferred
// language first, then auto-generated tracks in a preferred language, then
// everything else in listing order.
func orderTracks(tracks []Track, languages []string) []Track {
	ordered := make([]Track, 0, len(tracks))
	taken := make([]bool, len(tracks))

	// 1. Manual track in preferred language
	for _, lang := range languages {
		for i, t := range tracks {
			if !taken[i] && t.Language == lang && t.Kind != "asr" {
				ordered = append(ordered, t)
				taken[i] = true
			}
		}
	}

	// 2. Auto-generated track in preferred language
	for _, lang := range languages {
		for i, t := range tracks {
			if !taken[i] && t.Language == lang {
				ordered = append(ordered, t)
				taken[i] = true
			}
		}
	}

	// 3. Any remaining track, listing order
	for i, t := range tracks {
		if !taken[i] {
			ordered = append(ordered, t)
		}
	}

	return ordered
}
