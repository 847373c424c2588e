package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/veritube/internal/model"
)

// WatchPageSource lists and fetches caption tracks by scraping the YouTube
// watch page: the embedded player response carries the caption track list,
// and each track is plain timedtext XML.
type WatchPageSource struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxBytes   int64
}

// playerResponseMarker marks the start of the player response JSON in watch
// page HTML.
const playerResponseMarker = "ytInitialPlayerResponse = "

const watchPageMaxBytes = 6 * 1024 * 1024

// NewWatchPageSource creates a watch-page transcript source
func NewWatchPageSource(httpClient *http.Client, userAgent string) *WatchPageSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WatchPageSource{
		httpClient: httpClient,
		baseURL:    "https://www.youtube.com",
		userAgent:  userAgent,
		maxBytes:   watchPageMaxBytes,
	}
}

// playerResponse mirrors the slice of the player JSON we need
type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated
	Name         struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
}

func (t captionTrack) displayName() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var sb strings.Builder
	for _, run := range t.Name.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// ListTracks fetches the watch page and extracts the caption track list
func (s *WatchPageSource) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	watchURL := s.baseURL + "/watch?v=" + videoID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("watch page status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		return nil, errors.New("player response not found in watch page")
	}
	jsonData := extractJSONObject(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract player response JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}
		return nil, nil // Video exists but has no captions
	}

	raw := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		if t.BaseURL == "" {
			continue
		}
		tracks = append(tracks, Track{
			Language: t.LanguageCode,
			Name:     t.displayName(),
			Kind:     t.Kind,
			BaseURL:  t.BaseURL,
		})
	}
	return tracks, nil
}

// timedText mirrors the caption XML: <transcript><text start dur>…</text>
type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Text     string  `xml:",chardata"`
}

// FetchTrack fetches a caption track's timedtext XML and parses it into
// timed segments
func (s *WatchPageSource) FetchTrack(ctx context.Context, track Track) ([]model.Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("timedtext status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, fmt.Errorf("read timedtext: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]model.Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		// Caption text arrives double-escaped (&amp;#39; etc.)
		text := strings.TrimSpace(html.UnescapeString(html.UnescapeString(line.Text)))
		if text == "" {
			continue
		}
		segments = append(segments, model.Segment{
			Start:    line.Start,
			Duration: line.Duration,
			Text:     text,
		})
	}
	return segments, nil
}

// extractJSONObject returns the balanced top-level JSON object at the start
// of data, honoring string literals and escapes
func extractJSONObject(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	depth := 0
	inString := false
	escaped := false

	for i, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return data[:i+1]
			}
		}
	}
	return nil
}
