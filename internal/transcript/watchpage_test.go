package transcript

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const playerJSON = `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"%s/api/timedtext?lang=en","languageCode":"en","name":{"simpleText":"English"}},` +
	`{"baseUrl":"%s/api/timedtext?lang=en-asr","languageCode":"en","kind":"asr","name":{"runs":[{"text":"English (auto-generated)"}]}}` +
	`]}},"playabilityStatus":{"status":"OK"}}`

const timedTextXML = `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.12" dur="2.4">The unemployment rate</text>
  <text start="2.52" dur="1.8">fell to 4% last month</text>
  <text start="4.32" dur="1.0">   </text>
  <text start="5.32" dur="2.0">it&amp;#39;s a record low</text>
</transcript>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") == "" {
			http.Error(w, "missing video ID", http.StatusBadRequest)
			return
		}
		player := fmt.Sprintf(playerJSON, server.URL, server.URL)
		fmt.Fprintf(w, "<html><body><script>var ytInitialPlayerResponse = %s;var other = {};</script></body></html>", player)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, timedTextXML)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestWatchPageListTracks(t *testing.T) {
	server := newTestServer(t)

	source := NewWatchPageSource(server.Client(), "test-agent")
	source.baseURL = server.URL

	tracks, err := source.ListTracks(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].Language != "en" || tracks[0].Kind != "" || tracks[0].Name != "English" {
		t.Errorf("unexpected first track: %+v", tracks[0])
	}
	if tracks[1].Kind != "asr" || tracks[1].Name != "English (auto-generated)" {
		t.Errorf("unexpected second track: %+v", tracks[1])
	}
}

func TestWatchPageListTracks_NoCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"}};</script></html>`)
	}))
	defer server.Close()

	source := NewWatchPageSource(server.Client(), "test-agent")
	source.baseURL = server.URL

	tracks, err := source.ListTracks(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("expected no tracks, got %d", len(tracks))
	}
}

func TestWatchPageListTracks_Unplayable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm your age"}};</script></html>`)
	}))
	defer server.Close()

	source := NewWatchPageSource(server.Client(), "test-agent")
	source.baseURL = server.URL

	_, err := source.ListTracks(context.Background(), "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error for unplayable video")
	}
}

func TestWatchPageListTracks_NoPlayerResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	defer server.Close()

	source := NewWatchPageSource(server.Client(), "test-agent")
	source.baseURL = server.URL

	_, err := source.ListTracks(context.Background(), "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error when player response is missing")
	}
}

func TestWatchPageFetchTrack(t *testing.T) {
	server := newTestServer(t)

	source := NewWatchPageSource(server.Client(), "test-agent")
	source.baseURL = server.URL

	segments, err := source.FetchTrack(context.Background(), Track{
		Language: "en",
		BaseURL:  server.URL + "/api/timedtext?lang=en",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 non-empty segments, got %d", len(segments))
	}
	if segments[0].Text != "The unemployment rate" {
		t.Errorf("unexpected first segment: %q", segments[0].Text)
	}
	if segments[0].Start != 0.12 || segments[0].Duration != 2.4 {
		t.Errorf("unexpected timing: %+v", segments[0])
	}
	// Double-escaped entity resolves all the way to the apostrophe
	if segments[2].Text != "it's a record low" {
		t.Errorf("expected unescaped text, got %q", segments[2].Text)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", `{"a":1};rest`, `{"a":1}`},
		{"nested", `{"a":{"b":{"c":1}}} trailing`, `{"a":{"b":{"c":1}}}`},
		{"braces in strings", `{"a":"}{","b":1};`, `{"a":"}{","b":1}`},
		{"escaped quotes", `{"a":"say \"}\""};`, `{"a":"say \"}\""}`},
		{"not an object", `[1,2,3]`, ""},
		{"unbalanced", `{"a":1`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSONObject([]byte(tt.input))
			if string(got) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, string(got))
			}
		})
	}
}
