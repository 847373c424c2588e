package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/veritube/internal/cache"
	"github.com/ppiankov/veritube/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:   5 * time.Second,
		UserAgent: "test-agent",
	}
}

func TestGoogleClientSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "test-key" || q.Get("cx") != "test-cx" {
			http.Error(w, "bad credentials", http.StatusForbidden)
			return
		}
		if q.Get("q") != "unemployment rate 2024" {
			t.Errorf("unexpected query: %q", q.Get("q"))
		}
		if q.Get("num") != "5" {
			t.Errorf("unexpected num: %q", q.Get("num"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"title":"BLS Report","link":"https://bls.gov/report","snippet":"The rate fell to 4%"},
			{"title":"No link item","snippet":"dropped"},
			{"title":"News","link":"https://news.example.com/a","snippet":"analysis"}
		]}`)
	}))
	defer server.Close()

	client, err := NewGoogleClient("test-key", "test-cx", testHTTPConfig(), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := client.Search(context.Background(), "unemployment rate 2024", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items (link-less dropped), got %d", len(items))
	}
	if items[0].Title != "BLS Report" || items[0].URL != "https://bls.gov/report" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Query != "unemployment rate 2024" {
		t.Errorf("expected query annotation, got %q", items[0].Query)
	}
}

func TestGoogleClientSearch_LimitClamped(t *testing.T) {
	var gotNum string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotNum = r.URL.Query().Get("num")
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	client, err := NewGoogleClient("k", "cx", testHTTPConfig(), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := client.Search(context.Background(), "q", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotNum != "10" {
		t.Errorf("expected num clamped to 10, got %s", gotNum)
	}

	if _, err := client.Search(context.Background(), "q", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotNum != "5" {
		t.Errorf("expected default num 5, got %s", gotNum)
	}
}

func TestGoogleClientSearch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"Daily Limit Exceeded"}}`)
	}))
	defer server.Close()

	client, err := NewGoogleClient("k", "cx", testHTTPConfig(), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.Search(context.Background(), "q", 5)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	var se *statusError
	if !errors.As(err, &se) {
		t.Fatalf("expected statusError, got %T: %v", err, err)
	}
	if se.code != http.StatusForbidden {
		t.Errorf("expected code 403, got %d", se.code)
	}
}

func TestGoogleClientSearch_RetriesTransientFailures(t *testing.T) {
	originalSleep := searchSleepFunc
	searchSleepFunc = func(time.Duration) {}
	defer func() { searchSleepFunc = originalSleep }()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"items":[{"title":"T","link":"https://example.com","snippet":"s"}]}`)
	}))
	defer server.Close()

	client, err := NewGoogleClient("k", "cx", testHTTPConfig(), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := client.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestGoogleClientSearch_NoRetryOnClientError(t *testing.T) {
	originalSleep := searchSleepFunc
	searchSleepFunc = func(time.Duration) {}
	defer func() { searchSleepFunc = originalSleep }()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"Invalid Value"}}`)
	}))
	defer server.Close()

	client, err := NewGoogleClient("k", "cx", testHTTPConfig(), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := client.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected single attempt for 400, got %d", n)
	}
}

func TestGoogleClientSearch_CacheHit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"items":[{"title":"Cached","link":"https://example.com/c","snippet":"s"}]}`)
	}))
	defer server.Close()

	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	client, err := NewGoogleClient("k", "cx", testHTTPConfig(),
		WithBaseURL(server.URL),
		WithCache(mem, time.Minute),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		items, err := client.Search(context.Background(), "same query", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 || items[0].Title != "Cached" {
			t.Errorf("unexpected items: %+v", items)
		}
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 upstream call with cache, got %d", n)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"429", &statusError{code: 429}, true},
		{"500", &statusError{code: 500}, true},
		{"503", &statusError{code: 503}, true},
		{"403", &statusError{code: 403}, false},
		{"400", &statusError{code: 400}, false},
		{"timeout", errors.New("context deadline exceeded (Client.Timeout)"), true},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"other", errors.New("no such host"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
