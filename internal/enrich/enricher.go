package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ppiankov/veritube/internal/model"
	"github.com/ppiankov/veritube/internal/util"
	"github.com/ppiankov/veritube/internal/worker"
	"golang.org/x/net/html"
)

// Enricher extends short evidence snippets with visible text from the source
// page. Optional and strictly best-effort: any fetch or parse failure leaves
// the item untouched. Fetches respect robots.txt and the per-host rate
// limiter.
type Enricher struct {
	httpClient      *http.Client
	robots          *util.RobotsChecker
	limiter         *worker.Limiter
	userAgent       string
	maxBytes        int64
	minSnippetRunes int
	maxWorkers      int
}

// Excerpt length appended to short snippets
const excerptRunes = 300

// NewEnricher creates an evidence enricher
func NewEnricher(cfg *model.Config, robots *util.RobotsChecker, limiter *worker.Limiter) *Enricher {
	maxWorkers := cfg.Concurrency.EnrichWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Enricher{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:          robots,
		limiter:         limiter,
		userAgent:       cfg.HTTP.UserAgent,
		maxBytes:        cfg.Enrich.MaxBodyBytes,
		minSnippetRunes: cfg.Enrich.MinSnippetRunes,
		maxWorkers:      maxWorkers,
	}
}

// Enrich returns the items with short snippets extended from their source
// pages where possible. Never fails: on any error the original item is kept.
func (e *Enricher) Enrich(ctx context.Context, items []model.EvidenceItem) []model.EvidenceItem {
	if len(items) == 0 {
		return items
	}

	enriched := make([]model.EvidenceItem, len(items))
	copy(enriched, items)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.maxWorkers)

	for i := range enriched {
		if utf8.RuneCountInString(enriched[i].Snippet) >= e.minSnippetRunes {
			continue
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			if excerpt, err := e.fetchExcerpt(ctx, enriched[idx].URL); err == nil && excerpt != "" {
				if enriched[idx].Snippet == "" {
					enriched[idx].Snippet = excerpt
				} else {
					enriched[idx].Snippet += " … " + excerpt
				}
			}
		}(i)
	}

	wg.Wait()
	return enriched
}

// fetchExcerpt fetches a page and extracts a leading excerpt of its visible
// text
func (e *Enricher) fetchExcerpt(ctx context.Context, pageURL string) (string, error) {
	allowed, crawlDelay, err := e.robots.CanFetch(ctx, pageURL)
	if err != nil || !allowed {
		return "", fmt.Errorf("robots.txt disallows %s", pageURL)
	}

	if e.limiter != nil {
		if err := e.limiter.WaitWithDelay(ctx, pageURL, crawlDelay); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return "", fmt.Errorf("not HTML: %s", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	text := extractVisibleText(doc)
	return leadingRunes(text, excerptRunes), nil
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "header", "footer":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}

// leadingRunes returns the first max runes of text without splitting a rune
func leadingRunes(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := 0
	for i := range text {
		if runes == max {
			return strings.TrimSpace(text[:i])
		}
		runes++
	}
	return text
}
