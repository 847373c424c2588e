package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ppiankov/veritube/internal/cache"
	"github.com/ppiankov/veritube/internal/enrich"
	"github.com/ppiankov/veritube/internal/evaluate"
	"github.com/ppiankov/veritube/internal/evidence"
	"github.com/ppiankov/veritube/internal/llm"
	"github.com/ppiankov/veritube/internal/model"
	"github.com/ppiankov/veritube/internal/query"
	"github.com/ppiankov/veritube/internal/score"
	"github.com/ppiankov/veritube/internal/search"
	"github.com/ppiankov/veritube/internal/transcript"
	"github.com/ppiankov/veritube/internal/util"
	"github.com/ppiankov/veritube/internal/worker"
)

// Pipeline orchestrates one evaluation request: transcript → queries →
// evidence, then evaluation and sentiment concurrently, then assembly.
// Stateless across requests; all state is request-scoped.
type Pipeline struct {
	transcripts *transcript.Provider
	queries     *query.Synthesizer
	retriever   *evidence.Retriever
	evaluator   *evaluate.Synthesizer
	sentiment   *evaluate.SentimentClassifier
	enricher    *enrich.Enricher // nil when enrichment is disabled
	scorer      *score.Scorer
	config      *model.Config
}

// New creates a pipeline wired to the real external services
func New(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)

	searchOpts := []search.GoogleOption{search.WithLimiter(limiter)}
	if cfg.Search.BaseURL != "" {
		searchOpts = append(searchOpts, search.WithBaseURL(cfg.Search.BaseURL))
	}
	if cfg.Cache.Enabled {
		memCache := cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
		searchOpts = append(searchOpts, search.WithCache(memCache, cfg.Cache.TTL))
	}
	searcher, err := search.NewGoogleClient(cfg.Search.APIKey, cfg.Search.EngineID, cfg.HTTP, searchOpts...)
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}

	source := transcript.NewWatchPageSource(&http.Client{Timeout: cfg.HTTP.Timeout}, cfg.HTTP.UserAgent)

	p := NewWithServices(cfg, source, provider, searcher)

	if cfg.Enrich.Enabled {
		robots := util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
		p.enricher = enrich.NewEnricher(cfg, robots, limiter)
	}

	return p, nil
}

// NewWithServices creates a pipeline from explicit capability interfaces.
// Tests substitute fakes here instead of binding the concrete services.
func NewWithServices(cfg *model.Config, source transcript.Source, provider llm.Provider, searcher search.Searcher) *Pipeline {
	return &Pipeline{
		transcripts: transcript.NewProvider(source, cfg.Transcript.Languages),
		queries:     query.NewSynthesizer(provider, cfg),
		retriever:   evidence.NewRetriever(searcher, cfg.Search.ResultsPerQuery, cfg.Concurrency.SearchWorkers),
		evaluator:   evaluate.NewSynthesizer(provider, cfg),
		sentiment:   evaluate.NewSentimentClassifier(provider, cfg),
		scorer:      score.NewScorer(),
		config:      cfg,
	}
}

// Evaluate runs the full pipeline for one video. The request-level timeout
// aborts everything in flight and surfaces a single error naming the failed
// stage; degraded upstream coverage sets the report's caveat flag instead of
// failing.
func (p *Pipeline) Evaluate(ctx context.Context, ref model.VideoReference) (*model.Report, error) {
	if p.config.Pipeline.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Pipeline.Timeout)
		defer cancel()
	}

	// 1. Transcript (must complete before any generative or search call)
	tr, err := p.transcripts.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("transcript provider: %w", err)
	}
	transcriptText := tr.Text()

	// 2. Query synthesis (zero queries is recoverable, service failure is not)
	queries, err := p.queries.Synthesize(ctx, transcriptText)
	if err != nil {
		return nil, fmt.Errorf("query synthesizer: %w", err)
	}

	// 3. Evidence retrieval (per-query failures tolerated)
	items, err := p.retriever.Retrieve(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("evidence retriever: %w", err)
	}

	// 4. Optional snippet enrichment, best-effort
	if p.enricher != nil {
		items = p.enricher.Enrich(ctx, items)
	}

	// 5. Evaluation and sentiment are independent; run them concurrently
	var (
		wg           sync.WaitGroup
		evaluation   *model.Evaluation
		evalErr      error
		sentimentVal model.Sentiment
		sentimentErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		evaluation, evalErr = p.evaluator.Synthesize(ctx, transcriptText, items)
	}()
	go func() {
		defer wg.Done()
		sentimentVal, sentimentErr = p.sentiment.Classify(ctx, transcriptText)
	}()
	wg.Wait()

	if evalErr != nil {
		return nil, fmt.Errorf("evaluation synthesizer: %w", evalErr)
	}
	if sentimentErr != nil {
		return nil, fmt.Errorf("sentiment classifier: %w", sentimentErr)
	}

	// 6. Assembly
	return p.assemble(ref, tr, queries, items, *evaluation, sentimentVal), nil
}

// assemble merges the stage outputs into the final report and flags
// degraded coverage
func (p *Pipeline) assemble(ref model.VideoReference, tr *model.Transcript, queries []string, items []model.EvidenceItem, evaluation model.Evaluation, sentiment model.Sentiment) *model.Report {
	var caveats []string
	degraded := false

	if len(queries) == 0 {
		degraded = true
		caveats = append(caveats, "no usable search queries could be synthesized; claims were not checked against retrieved evidence")
	} else if len(items) == 0 {
		degraded = true
		caveats = append(caveats, "searches returned no evidence items; verdicts rely on the model alone")
	}
	if evaluation.Mode == model.ParseRawFallback {
		degraded = true
		caveats = append(caveats, "evaluation output had no recognizable structure and is retained as raw text")
	}

	return &model.Report{
		VideoID:     ref.ID,
		Language:    tr.Language,
		EvaluatedAt: time.Now().UTC(),
		Queries:     queries,
		Evidence:    items,
		Evaluation:  evaluation,
		Sentiment:   sentiment,
		Assessment:  p.scorer.Assess(queries, items, evaluation),
		Degraded:    degraded,
		Caveats:     caveats,
	}
}
