package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tributary/app/database"
)

// RefreshResult summarizes one refresh pass. Errors holds one message per
// source that failed; a partially failed pass is still a success.
type RefreshResult struct {
	Added  int      `json:"new_articles"`
	Errors []string `json:"errors,omitempty"`
}

type fetchOutcome struct {
	source database.Source
	result *FetchResult
	parsed *ParsedFeed
	err    error
}

// Orchestrator drives refresh passes: sources are fetched and parsed on a
// bounded worker pool, then reconciled against the database serially in a
// single transaction.
type Orchestrator struct {
	store    Store
	client   FetchClient
	parser   *Parser
	ingestor *Ingestor
	workers  int

	mu sync.Mutex
}

func NewOrchestrator(store Store, client FetchClient, parser *Parser, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		store:    store,
		client:   client,
		parser:   parser,
		ingestor: NewIngestor(),
		workers:  workers,
	}
}

// RefreshAll refreshes every active source. force skips conditional request
// tokens so every feed is re-downloaded. Returns an error only when no
// source could be refreshed at all.
func (o *Orchestrator) RefreshAll(ctx context.Context, force bool) (*RefreshResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sources, err := o.store.ListActiveSources()
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	if len(sources) == 0 {
		return &RefreshResult{}, nil
	}

	started := time.Now()
	outcomes := o.fetchAll(ctx, sources, force)
	result, err := o.reconcile(outcomes)
	if err != nil {
		return nil, err
	}

	if len(result.Errors) == len(sources) {
		return result, errors.New("all sources failed to refresh")
	}

	slog.Info("Refresh finished",
		"sources", len(sources), "added", result.Added,
		"errors", len(result.Errors), "elapsed", time.Since(started).Round(time.Millisecond))

	return result, nil
}

// RefreshSource refreshes a single source, always bypassing cache tokens.
func (o *Orchestrator) RefreshSource(ctx context.Context, source *database.Source) (*RefreshResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	outcome := o.fetchOne(ctx, *source, true)
	result, err := o.reconcile([]fetchOutcome{outcome})
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return result, errors.New(result.Errors[0])
	}
	return result, nil
}

// fetchAll fans the sources out over the worker pool and returns outcomes in
// source order.
func (o *Orchestrator) fetchAll(ctx context.Context, sources []database.Source, force bool) []fetchOutcome {
	jobs := make(chan int)
	outcomes := make([]fetchOutcome, len(sources))

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = o.fetchOne(ctx, sources[idx], force)
			}
		}()
	}

	for idx := range sources {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func (o *Orchestrator) fetchOne(ctx context.Context, source database.Source, force bool) fetchOutcome {
	outcome := fetchOutcome{source: source}

	tokens := CacheTokens{ETag: source.ETag, LastModified: source.LastModified}
	if force {
		tokens = CacheTokens{}
	}

	result, err := o.client.Fetch(ctx, source.URL, tokens)
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.result = result

	if result.NotModified {
		return outcome
	}
	if result.StatusCode != http.StatusOK {
		outcome.err = fmt.Errorf("status %d", result.StatusCode)
		return outcome
	}

	parsed, err := o.parser.Parse(result.Body)
	if err != nil {
		outcome.err = err
		return outcome
	}
	if !parsed.Viable() {
		outcome.err = errors.New("feed has no entries")
		return outcome
	}
	outcome.parsed = parsed

	return outcome
}

// reconcile applies the fetch outcomes inside one transaction: new articles
// are ingested, cache tokens are updated on every 200 response, 304s are
// left untouched.
func (o *Orchestrator) reconcile(outcomes []fetchOutcome) (*RefreshResult, error) {
	result := &RefreshResult{}

	err := o.store.RunInTx(func(sources SourceStore, articles ArticleStore) error {
		for i := range outcomes {
			outcome := &outcomes[i]

			if outcome.err != nil {
				msg := fmt.Sprintf("Error fetching %s: %s", outcome.source.Title, outcome.err)
				result.Errors = append(result.Errors, msg)
				slog.Warn("Source refresh failed", "source", outcome.source.Title, "error", outcome.err)
				continue
			}
			if outcome.result == nil || outcome.result.NotModified {
				continue
			}

			if outcome.parsed != nil {
				added, err := o.ingestor.Ingest(&outcome.source, outcome.parsed, articles)
				if err != nil {
					return err
				}
				result.Added += added
			}

			tokens := outcome.result.Tokens
			if err := sources.UpdateCacheTokens(outcome.source.ID, tokens.ETag, tokens.LastModified); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply refresh: %w", err)
	}

	return result, nil
}

// Poller runs RefreshAll on a fixed interval. An interval of zero disables
// polling entirely.
type Poller struct {
	orchestrator *Orchestrator
	interval     time.Duration
	done         chan struct{}
	wg           sync.WaitGroup
}

func NewPoller(orchestrator *Orchestrator, interval time.Duration) *Poller {
	return &Poller{
		orchestrator: orchestrator,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (p *Poller) Start() {
	if p.interval <= 0 {
		slog.Info("Background refresh disabled")
		return
	}

	slog.Info("Background refresh enabled", "interval", p.interval)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := p.orchestrator.RefreshAll(context.Background(), false); err != nil {
					slog.Error("Scheduled refresh failed", "error", err)
				}
			case <-p.done:
				return
			}
		}
	}()
}

func (p *Poller) Stop() {
	close(p.done)
	p.wg.Wait()
}
