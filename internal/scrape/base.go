package scrape

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"

	"github.com/oddsentry/oddsentry/internal/catalog"
)

// BaseConfig tunes the shared adapter discipline. Defaults mirror
// settings.max_concurrent_requests / request_timeout_seconds from the
// Python original's core/config.py.
type BaseConfig struct {
	MaxConcurrentRequests int
	RequestTimeout        time.Duration
	MaxRetries            int
	UserAgent             string
}

// DefaultBaseConfig returns the spec's documented defaults.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		MaxConcurrentRequests: 10,
		RequestTimeout:        30 * time.Second,
		MaxRetries:            2,
		UserAgent:             "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// BaseAdapter carries the concurrency/timeout/retry discipline shared by
// every bookmaker adapter: a bounded semaphore for fan-out, a reusable HTTP
// client, and request/error counters. Adapters embed this rather than
// reimplement it. Grounded on BaseScraper in base.py.
type BaseAdapter struct {
	bookmaker catalog.Bookmaker
	name      string
	cfg       BaseConfig
	client    *http.Client
	sem       chan struct{}
	log       *slog.Logger

	requests atomic.Uint64
	errors   atomic.Uint64

	mu        sync.Mutex
	lastScrape time.Time
}

// NewBaseAdapter builds the shared discipline for one bookmaker.
func NewBaseAdapter(bookmaker catalog.Bookmaker, name string, cfg BaseConfig, log *slog.Logger) *BaseAdapter {
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 10
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultBaseConfig().MaxRetries
	}
	return &BaseAdapter{
		bookmaker: bookmaker,
		name:      name,
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.RequestTimeout},
		sem:       make(chan struct{}, cfg.MaxConcurrentRequests),
		log:       log.With("bookmaker", name),
	}
}

func (b *BaseAdapter) BookmakerID() catalog.Bookmaker { return b.bookmaker }
func (b *BaseAdapter) BookmakerName() string          { return b.name }

// Logger returns the adapter's bookmaker-tagged logger, for use by the
// concrete adapter's own ScrapeAll implementation.
func (b *BaseAdapter) Logger() *slog.Logger { return b.log }

// Counters returns a snapshot of request/error tallies.
func (b *BaseAdapter) Counters() Counters {
	return Counters{Requests: b.requests.Load(), Errors: b.errors.Load()}
}

// Headers returns the default header set; adapters override by copying and
// extending the map, matching BaseScraper.get_headers().
func (b *BaseAdapter) Headers() http.Header {
	h := http.Header{}
	h.Set("User-Agent", b.cfg.UserAgent)
	h.Set("Accept", "application/json")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, br, zstd")
	return h
}

// FetchJSON performs one semaphore-bounded GET, retrying on 429 (honoring
// Retry-After) and decompressing gzip/br/zstd bodies, then decodes the JSON
// response into out. Mirrors BaseScraper.fetch_json.
func (b *BaseAdapter) FetchJSON(ctx context.Context, url string, headers http.Header, out any) error {
	body, err := b.fetchRaw(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		b.errors.Add(1)
		return fmt.Errorf("scrape: unmarshal json from %s: %w", url, err)
	}
	return nil
}

// FetchHTML performs the same fetch/retry/decompress discipline as
// FetchJSON but returns the body as a string, for bookmakers whose only
// public surface is server-rendered HTML.
func (b *BaseAdapter) FetchHTML(ctx context.Context, url string, out *string) error {
	body, err := b.fetchRaw(ctx, url, nil)
	if err != nil {
		return err
	}
	*out = string(body)
	return nil
}

func (b *BaseAdapter) fetchRaw(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	select {
	case b.sem <- struct{}{}:
		defer func() { <-b.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var lastErr error
	for attempt := 0; attempt <= b.cfg.MaxRetries; attempt++ {
		b.requests.Add(1)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("scrape: build request: %w", err)
		}
		for k, vs := range b.Headers() {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		resp, err := b.client.Do(req)
		if err != nil {
			b.errors.Add(1)
			lastErr = fmt.Errorf("scrape: request %s: %w", url, err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			b.errors.Add(1)
			wait := retryAfter(resp.Header.Get("Retry-After"))
			b.log.Warn("rate limited, backing off", "url", url, "wait", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("scrape: %s rate limited", url)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			b.errors.Add(1)
			lastErr = fmt.Errorf("scrape: %s returned HTTP %d", url, resp.StatusCode)
			continue
		}

		body, err := decodeBody(resp)
		resp.Body.Close()
		if err != nil {
			b.errors.Add(1)
			lastErr = fmt.Errorf("scrape: decode body from %s: %w", url, err)
			continue
		}

		return body, nil
	}

	return nil, lastErr
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 2 * time.Second
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 2 * time.Second
}

func decodeBody(resp *http.Response) ([]byte, error) {
	enc := strings.ToLower(resp.Header.Get("Content-Encoding"))
	switch {
	case strings.Contains(enc, "br"):
		return io.ReadAll(brotli.NewReader(resp.Body))
	case strings.Contains(enc, "zstd"):
		r, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case strings.Contains(enc, "gzip"):
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// MarkScraped records the completion time of a scrape pass, mirroring
// BaseScraper._last_scrape.
func (b *BaseAdapter) MarkScraped(t time.Time) {
	b.mu.Lock()
	b.lastScrape = t
	b.mu.Unlock()
}

func (b *BaseAdapter) LastScrape() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastScrape
}

// Close satisfies Scraper for adapters with no persistent connection beyond
// the shared *http.Client (which needs no explicit close).
func (b *BaseAdapter) Close() error { return nil }

// ScrapeAllSports runs scrapeSport concurrently (bounded by the adapter's
// own semaphore) over every supported sport and aggregates the results,
// mirroring BaseScraper.scrape_all's asyncio.gather(return_exceptions=True):
// one sport's failure is logged and skipped, never aborts the others.
func ScrapeAllSports(ctx context.Context, sports []catalog.Sport, scrapeSport func(context.Context, catalog.Sport) ([]ScrapedMatch, error), log *slog.Logger) []ScrapedMatch {
	type result struct {
		matches []ScrapedMatch
		err     error
		sport   catalog.Sport
	}
	results := make(chan result, len(sports))

	var wg sync.WaitGroup
	for _, sport := range sports {
		wg.Add(1)
		go func(sport catalog.Sport) {
			defer wg.Done()
			matches, err := scrapeSport(ctx, sport)
			results <- result{matches: matches, err: err, sport: sport}
		}(sport)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []ScrapedMatch
	for r := range results {
		if r.err != nil {
			log.Error("scrape sport failed", "sport", r.sport, "error", r.err)
			continue
		}
		all = append(all, r.matches...)
	}
	return all
}
