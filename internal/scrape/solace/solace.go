// Package solace scrapes a bookmaker whose JSON API requires a short-lived
// bearer token that is embedded in the landing page's inline script rather
// than issued via a login endpoint. The adapter fetches and caches that
// token, re-extracting it once it has expired or after an API fetch fails. Grounded on the
// teacher's internal/parser/parsers/olimp/http_client.go (referer-aware
// client, proxy retry discipline) for the request shape.
package solace

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/normalize"
	"github.com/oddsentry/oddsentry/internal/scrape"
)

const (
	landingURL = "https://solace-bet.example/"
	apiBase    = "https://api.solace-bet.example/v2"
)

var tokenScriptRegex = regexp.MustCompile(`window\.__SOLACE_TOKEN__\s*=\s*"([A-Za-z0-9_\-.]+)"`)

var supportedSports = []catalog.Sport{catalog.Football, catalog.Basketball, catalog.Tennis, catalog.Volleyball, catalog.Handball}

var sportSlug = map[catalog.Sport]string{
	catalog.Football:   "soccer",
	catalog.Basketball: "basketball",
	catalog.Tennis:      "tennis",
	catalog.Volleyball:  "volleyball",
	catalog.Handball:    "handball",
}

type eventsResponse struct {
	Data []struct {
		ID        string  `json:"id"`
		Home      string  `json:"home"`
		Away      string  `json:"away"`
		League    string  `json:"league"`
		KickoffAt string  `json:"kickoff_at"`
		Markets   []struct {
			Key   string    `json:"key"`
			Line  float64   `json:"line"`
			Price []float64 `json:"price"`
		} `json:"markets"`
	} `json:"data"`
}

var marketKeyToBetType = map[string]catalog.BetType{
	"1x2":    catalog.ThreeWay,
	"ml":     catalog.TwoWay,
	"totals": catalog.TotalOverUnder,
	"ah":     catalog.Handicap,
}

// Adapter scrapes solace using a token bootstrapped from the landing page.
type Adapter struct {
	*scrape.BaseAdapter

	mu        sync.Mutex
	token     string
	tokenAt   time.Time
	tokenTTL  time.Duration
}

func New(cfg scrape.BaseConfig, log *slog.Logger) *Adapter {
	return &Adapter{
		BaseAdapter: scrape.NewBaseAdapter(catalog.Solace, "solace", cfg, log),
		tokenTTL:    10 * time.Minute,
	}
}

func (a *Adapter) SupportedSports() []catalog.Sport { return supportedSports }

func (a *Adapter) authToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Since(a.tokenAt) < a.tokenTTL {
		return a.token, nil
	}

	var body string
	if err := a.FetchHTML(ctx, landingURL, &body); err != nil {
		return "", fmt.Errorf("solace: fetch landing page: %w", err)
	}

	m := tokenScriptRegex.FindStringSubmatch(body)
	if len(m) != 2 {
		return "", fmt.Errorf("solace: token not found in landing page script")
	}

	a.token = m[1]
	a.tokenAt = time.Now()
	return a.token, nil
}

func (a *Adapter) ScrapeSport(ctx context.Context, sport catalog.Sport) ([]scrape.ScrapedMatch, error) {
	slug, ok := sportSlug[sport]
	if !ok {
		return nil, fmt.Errorf("solace: unsupported sport %s", sport)
	}

	token, err := a.authToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/sports/%s/events", apiBase, slug)
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)

	var resp eventsResponse
	if err := a.FetchJSON(ctx, url, headers, &resp); err != nil {
		// A stale token manifests as a fetch error from the upstream API;
		// drop the cached token so the next call re-extracts it.
		a.mu.Lock()
		a.token = ""
		a.mu.Unlock()
		return nil, fmt.Errorf("solace: fetch %s: %w", sport, err)
	}

	matches := make([]scrape.ScrapedMatch, 0, len(resp.Data))
	for _, ev := range resp.Data {
		start, _ := normalize.Timestamp(ev.KickoffAt)
		m := scrape.ScrapedMatch{
			Team1: ev.Home, Team2: ev.Away, Sport: sport, League: ev.League,
			StartTime: start, ExternalID: ev.ID,
		}
		for _, mk := range ev.Markets {
			betType, ok := marketKeyToBetType[mk.Key]
			if !ok || len(mk.Price) == 0 {
				continue
			}
			var o1, o2, o3 float64
			o1 = mk.Price[0]
			if len(mk.Price) > 1 {
				o2 = mk.Price[1]
			}
			if len(mk.Price) > 2 {
				o3 = mk.Price[2]
			}
			m.AddOdds(betType, o1, o2, o3, mk.Line, "")
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (a *Adapter) ScrapeAll(ctx context.Context) ([]scrape.ScrapedMatch, error) {
	all := scrape.ScrapeAllSports(ctx, a.SupportedSports(), a.ScrapeSport, a.Logger())
	a.MarkScraped(time.Now())
	return all, nil
}
