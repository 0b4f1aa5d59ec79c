// Package harborbet scrapes a Pinnacle-style API that requires a static
// API key and device UUID header pair rather than a session cookie.
// Grounded on the teacher's internal/parser/parsers/pinnacle/http_client.go.
package harborbet

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/normalize"
	"github.com/oddsentry/oddsentry/internal/scrape"
)

const baseURL = "https://guest.harborbet-api.example/v3"

var supportedSports = []catalog.Sport{catalog.Football, catalog.Basketball, catalog.Tennis, catalog.Hockey, catalog.TableTennis}

var sportID = map[catalog.Sport]int{
	catalog.Football:    29,
	catalog.Basketball:  4,
	catalog.Tennis:       33,
	catalog.Hockey:       19,
	catalog.TableTennis:  25,
}

type leagueResponse struct {
	Leagues []struct {
		Name   string `json:"name"`
		Events []struct {
			ID        int64  `json:"id"`
			Home      string `json:"home"`
			Away      string `json:"away"`
			StartsISO string `json:"starts"`
			Periods   []struct {
				Number      int     `json:"number"`
				MoneyLine   *moneyLine `json:"moneyline"`
				Totals      []total    `json:"totals"`
			} `json:"periods"`
		} `json:"events"`
	} `json:"leagues"`
}

type moneyLine struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

type total struct {
	Points float64 `json:"points"`
	Over   float64 `json:"over"`
	Under  float64 `json:"under"`
}

// Adapter scrapes harborbet's API-key-authenticated feed.
type Adapter struct {
	*scrape.BaseAdapter
	apiKey     string
	deviceUUID string
}

// New builds a harborbet adapter. Credentials fall back to environment
// variables so they never need to live in committed config, matching the
// teacher's pinnacle client.
func New(cfg scrape.BaseConfig, apiKey, deviceUUID string, log *slog.Logger) *Adapter {
	if apiKey == "" {
		apiKey = os.Getenv("HARBORBET_API_KEY")
	}
	if deviceUUID == "" {
		deviceUUID = os.Getenv("HARBORBET_DEVICE_UUID")
	}
	return &Adapter{
		BaseAdapter: scrape.NewBaseAdapter(catalog.Harborbet, "harborbet", cfg, log),
		apiKey:      apiKey,
		deviceUUID:  deviceUUID,
	}
}

func (a *Adapter) SupportedSports() []catalog.Sport { return supportedSports }

func (a *Adapter) ScrapeSport(ctx context.Context, sport catalog.Sport) ([]scrape.ScrapedMatch, error) {
	id, ok := sportID[sport]
	if !ok {
		return nil, fmt.Errorf("harborbet: unsupported sport %s", sport)
	}

	url := fmt.Sprintf("%s/sports/%d/leagues/events", baseURL, id)
	headers := http.Header{}
	headers.Set("X-API-Key", a.apiKey)
	headers.Set("X-Device-UUID", a.deviceUUID)

	var resp leagueResponse
	if err := a.FetchJSON(ctx, url, headers, &resp); err != nil {
		return nil, fmt.Errorf("harborbet: fetch %s: %w", sport, err)
	}

	var matches []scrape.ScrapedMatch
	for _, league := range resp.Leagues {
		for _, ev := range league.Events {
			start, _ := normalize.Timestamp(ev.StartsISO)
			m := scrape.ScrapedMatch{
				Team1: ev.Home, Team2: ev.Away, Sport: sport, League: league.Name,
				StartTime: start, ExternalID: fmt.Sprintf("%d", ev.ID),
			}
			for _, period := range ev.Periods {
				if period.Number != 0 {
					continue // only full-time markets; spec's tennis/football first-half variants out of scope here
				}
				if period.MoneyLine != nil {
					ml := period.MoneyLine
					if ml.Draw > 0 {
						m.AddOdds(catalog.ThreeWay, ml.Home, ml.Draw, ml.Away, 0, "")
					} else {
						m.AddOdds(catalog.TwoWay, ml.Home, ml.Away, 0, 0, "")
					}
				}
				for _, t := range period.Totals {
					m.AddOdds(catalog.TotalOverUnder, t.Over, t.Under, 0, t.Points, "")
				}
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (a *Adapter) ScrapeAll(ctx context.Context) ([]scrape.ScrapedMatch, error) {
	all := scrape.ScrapeAllSports(ctx, a.SupportedSports(), a.ScrapeSport, a.Logger())
	a.MarkScraped(time.Now())
	return all, nil
}
