// Package northline scrapes a Fonbet-style direct JSON sports API: no
// Cloudflare gate, no auth token, just a plain GET per sport. Grounded on
// the teacher's internal/parser/parsers/fonbet_parser.go.
package northline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/normalize"
	"github.com/oddsentry/oddsentry/internal/scrape"
)

const baseURL = "https://line.northline-sport.example/service-api/LineFeed"

var supportedSports = []catalog.Sport{
	catalog.Football, catalog.Basketball, catalog.Tennis, catalog.Hockey,
	catalog.TableTennis, catalog.Volleyball, catalog.Handball, catalog.Esports,
}

// sportPath maps our sport enum to the upstream's path segment.
var sportPath = map[catalog.Sport]string{
	catalog.Football:    "soccer",
	catalog.Basketball:  "basketball",
	catalog.Tennis:      "tennis",
	catalog.Hockey:      "ice-hockey",
	catalog.TableTennis: "table-tennis",
	catalog.Volleyball:  "volleyball",
	catalog.Handball:    "handball",
	catalog.Esports:     "esports",
}

type eventResponse struct {
	Events []struct {
		ID        int64   `json:"id"`
		Team1     string  `json:"team1"`
		Team2     string  `json:"team2"`
		League    string  `json:"league"`
		StartTime int64   `json:"startTime"`
		Markets   []market `json:"markets"`
	} `json:"events"`
}

type market struct {
	TypeID int     `json:"typeId"`
	Margin float64 `json:"margin"`
	Odds   []float64 `json:"odds"`
}

var marketToBetType = map[int]catalog.BetType{
	1: catalog.ThreeWay,
	2: catalog.TwoWay,
	8: catalog.TotalOverUnder,
	9: catalog.Handicap,
}

// Adapter scrapes Northline's direct JSON API.
type Adapter struct {
	*scrape.BaseAdapter
}

// New builds a Northline adapter.
func New(cfg scrape.BaseConfig, log *slog.Logger) *Adapter {
	return &Adapter{BaseAdapter: scrape.NewBaseAdapter(catalog.Northline, "northline", cfg, log)}
}

func (a *Adapter) SupportedSports() []catalog.Sport { return supportedSports }

func (a *Adapter) ScrapeSport(ctx context.Context, sport catalog.Sport) ([]scrape.ScrapedMatch, error) {
	path, ok := sportPath[sport]
	if !ok {
		return nil, fmt.Errorf("northline: unsupported sport %s", sport)
	}

	url := fmt.Sprintf("%s/%s?dateInterval=3", baseURL, path)
	var resp eventResponse
	if err := a.FetchJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("northline: fetch %s: %w", sport, err)
	}

	matches := make([]scrape.ScrapedMatch, 0, len(resp.Events))
	for _, ev := range resp.Events {
		startTime, _ := normalize.Timestamp(ev.StartTime)
		m := scrape.ScrapedMatch{
			Team1: ev.Team1, Team2: ev.Team2, Sport: sport, League: ev.League,
			StartTime:  startTime,
			ExternalID: fmt.Sprintf("%d", ev.ID),
		}
		for _, mk := range ev.Markets {
			betType, ok := marketToBetType[mk.TypeID]
			if !ok || len(mk.Odds) == 0 {
				continue
			}
			var o1, o2, o3 float64
			o1 = mk.Odds[0]
			if len(mk.Odds) > 1 {
				o2 = mk.Odds[1]
			}
			if len(mk.Odds) > 2 {
				o3 = mk.Odds[2]
			}
			m.AddOdds(betType, o1, o2, o3, mk.Margin, "")
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
