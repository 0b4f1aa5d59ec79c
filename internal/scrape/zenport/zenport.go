// Package zenport scrapes a direct JSON sports-line API, grounded on the
// teacher's internal/parser/parsers/zenit package (nested sport/league/
// event/market JSON, no mirror or auth gate).
package zenport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/normalize"
	"github.com/oddsentry/oddsentry/internal/scrape"
)

const baseURL = "https://zenport.example/api/v1"

var supportedSports = []catalog.Sport{catalog.Football, catalog.Basketball, catalog.Hockey, catalog.TableTennis}

var sportID = map[catalog.Sport]int{
	catalog.Football:    1,
	catalog.Basketball:  2,
	catalog.Hockey:       3,
	catalog.TableTennis:  17,
}

type sportResponse struct {
	Leagues []struct {
		Name   string `json:"name"`
		Events []struct {
			ExternalID string  `json:"externalId"`
			Home       string  `json:"home"`
			Away       string  `json:"away"`
			StartsAt   string  `json:"startsAt"`
			Markets    []struct {
				Name   string    `json:"name"`
				Handicap float64 `json:"handicap"`
				Odds   []float64 `json:"odds"`
			} `json:"markets"`
		} `json:"events"`
	} `json:"leagues"`
}

var marketNameToBetType = map[string]catalog.BetType{
	"1X2":      catalog.ThreeWay,
	"Winner":   catalog.TwoWay,
	"Total":    catalog.TotalOverUnder,
	"Handicap": catalog.Handicap,
}

type Adapter struct {
	*scrape.BaseAdapter
}

func New(cfg scrape.BaseConfig, log *slog.Logger) *Adapter {
	return &Adapter{BaseAdapter: scrape.NewBaseAdapter(catalog.Zenport, "zenport", cfg, log)}
}

func (a *Adapter) SupportedSports() []catalog.Sport { return supportedSports }

func (a *Adapter) ScrapeSport(ctx context.Context, sport catalog.Sport) ([]scrape.ScrapedMatch, error) {
	id, ok := sportID[sport]
	if !ok {
		return nil, fmt.Errorf("zenport: unsupported sport %s", sport)
	}

	url := fmt.Sprintf("%s/sports/%d/schedule", baseURL, id)
	var resp sportResponse
	if err := a.FetchJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("zenport: fetch %s: %w", sport, err)
	}

	var matches []scrape.ScrapedMatch
	for _, league := range resp.Leagues {
		for _, ev := range league.Events {
			start, _ := normalize.Timestamp(ev.StartsAt)
			m := scrape.ScrapedMatch{
				Team1: ev.Home, Team2: ev.Away, Sport: sport, League: league.Name,
				StartTime: start, ExternalID: ev.ExternalID,
			}
			for _, mk := range ev.Markets {
				betType, ok := marketNameToBetType[mk.Name]
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
				m.AddOdds(betType, o1, o2, o3, mk.Handicap, "")
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
