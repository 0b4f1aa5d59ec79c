// Package leoward scrapes a direct JSON line API, grounded on the teacher's
// internal/parser/parsers/leon package. Simplest adapter in the catalogue:
// flat event list per sport, no mirror resolution, no auth token.
package leoward

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/normalize"
	"github.com/oddsentry/oddsentry/internal/scrape"
)

const baseURL = "https://leoward.example/betline/api/v1"

var supportedSports = []catalog.Sport{catalog.Football, catalog.Basketball, catalog.Tennis, catalog.Hockey, catalog.Esports}

var sportSlug = map[catalog.Sport]string{
	catalog.Football:   "football",
	catalog.Basketball: "basketball",
	catalog.Tennis:      "tennis",
	catalog.Hockey:       "hockey",
	catalog.Esports:      "esports",
}

type eventListResponse struct {
	Events []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"` // "Team A - Team B"
		League   string `json:"league"`
		Kickoff  int64  `json:"kickoff"`
		Outcomes []struct {
			Type  string  `json:"type"`
			Line  float64 `json:"line"`
			Coef  float64 `json:"coef"`
			Index int     `json:"index"` // 0,1,2 for 1/X/2 etc.
		} `json:"outcomes"`
	} `json:"events"`
}

var outcomeTypeToBetType = map[string]catalog.BetType{
	"result_1x2": catalog.ThreeWay,
	"winner":     catalog.TwoWay,
	"total":      catalog.TotalOverUnder,
}

type Adapter struct {
	*scrape.BaseAdapter
}

func New(cfg scrape.BaseConfig, log *slog.Logger) *Adapter {
	return &Adapter{BaseAdapter: scrape.NewBaseAdapter(catalog.Leoward, "leoward", cfg, log)}
}

func (a *Adapter) SupportedSports() []catalog.Sport { return supportedSports }

func (a *Adapter) ScrapeSport(ctx context.Context, sport catalog.Sport) ([]scrape.ScrapedMatch, error) {
	slug, ok := sportSlug[sport]
	if !ok {
		return nil, fmt.Errorf("leoward: unsupported sport %s", sport)
	}

	url := fmt.Sprintf("%s/%s/events", baseURL, slug)
	var resp eventListResponse
	if err := a.FetchJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("leoward: fetch %s: %w", sport, err)
	}

	matches := make([]scrape.ScrapedMatch, 0, len(resp.Events))
	for _, ev := range resp.Events {
		team1, team2 := splitEventName(ev.Name)
		start, _ := normalize.Timestamp(ev.Kickoff)

		m := scrape.ScrapedMatch{
			Team1: team1, Team2: team2, Sport: sport, League: ev.League,
			StartTime: start, ExternalID: fmt.Sprintf("%d", ev.ID),
		}

		byKey := map[string][3]float64{}
		for _, oc := range ev.Outcomes {
			betType, ok := outcomeTypeToBetType[oc.Type]
			if !ok {
				continue
			}
			key := fmt.Sprintf("%s|%.2f", betType, oc.Line)
			slot := byKey[key]
			if oc.Index >= 0 && oc.Index < 3 {
				slot[oc.Index] = oc.Coef
			}
			byKey[key] = slot
		}
		for key, odds := range byKey {
			betTypeStr, lineStr, _ := strings.Cut(key, "|")
			line, _ := strconv.ParseFloat(lineStr, 64)
			m.AddOdds(catalog.BetType(betTypeStr), odds[0], odds[1], odds[2], line, "")
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// splitEventName parses "Team A - Team B" style names, falling back to
// alternate separators, mirroring BaseScraper.parse_teams.
func splitEventName(name string) (string, string) {
	for _, sep := range []string{" - ", " vs ", " v ", " @ "} {
		if idx := indexOf(name, sep); idx >= 0 {
			return trimSpace(name[:idx]), trimSpace(name[idx+len(sep):])
		}
	}
	return trimSpace(name), ""
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

func (a *Adapter) ScrapeAll(ctx context.Context) ([]scrape.ScrapedMatch, error) {
	all := scrape.ScrapeAllSports(ctx, a.SupportedSports(), a.ScrapeSport, a.Logger())
	a.MarkScraped(time.Now())
	return all, nil
}
