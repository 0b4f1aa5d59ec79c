// Package ridgebet scrapes a bookmaker that publishes odds only as rendered
// HTML, no JSON API. Regex-based extraction over the page body, matching
// the teacher's own choice in internal/parser/parsers/marathonbet/parser.go
// (no HTML-parsing library is used anywhere in the retrieval pack, so this
// stays on regexp + the stdlib html package rather than introducing one).
package ridgebet

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/scrape"
)

const baseURL = "https://ridgebet.example"

var supportedSports = []catalog.Sport{catalog.Football, catalog.Basketball, catalog.Hockey}

var sportSlug = map[catalog.Sport]string{
	catalog.Football:   "football",
	catalog.Basketball: "basketball",
	catalog.Hockey:      "ice-hockey",
}

var (
	eventBlockRegex = regexp.MustCompile(`(?s)<div class="event-row" data-event-id="(\d+)">(.*?)</div>\s*<!--\s*/event-row\s*-->`)
	teamsRegex      = regexp.MustCompile(`<span class="team-home">([^<]+)</span>\s*<span class="team-away">([^<]+)</span>`)
	leagueRegex     = regexp.MustCompile(`data-league="([^"]+)"`)
	dateTimeRegex   = regexp.MustCompile(`data-start="([\d-]+T[\d:]+)"`)
	oddRegex        = regexp.MustCompile(`data-market="(1x2|ou)" data-line="([\d.]*)" data-odds="([\d.,;]+)"`)
)

// Adapter scrapes ridgebet's HTML event pages.
type Adapter struct {
	*scrape.BaseAdapter
}

func New(cfg scrape.BaseConfig, log *slog.Logger) *Adapter {
	return &Adapter{BaseAdapter: scrape.NewBaseAdapter(catalog.Ridgebet, "ridgebet", cfg, log)}
}

func (a *Adapter) SupportedSports() []catalog.Sport { return supportedSports }

func (a *Adapter) ScrapeSport(ctx context.Context, sport catalog.Sport) ([]scrape.ScrapedMatch, error) {
	slug, ok := sportSlug[sport]
	if !ok {
		return nil, fmt.Errorf("ridgebet: unsupported sport %s", sport)
	}

	url := fmt.Sprintf("%s/en/betting/%s/", baseURL, slug)
	var body string
	if err := a.FetchHTML(ctx, url, &body); err != nil {
		return nil, fmt.Errorf("ridgebet: fetch %s: %w", sport, err)
	}

	var matches []scrape.ScrapedMatch
	for _, block := range eventBlockRegex.FindAllStringSubmatch(body, -1) {
		id, html_ := block[1], block[2]

		teams := teamsRegex.FindStringSubmatch(html_)
		if len(teams) != 3 {
			continue
		}

		league := ""
		if lm := leagueRegex.FindStringSubmatch(html_); len(lm) == 2 {
			league = html.UnescapeString(lm[1])
		}

		start := parseRidgebetTime(html_)

		m := scrape.ScrapedMatch{
			Team1: html.UnescapeString(strings.TrimSpace(teams[1])),
			Team2: html.UnescapeString(strings.TrimSpace(teams[2])),
			Sport: sport, League: league, StartTime: start, ExternalID: id,
		}

		for _, om := range oddRegex.FindAllStringSubmatch(html_, -1) {
			market, lineStr, oddsStr := om[1], om[2], om[3]
			line, _ := strconv.ParseFloat(lineStr, 64)
			odds := parseOddsList(oddsStr)
			switch market {
			case "1x2":
				if len(odds) == 3 {
					m.AddOdds(catalog.ThreeWay, odds[0], odds[1], odds[2], 0, "")
				}
			case "ou":
				if len(odds) == 2 {
					m.AddOdds(catalog.TotalOverUnder, odds[0], odds[1], 0, line, "")
				}
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func parseRidgebetTime(block string) time.Time {
	m := dateTimeRegex.FindStringSubmatch(block)
	if len(m) != 2 {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02T15:04:05", m[1])
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseOddsList(raw string) []float64 {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (a *Adapter) ScrapeAll(ctx context.Context) ([]scrape.ScrapedMatch, error) {
	all := scrape.ScrapeAllSports(ctx, a.SupportedSports(), a.ScrapeSport, a.Logger())
	a.MarkScraped(time.Now())
	return all, nil
}
