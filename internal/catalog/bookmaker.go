package catalog

// Bookmaker is a stable integer id for a single betting operator.
type Bookmaker int

const (
	Northline Bookmaker = iota + 1 // adapted from teacher's fonbet parser
	Harborbet                      // adapted from teacher's pinnacle/pinnacle888 parsers
	OnexClub                       // adapted from teacher's xbet1 parser (cloudflare-gated)
	Ridgebet                       // adapted from teacher's marathonbet parser
	Solace                         // adapted from teacher's olimp parser (auth-token source)
	Zenport                        // adapted from teacher's zenit parser
	Leoward                        // adapted from teacher's leon parser
)

// BookmakerInfo carries the catalogue entry for a bookmaker (spec §9 design notes:
// BetSnipe's BOOKMAKERS table marks some books disabled with a reason).
type BookmakerInfo struct {
	ID             Bookmaker
	Name           string
	DisplayName    string
	Enabled        bool
	DisabledReason string
}

var bookmakerTable = map[Bookmaker]BookmakerInfo{
	Northline: {Northline, "northline", "Northline Bet", true, ""},
	Harborbet: {Harborbet, "harborbet", "Harbor Bet", true, ""},
	OnexClub:  {OnexClub, "onexclub", "OneX Club", false, "often Cloudflare-blocked"},
	Ridgebet:  {Ridgebet, "ridgebet", "Ridge Bet", true, ""},
	Solace:    {Solace, "solace", "Solace Bet", true, ""},
	Zenport:   {Zenport, "zenport", "Zenport", true, ""},
	Leoward:   {Leoward, "leoward", "Leoward", true, ""},
}

// Info returns the catalogue entry for a bookmaker id.
func (b Bookmaker) Info() (BookmakerInfo, bool) {
	info, ok := bookmakerTable[b]
	return info, ok
}

// Name returns the bookmaker's short name, or "unknown" if not registered.
func (b Bookmaker) Name() string {
	if info, ok := bookmakerTable[b]; ok {
		return info.Name
	}
	return "unknown"
}

// AllBookmakers returns every registered bookmaker, enabled or not.
func AllBookmakers() []BookmakerInfo {
	out := make([]BookmakerInfo, 0, len(bookmakerTable))
	for _, info := range bookmakerTable {
		out = append(out, info)
	}
	return out
}

// EnabledBookmakers returns only the bookmakers the engine should register scrapers for.
func EnabledBookmakers() []BookmakerInfo {
	out := make([]BookmakerInfo, 0, len(bookmakerTable))
	for _, info := range bookmakerTable {
		if info.Enabled {
			out = append(out, info)
		}
	}
	return out
}
