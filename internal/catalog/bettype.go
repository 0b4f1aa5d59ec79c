package catalog

// BetType is an enumerated market tag.
type BetType string

const (
	TwoWay          BetType = "two_way"
	ThreeWay        BetType = "three_way"
	TotalOverUnder  BetType = "total_over_under"
	FirstHalf1X2    BetType = "first_half_1x2"
	BothTeamsScore  BetType = "btts"
	Handicap        BetType = "handicap"
	TotalPoints     BetType = "total_points"
	FirstSetWinner  BetType = "first_set_winner" // tennis, set index 1 only; see Open Questions
	CorrectScore    BetType = "correct_score"    // multi-outcome, keyed by Selection
)

// SignConvention documents which side a handicap/total margin is relative to.
// The store and matcher never inspect this — margin stays opaque per spec §4.4/§9 —
// it exists purely so an adapter translating its own payload has a documented place
// to perform its own sign flip (see SPEC_FULL.md Open Questions).
type SignConvention string

const (
	HomeRelative SignConvention = "home_relative"
	AwayRelative SignConvention = "away_relative"
	NotSigned    SignConvention = ""
)

// BetTypeInfo carries arity and line-bearing metadata for a market.
type BetTypeInfo struct {
	BetType        BetType
	Outcomes       int // 2 or 3; 1 for selection-keyed multi-outcome markets
	HasLine        bool
	MultiOutcome   bool // selection-keyed markets, e.g. correct score
	SignConvention SignConvention
}

var betTypeTable = map[BetType]BetTypeInfo{
	TwoWay:         {TwoWay, 2, false, false, NotSigned},
	ThreeWay:       {ThreeWay, 3, false, false, NotSigned},
	TotalOverUnder: {TotalOverUnder, 2, true, false, NotSigned},
	FirstHalf1X2:   {FirstHalf1X2, 3, false, false, NotSigned},
	BothTeamsScore: {BothTeamsScore, 2, false, false, NotSigned},
	Handicap:       {Handicap, 2, true, false, HomeRelative},
	TotalPoints:    {TotalPoints, 2, true, false, NotSigned},
	FirstSetWinner: {FirstSetWinner, 2, false, false, NotSigned},
	CorrectScore:   {CorrectScore, 1, false, true, NotSigned},
}

// Info returns the catalogue entry for a bet type.
func (b BetType) Info() (BetTypeInfo, bool) {
	info, ok := betTypeTable[b]
	return info, ok
}

// Outcomes returns the market's outcome arity (2 or 3, or 1 for selection-keyed
// markets), defaulting to 2 for unknown types.
func (b BetType) Outcomes() int {
	if info, ok := betTypeTable[b]; ok {
		return info.Outcomes
	}
	return 2
}

// HasLine reports whether the market carries a numeric margin/line.
func (b BetType) HasLine() bool {
	info, ok := betTypeTable[b]
	return ok && info.HasLine
}
