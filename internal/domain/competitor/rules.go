package competitor

import "github.com/okian/heats/internal/domain/event"

// Thresholds holds, per event, the personal best (in centiseconds) a
// scrambler must beat. The personal best is read for the governing event, so
// the 555bf entry is compared against a 555 result. Zero means nobody
// qualifies.
type Thresholds [event.Count]int

// DefaultThresholds returns the stock scrambler cutoffs.
func DefaultThresholds() Thresholds {
	var t Thresholds
	t[event.E333] = 1500
	t[event.E222] = 500
	t[event.E444] = 5000
	t[event.E555] = 10000
	t[event.E666] = 22000
	t[event.E777] = 30000
	t[event.E333OH] = 1700
	t[event.E333BF] = 1500
	t[event.E444BF] = 5000
	t[event.E555BF] = 8000
	t[event.E333MBF] = 1500
	t[event.Skewb] = 500
	t[event.Pyram] = 800
	t[event.Minx] = 8000
	t[event.Sq1] = 1500
	t[event.Clock] = 1500
	return t
}

// Rules are the qualification parameters shared by every competitor of a
// registry.
type Rules struct {
	Thresholds      Thresholds
	ScramblerMinAge int
	// JudgeMinAge must be exceeded to judge the multi-attempt blindfolded events.
	JudgeMinAge int
}

// DefaultRules returns the stock qualification rules.
func DefaultRules() Rules {
	return Rules{
		Thresholds:      DefaultThresholds(),
		ScramblerMinAge: 14,
		JudgeMinAge:     12,
	}
}

// Judging these needs an experienced competitor.
var experiencedJudge = map[event.Event]bool{
	event.E444BF:  true,
	event.E555BF:  true,
	event.E333MBF: true,
}
