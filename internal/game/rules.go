package game

import "time"

// Rules holds the tunable parameters for one game. Timer fields are in
// milliseconds on the wire; the session scheduler reads them through the
// duration helpers.
type Rules struct {
	NumDecks      int `json:"numDecks"`
	Jokers        int `json:"jokers"`
	HandSize      int `json:"handSize"`
	RequiredSets  int `json:"requiredSets"`
	RequiredRuns  int `json:"requiredRuns"`
	RequiredMelds int `json:"requiredMelds"`

	CallWindowMs      int `json:"callWindowMs"`
	BotTurnDelayMs    int `json:"botTurnDelayMs"`
	BotCallDecisionMs int `json:"botCallDecisionMs"`
}

// DefaultRules returns the standard two-deck Kalooki configuration.
func DefaultRules() Rules {
	return Rules{
		NumDecks:          2,
		Jokers:            2,
		HandSize:          13,
		RequiredSets:      1,
		RequiredRuns:      1,
		RequiredMelds:     2,
		CallWindowMs:      10000,
		BotTurnDelayMs:    3000,
		BotCallDecisionMs: 2000,
	}
}

// TotalCards is the shoe size before dealing.
func (r Rules) TotalCards() int {
	return r.NumDecks*52 + r.Jokers
}

// CallWindow is how long the call window stays open after a discard.
func (r Rules) CallWindow() time.Duration {
	return time.Duration(r.CallWindowMs) * time.Millisecond
}

// BotTurnDelay is the pause before a bot takes its turn.
func (r Rules) BotTurnDelay() time.Duration {
	return time.Duration(r.BotTurnDelayMs) * time.Millisecond
}

// BotCallDecision is the pause before bots evaluate an open call window,
// and before a bot current player rules on a pending call. It must be
// shorter than CallWindow or bots never get to call.
func (r Rules) BotCallDecision() time.Duration {
	return time.Duration(r.BotCallDecisionMs) * time.Millisecond
}
