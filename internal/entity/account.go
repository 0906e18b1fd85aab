package entity

type Account struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// IsRegistered reports whether the account completed registration.
func (that *Account) IsRegistered() bool {
	return that != nil && that.Email != ""
}

// LeaderboardRecord is one owner's accumulated score.
type LeaderboardRecord struct {
	OwnerID string `json:"ownerId"`
	Score   int64  `json:"score"`
	Rank    int64  `json:"rank"`
}

// ScoreEvent is emitted by a match when a round ends with a win or a draw.
type ScoreEvent struct {
	MatchID string
	Outcome Outcome
	Marks   map[string]Mark
}
