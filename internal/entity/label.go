package entity

import (
	"encoding/json"
	"fmt"
)

// Label is the matchmaking metadata advertised for a match.
type Label struct {
	Open  bool     `json:"open"`
	Users []string `json:"users"`
}

// MatchListing is one match as seen by matchmaking: its ID and raw label.
type MatchListing struct {
	MatchID string
	Label   string
}

func (that Label) Encode() string {
	users := that.Users
	if users == nil {
		users = []string{}
	}

	b, err := json.Marshal(Label{Open: that.Open, Users: users})
	if err != nil {
		return `{"open":false,"users":[]}`
	}

	return string(b)
}

// ParseLabel decodes a raw label. An empty label is valid and means closed.
func ParseLabel(raw string) (Label, error) {
	var label Label
	if raw == "" {
		return label, nil
	}

	if err := json.Unmarshal([]byte(raw), &label); err != nil {
		return Label{}, fmt.Errorf("failed to parse label: %w", err)
	}

	return label, nil
}

// HasUser reports whether the label lists userID as a participant.
func (that Label) HasUser(userID string) bool {
	for _, id := range that.Users {
		if id == userID {
			return true
		}
	}

	return false
}
