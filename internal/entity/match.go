package entity

import (
	"slices"
	"time"
)

// MatchState holds all data of one match instance.
type MatchState struct {
	Board Board
	Turn  Mark
	// Marks is only filled once two participants have joined and the round starts.
	Marks map[string]Mark
	// Presences maps connected participants to their connection handle.
	Presences map[string]Presence
	// JoinOrder keeps connected participants in the order they joined.
	JoinOrder         []string
	DisconnectedUsers []string
	Label             Label

	Playing         bool
	Winner          Mark
	WinningPosition *Line
	ResetDeadline   time.Time

	EmptyTicks int
	OpenTicks  int
}

func NewMatchState() *MatchState {
	return &MatchState{
		Turn:      MarkX,
		Marks:     make(map[string]Mark),
		Presences: make(map[string]Presence),
		Label:     Label{Open: true, Users: []string{}},
	}
}

// ConnectedCount returns the number of participants currently connected.
func (that *MatchState) ConnectedCount() int {
	return len(that.Presences)
}

// AddPresence records a connection, keeping join order for first-time joins.
func (that *MatchState) AddPresence(presence Presence) {
	userID := presence.GetUserID()
	if _, ok := that.Presences[userID]; !ok {
		that.JoinOrder = append(that.JoinOrder, userID)
	}

	that.Presences[userID] = presence
}

// RemovePresence drops the connection handle only; marks and board are untouched.
func (that *MatchState) RemovePresence(userID string) {
	delete(that.Presences, userID)
	that.JoinOrder = slices.DeleteFunc(that.JoinOrder, func(id string) bool { return id == userID })
}

// ConnectedPresences returns the connected participants in join order.
func (that *MatchState) ConnectedPresences() []Presence {
	presences := make([]Presence, 0, len(that.JoinOrder))
	for _, userID := range that.JoinOrder {
		if presence, ok := that.Presences[userID]; ok {
			presences = append(presences, presence)
		}
	}

	return presences
}

// ResetBoard clears the board and every trace of the previous round's result.
func (that *MatchState) ResetBoard() {
	that.Board = Board{}
	that.Turn = MarkX
	that.Winner = MarkNone
	that.WinningPosition = nil
	that.ResetDeadline = time.Time{}
}

// Finish records a terminal outcome and schedules the automatic restart.
func (that *MatchState) Finish(outcome Outcome, deadline time.Time) {
	that.Playing = false
	that.ResetDeadline = deadline

	if outcome.Kind == OutcomeWin {
		line := outcome.Line
		that.Winner = outcome.Mark
		that.WinningPosition = &line

		return
	}

	that.Winner = MarkNone
	that.WinningPosition = nil
}

// IsFinished reports whether the round ended and is waiting for the automatic restart.
func (that *MatchState) IsFinished() bool {
	return !that.ResetDeadline.IsZero()
}

// SwitchMarks exchanges the marks of the two participants.
func (that *MatchState) SwitchMarks() {
	if len(that.Marks) != 2 {
		return
	}

	users := make([]string, 0, 2)
	for userID := range that.Marks {
		users = append(users, userID)
	}

	tmp := that.Marks[users[0]]
	that.Marks[users[0]] = that.Marks[users[1]]
	that.Marks[users[1]] = tmp
}

// AssignMarks gives X and O to the connected participants in join order.
func (that *MatchState) AssignMarks() {
	that.Marks = make(map[string]Mark, 2)
	for i, userID := range that.JoinOrder {
		if i == 0 {
			that.Marks[userID] = MarkX
		} else {
			that.Marks[userID] = MarkO
		}
	}
}

func (that *MatchState) IsDisconnected(userID string) bool {
	return slices.Contains(that.DisconnectedUsers, userID)
}

func (that *MatchState) RemoveDisconnected(userID string) {
	that.DisconnectedUsers = slices.DeleteFunc(that.DisconnectedUsers, func(id string) bool { return id == userID })
}

// ResetDeadlineMillis returns the deadline as unix milliseconds, or nil when none is set.
func (that *MatchState) ResetDeadlineMillis() *int64 {
	if that.ResetDeadline.IsZero() {
		return nil
	}

	ms := that.ResetDeadline.UnixMilli()

	return &ms
}

// CopyMarks returns a snapshot of the marks, safe to hand to other goroutines.
func (that *MatchState) CopyMarks() map[string]Mark {
	marks := make(map[string]Mark, len(that.Marks))
	for userID, mark := range that.Marks {
		marks[userID] = mark
	}

	return marks
}
