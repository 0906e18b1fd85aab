package entity

import (
	"encoding/json"
	"fmt"
)

// OpCode identifies the type of a realtime match message.
type OpCode int64

const (
	OpCodeStart    OpCode = 1
	OpCodeUpdate   OpCode = 2
	OpCodeDone     OpCode = 3
	OpCodeMove     OpCode = 4
	OpCodeRejected OpCode = 5
)

// Rejection reasons sent in RejectedMessage.Error.
const (
	ReasonForfeit        = "Player forfeited"
	ReasonNotYourTurn    = "Can't make a move when opponent's turn"
	ReasonCellOccupied   = "Position already played"
	ReasonInvalidMove    = "Invalid move payload"
	ReasonNotInProgress  = "Match is not in progress"
	ReasonUnknownMessage = "Unknown message"
)

type StartMessage struct {
	Board Board           `json:"board"`
	Marks map[string]Mark `json:"marks"`
	Turn  Mark            `json:"turn"`
}

// UpdateMessage is broadcast after an accepted move; the optional fields are only
// filled when resynchronizing a reconnecting participant.
type UpdateMessage struct {
	Board           Board           `json:"board"`
	Turn            Mark            `json:"turn"`
	Marks           map[string]Mark `json:"marks,omitempty"`
	Winner          *Mark           `json:"winner,omitempty"`
	WinningPosition *Line           `json:"winningPosition,omitempty"`
	ResetDeadline   *int64          `json:"resetDeadline,omitempty"`
}

type DoneMessage struct {
	Board           Board `json:"board"`
	Winner          Mark  `json:"winner"`
	WinnerPositions *Line `json:"winnerPositions"`
	ResetDeadline   int64 `json:"resetDeadline"`
}

type MoveMessage struct {
	Position *int `json:"position"`
}

type RejectedMessage struct {
	Error  string `json:"error"`
	UserID string `json:"userId,omitempty"`
}

// ParseMove decodes a move payload into a board position.
func ParseMove(data []byte) (int, error) {
	var msg MoveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if msg.Position == nil {
		return 0, fmt.Errorf("%w: position is missing", ErrInvalidPayload)
	}

	position := *msg.Position
	if position < 0 || position >= BoardSize {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}

	return position, nil
}
