package entity

// Presence is an opaque handle for one participant's live connection to a match.
type Presence interface {
	GetUserID() string
	GetSessionID() string
}

// LeaveReason tells an explicit forfeit apart from a transient disconnect.
type LeaveReason uint8

const (
	// LeaveReasonDisconnect covers timeouts and dropped sockets.
	LeaveReasonDisconnect LeaveReason = iota
	// LeaveReasonLeave is a voluntary leave and forfeits the round.
	LeaveReasonLeave
)

// Departure is one participant leaving a match.
type Departure struct {
	Presence Presence
	Reason   LeaveReason
}

// InboundMessage is a client message queued for the next tick.
type InboundMessage struct {
	Sender Presence
	OpCode OpCode
	Data   []byte
}
