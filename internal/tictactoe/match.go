package tictactoe

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

const (
	DefaultResetDelay     = 20 * time.Second
	DefaultEmptyTickLimit = 100
	DefaultOpenTickLimit  = 10
)

// Dispatcher delivers messages to connected participants and publishes the match label.
type Dispatcher interface {
	BroadcastMessage(opCode entity.OpCode, data []byte, presences []entity.Presence) error
	MatchLabelUpdate(label string) error
}

// Scorer receives terminal outcomes. Submit must not block.
type Scorer interface {
	Submit(event entity.ScoreEvent)
}

type Options struct {
	ResetDelay     time.Duration
	EmptyTickLimit int
	OpenTickLimit  int
	Now            func() time.Time
}

func (that Options) withDefaults() Options {
	if that.ResetDelay <= 0 {
		that.ResetDelay = DefaultResetDelay
	}

	if that.EmptyTickLimit <= 0 {
		that.EmptyTickLimit = DefaultEmptyTickLimit
	}

	if that.OpenTickLimit <= 0 {
		that.OpenTickLimit = DefaultOpenTickLimit
	}

	if that.Now == nil {
		that.Now = time.Now
	}

	return that
}

// Match is the authoritative state machine of one tic-tac-toe match.
// It is not safe for concurrent use; the host calls it from a single goroutine.
type Match struct {
	id     string
	logger *slog.Logger
	opts   Options

	dispatcher Dispatcher
	scorer     Scorer

	state *entity.MatchState
}

func NewMatch(logger *slog.Logger, id string, dispatcher Dispatcher, scorer Scorer, opts Options) *Match {
	return &Match{
		id:         id,
		logger:     logger.With("component", "match", "matchID", id),
		opts:       opts.withDefaults(),
		dispatcher: dispatcher,
		scorer:     scorer,
		state:      entity.NewMatchState(),
	}
}

func (that *Match) ID() string {
	return that.id
}

// Label returns the encoded label the match starts with.
func (that *Match) Label() string {
	return that.state.Label.Encode()
}

// State exposes the current state for inspection.
func (that *Match) State() *entity.MatchState {
	return that.state
}

// Loop runs one tick: scheduler first, then the moves received since the previous tick.
// It returns false when the match must be torn down.
func (that *Match) Loop(tick int64, messages []entity.InboundMessage) bool {
	acceptMoves := that.state.Playing

	if !that.schedule(tick) {
		return false
	}

	that.processMessages(messages, acceptMoves)

	return true
}

func (that *Match) broadcast(opCode entity.OpCode, payload any) {
	that.send(opCode, payload, that.state.ConnectedPresences())
}

func (that *Match) unicast(opCode entity.OpCode, payload any, presence entity.Presence) {
	that.send(opCode, payload, []entity.Presence{presence})
}

func (that *Match) send(opCode entity.OpCode, payload any, presences []entity.Presence) {
	log := that.logger.With("method", "send", "opCode", opCode)

	if len(presences) == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal message", "error", err)
		return
	}

	if err = that.dispatcher.BroadcastMessage(opCode, data, presences); err != nil {
		log.Error("failed to dispatch message", "error", err)
	}
}

func (that *Match) reject(reason string, presence entity.Presence) {
	that.unicast(entity.OpCodeRejected, entity.RejectedMessage{Error: reason}, presence)
}

func (that *Match) publishLabel() {
	if err := that.dispatcher.MatchLabelUpdate(that.state.Label.Encode()); err != nil {
		that.logger.Error("failed to update match label", "error", err)
	}
}
