package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/tictactoe"
)

const (
	inboxSize       = 64
	registryTimeout = 2 * time.Second
)

type joinRequest struct {
	session Session
	reply   chan bool
}

// matchActor owns one match. Every input reaches the match through the inbox,
// so the state is only touched by the actor goroutine.
type matchActor struct {
	id         string
	logger     *slog.Logger
	match      *tictactoe.Match
	dispatcher *sessionDispatcher

	inbox chan any
	done  chan struct{}

	pending []entity.InboundMessage
	tick    int64
}

func newMatchActor(manager *MatchManager, matchID string) *matchActor {
	logger := manager.logger.With("matchID", matchID)

	dispatcher := newSessionDispatcher(logger, matchID, manager.registry)

	return &matchActor{
		id:         matchID,
		logger:     logger,
		dispatcher: dispatcher,
		match: tictactoe.NewMatch(manager.logger, matchID, dispatcher, manager.scorer, tictactoe.Options{
			ResetDelay:     manager.conf.ResetDelay,
			EmptyTickLimit: manager.conf.EmptyTickLimit,
			OpenTickLimit:  manager.conf.OpenTickLimit,
		}),
		inbox: make(chan any, inboxSize),
		done:  make(chan struct{}),
	}
}

func (that *matchActor) deliver(ctx context.Context, input any) error {
	select {
	case that.inbox <- input:
		return nil
	case <-that.done:
		return apperror.ErrMatchNotFound
	case <-ctx.Done():
		return fmt.Errorf("delivery canceled: %w", ctx.Err())
	}
}

func (that *matchActor) run(ctx context.Context, interval time.Duration) {
	defer close(that.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			that.logger.Info("match stopped", "reason", ctx.Err())
			return
		case input := <-that.inbox:
			that.handle(input)
		case <-ticker.C:
			that.tick++

			messages := that.pending
			that.pending = nil

			if !that.match.Loop(that.tick, messages) {
				return
			}
		}
	}
}

func (that *matchActor) handle(input any) {
	switch in := input.(type) {
	case joinRequest:
		accepted := that.match.JoinAttempt(in.session)
		if accepted {
			that.match.Join([]entity.Presence{in.session})
		}

		in.reply <- accepted
	case entity.Departure:
		that.match.Leave([]entity.Departure{in})
	case entity.InboundMessage:
		that.pending = append(that.pending, in)
	default:
		that.logger.Warn("unknown actor input", "type", fmt.Sprintf("%T", input))
	}
}

// sessionDispatcher sends match output straight to sessions. Label updates are handed
// to a writer goroutine so a slow registry never holds up a tick; only the latest pending
// label is kept.
type sessionDispatcher struct {
	matchID  string
	logger   *slog.Logger
	registry labelRegistry

	labels  chan entity.Label
	written chan struct{}
}

func newSessionDispatcher(logger *slog.Logger, matchID string, registry labelRegistry) *sessionDispatcher {
	return &sessionDispatcher{
		matchID:  matchID,
		logger:   logger,
		registry: registry,
		labels:   make(chan entity.Label, 1),
		written:  make(chan struct{}),
	}
}

func (that *sessionDispatcher) BroadcastMessage(opCode entity.OpCode, data []byte, presences []entity.Presence) error {
	for _, presence := range presences {
		session, ok := presence.(Session)
		if !ok {
			continue
		}

		if !session.Send(opCode, data) {
			that.logger.Warn("outbound queue is full, message dropped", "userID", session.GetUserID(), "opCode", opCode)
		}
	}

	return nil
}

// MatchLabelUpdate must only be called from the actor goroutine.
func (that *sessionDispatcher) MatchLabelUpdate(raw string) error {
	label, err := entity.ParseLabel(raw)
	if err != nil {
		return fmt.Errorf("failed to parse label: %w", err)
	}

	select {
	case that.labels <- label:
		return nil
	default:
	}

	// replace the label the writer hasn't picked up yet
	select {
	case <-that.labels:
	default:
	}

	that.labels <- label

	return nil
}

// writeLabels saves queued labels until stopLabels is called.
func (that *sessionDispatcher) writeLabels() {
	defer close(that.written)

	for label := range that.labels {
		ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)

		if err := that.registry.Save(ctx, that.matchID, label); err != nil {
			that.logger.Error("failed to save label", "error", err)
		}

		cancel()
	}
}

// stopLabels flushes the pending label and waits for the writer to exit.
func (that *sessionDispatcher) stopLabels() {
	close(that.labels)
	<-that.written
}
