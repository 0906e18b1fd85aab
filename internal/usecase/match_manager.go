package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/tictactoe"
)

// Session is a live client connection that can be joined to a match.
type Session interface {
	entity.Presence
	// Send queues an outbound message and reports false when it had to be dropped.
	Send(opCode entity.OpCode, data []byte) bool
}

type labelRegistry interface {
	Save(ctx context.Context, matchID string, label entity.Label) error
	DeleteByID(ctx context.Context, matchID string) error
}

type MatchConfig struct {
	TickInterval   time.Duration
	ResetDelay     time.Duration
	EmptyTickLimit int
	OpenTickLimit  int
}

type MatchManager struct {
	logger   *slog.Logger
	registry labelRegistry
	scorer   tictactoe.Scorer
	conf     MatchConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	matches map[string]*matchActor
}

func NewMatchManager(logger *slog.Logger, registry labelRegistry, scorer tictactoe.Scorer, conf MatchConfig) *MatchManager {
	if conf.TickInterval <= 0 {
		conf.TickInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &MatchManager{
		logger:   logger.With("component", "match_manager"),
		registry: registry,
		scorer:   scorer,
		conf:     conf,
		ctx:      ctx,
		cancel:   cancel,
		matches:  make(map[string]*matchActor),
	}
}

// CreateMatch starts a new match actor and publishes its label.
func (that *MatchManager) CreateMatch(ctx context.Context) (string, error) {
	log := that.logger.With("method", "CreateMatch")

	if that.ctx.Err() != nil {
		return "", apperror.ErrMatchTerminated
	}

	matchID := uuid.NewString()
	actor := newMatchActor(that, matchID)

	// the actor must be reachable before its label can be found
	that.mu.Lock()
	that.matches[matchID] = actor
	that.mu.Unlock()

	if err := that.registry.Save(ctx, matchID, actor.match.State().Label); err != nil {
		that.mu.Lock()
		delete(that.matches, matchID)
		that.mu.Unlock()

		close(actor.done)

		return "", fmt.Errorf("failed to register match: %w", err)
	}

	that.wg.Add(1)
	go func() {
		defer that.wg.Done()

		go actor.dispatcher.writeLabels()

		actor.run(that.ctx, that.conf.TickInterval)
		actor.dispatcher.stopLabels()
		that.remove(matchID)
	}()

	log.Info("match created", "matchID", matchID)

	return matchID, nil
}

// Join asks the match to accept session. The returned channel is closed when the match ends.
func (that *MatchManager) Join(ctx context.Context, matchID string, session Session) (<-chan struct{}, error) {
	actor, err := that.get(matchID)
	if err != nil {
		return nil, err
	}

	reply := make(chan bool, 1)
	if err = actor.deliver(ctx, joinRequest{session: session, reply: reply}); err != nil {
		return nil, err
	}

	select {
	case ok := <-reply:
		if !ok {
			return nil, apperror.ErrJoinRejected
		}

		return actor.done, nil
	case <-actor.done:
		return nil, apperror.ErrMatchNotFound
	case <-ctx.Done():
		return nil, fmt.Errorf("join canceled: %w", ctx.Err())
	}
}

// Leave removes session from the match. LeaveReasonLeave forfeits the round.
func (that *MatchManager) Leave(ctx context.Context, matchID string, session Session, reason entity.LeaveReason) error {
	actor, err := that.get(matchID)
	if err != nil {
		return err
	}

	return actor.deliver(ctx, entity.Departure{Presence: session, Reason: reason})
}

// SendMessage queues a client message for the match's next tick.
func (that *MatchManager) SendMessage(ctx context.Context, matchID string, session Session, opCode entity.OpCode, data []byte) error {
	actor, err := that.get(matchID)
	if err != nil {
		return err
	}

	return actor.deliver(ctx, entity.InboundMessage{Sender: session, OpCode: opCode, Data: data})
}

// Count returns the number of live matches.
func (that *MatchManager) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.matches)
}

// Shutdown stops every match actor and waits for them to finish.
func (that *MatchManager) Shutdown(ctx context.Context) error {
	that.cancel()

	done := make(chan struct{})
	go func() {
		that.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to stop matches: %w", ctx.Err())
	}
}

func (that *MatchManager) get(matchID string) (*matchActor, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	actor, ok := that.matches[matchID]
	if !ok {
		return nil, apperror.ErrMatchNotFound
	}

	return actor, nil
}

func (that *MatchManager) remove(matchID string) {
	log := that.logger.With("method", "remove", "matchID", matchID)

	that.mu.Lock()
	delete(that.matches, matchID)
	that.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
	defer cancel()

	if err := that.registry.DeleteByID(ctx, matchID); err != nil {
		log.Error("failed to delete match label", "error", err)
	}

	log.Info("match terminated")
}
