package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

// EligibilityPolicy decides which participants may receive points.
type EligibilityPolicy int

const (
	EligibilityRegisteredOnly EligibilityPolicy = iota
	EligibilityEveryone
)

type ScoreConfig struct {
	LeaderboardID string
	WinPoints     int64
	DrawPoints    int64
	Policy        EligibilityPolicy
	Workers       int
	QueueSize     int
}

// Award is one score increment for one participant.
type Award struct {
	OwnerID string
	Points  int64
}

// Awards maps an outcome to score increments: the winner gets winPoints,
// and on a draw every participant gets drawPoints.
func Awards(event entity.ScoreEvent, winPoints, drawPoints int64) []Award {
	var awards []Award

	switch event.Outcome.Kind {
	case entity.OutcomeWin:
		for userID, mark := range event.Marks {
			if mark == event.Outcome.Mark {
				awards = append(awards, Award{OwnerID: userID, Points: winPoints})
			}
		}
	case entity.OutcomeDraw:
		for userID := range event.Marks {
			awards = append(awards, Award{OwnerID: userID, Points: drawPoints})
		}
	case entity.OutcomeNone:
	}

	sort.Slice(awards, func(i, j int) bool { return awards[i].OwnerID < awards[j].OwnerID })

	return awards
}

type ScoreEmitter interface {
	Start(ctx context.Context)
	Submit(event entity.ScoreEvent)
	Process(ctx context.Context, event entity.ScoreEvent)
	Top(ctx context.Context, limit int) ([]entity.LeaderboardRecord, error)
	Close()
}

type accountFinder interface {
	FindByID(ctx context.Context, id string) (*entity.Account, error)
}

type leaderboardRepo interface {
	Increment(ctx context.Context, leaderboardID, ownerID string, score int64) error
	Top(ctx context.Context, leaderboardID string, limit int) ([]entity.LeaderboardRecord, error)
}

type scoreEmitter struct {
	logger      *slog.Logger
	conf        ScoreConfig
	accounts    accountFinder
	leaderboard leaderboardRepo

	queue  chan entity.ScoreEvent
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewScoreEmitter(logger *slog.Logger, accounts accountFinder, leaderboard leaderboardRepo, conf ScoreConfig) ScoreEmitter {
	if conf.Workers <= 0 {
		conf.Workers = 1
	}

	if conf.QueueSize <= 0 {
		conf.QueueSize = 64
	}

	return &scoreEmitter{
		logger:      logger.With("component", "score"),
		conf:        conf,
		accounts:    accounts,
		leaderboard: leaderboard,
		queue:       make(chan entity.ScoreEvent, conf.QueueSize),
	}
}

// Start runs the workers that drain the queue until Close is called.
func (that *scoreEmitter) Start(ctx context.Context) {
	for range that.conf.Workers {
		that.wg.Add(1)

		go func() {
			defer that.wg.Done()

			for event := range that.queue {
				that.Process(ctx, event)
			}
		}()
	}
}

// Submit enqueues an event without blocking; the event is dropped when the queue is full.
func (that *scoreEmitter) Submit(event entity.ScoreEvent) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.closed {
		that.logger.Warn("score emitter is closed, dropping event", "matchID", event.MatchID)
		return
	}

	select {
	case that.queue <- event:
	default:
		that.logger.Warn("score queue is full, dropping event", "matchID", event.MatchID, "error", apperror.ErrQueueFull)
	}
}

func (that *scoreEmitter) Process(ctx context.Context, event entity.ScoreEvent) {
	log := that.logger.With("method", "Process", "matchID", event.MatchID)

	for _, award := range Awards(event, that.conf.WinPoints, that.conf.DrawPoints) {
		if !that.eligible(ctx, award.OwnerID) {
			log.Debug("participant is not eligible for score", "userID", award.OwnerID)
			continue
		}

		if err := that.leaderboard.Increment(ctx, that.conf.LeaderboardID, award.OwnerID, award.Points); err != nil {
			log.Error("failed to write score", "userID", award.OwnerID, "error", err)
			continue
		}

		log.Info("score written", "userID", award.OwnerID, "points", award.Points)
	}
}

func (that *scoreEmitter) eligible(ctx context.Context, userID string) bool {
	if that.conf.Policy == EligibilityEveryone {
		return true
	}

	account, err := that.accounts.FindByID(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return false
	}

	if err != nil {
		that.logger.Error("failed to look up account", "userID", userID, "error", err)
		return false
	}

	return account.IsRegistered()
}

func (that *scoreEmitter) Top(ctx context.Context, limit int) ([]entity.LeaderboardRecord, error) {
	return that.leaderboard.Top(ctx, that.conf.LeaderboardID, limit)
}

// Close stops accepting events and waits for queued ones to be written.
func (that *scoreEmitter) Close() {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return
	}

	that.closed = true
	close(that.queue)
	that.mu.Unlock()

	that.wg.Wait()
}
