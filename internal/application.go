package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/config"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/repository"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/service"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-match-server/transport/rest"
	"github.com/rocketscienceinc/tictactoe-match-server/transport/websocket"
)

var (
	ErrAddrNotFound       = errors.New("redis address string is empty")
	ErrUnknownLeaderboard = errors.New("unknown leaderboard driver")
)

const shutdownTimeout = 10 * time.Second

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	leaderboardRepo, closeLeaderboard, err := newLeaderboardRepository(ctx, conf, redisStorage)
	if err != nil {
		return err
	}
	defer closeLeaderboard()

	labelRepo := repository.NewLabelRepository(redisStorage.Connection)
	accountRepo := repository.NewAccountRepository(sqliteStorage.Connection)

	accountService := service.NewAccountService(accountRepo)

	scoreEmitter := service.NewScoreEmitter(logger, accountRepo, leaderboardRepo, scoreConfig(conf.Score))
	scoreEmitter.Start(context.WithoutCancel(ctx))
	defer scoreEmitter.Close()

	matchManager := usecase.NewMatchManager(logger, labelRepo, scoreEmitter, usecase.MatchConfig{
		TickInterval:   conf.Match.TickInterval(),
		ResetDelay:     conf.Match.ResetDelay,
		EmptyTickLimit: conf.Match.EmptyTickLimit,
		OpenTickLimit:  conf.Match.OpenTickLimit,
	})

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err = matchManager.Shutdown(shutdownCtx); err != nil {
			log.Error("could not stop matches", "error", err)
		}
	}()

	matchmaker := service.NewMatchmakerService(logger, labelRepo, matchManager, conf.Match.ListLimit)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, matchmaker, scoreEmitter, accountService)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, matchManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newLeaderboardRepository picks the leaderboard store named in the config.
func newLeaderboardRepository(ctx context.Context, conf *config.Config, redisStorage *storage.RedisStorage) (repository.LeaderboardRepository, func(), error) {
	switch conf.Leaderboard.Driver {
	case config.LeaderboardDriverRedis, "":
		return repository.NewLeaderboardRepository(redisStorage.Connection), func() {}, nil
	case config.LeaderboardDriverPostgres:
		pg, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		if err = pg.Init(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, fmt.Errorf("could not init postgres storage: %w", err)
		}

		return repository.NewPostgresLeaderboardRepository(pg.Connection), func() { _ = pg.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownLeaderboard, conf.Leaderboard.Driver)
	}
}

func scoreConfig(conf config.Score) service.ScoreConfig {
	policy := service.EligibilityEveryone
	if conf.RequireRegistered {
		policy = service.EligibilityRegisteredOnly
	}

	return service.ScoreConfig{
		LeaderboardID: conf.LeaderboardID,
		WinPoints:     conf.WinPoints,
		DrawPoints:    conf.DrawPoints,
		Policy:        policy,
		Workers:       conf.Workers,
		QueueSize:     conf.QueueSize,
	}
}
