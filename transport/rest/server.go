package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

type matchmaker interface {
	FindMatch(ctx context.Context) ([]string, error)
	FindOngoingMatch(ctx context.Context, userID string) ([]string, error)
}

type leaderboard interface {
	Top(ctx context.Context, limit int) ([]entity.LeaderboardRecord, error)
}

type accountService interface {
	SaveAccount(ctx context.Context, account *entity.Account) error
}

type Server struct {
	logger *slog.Logger

	matchmaker  matchmaker
	leaderboard leaderboard
	accounts    accountService
}

func New(logger *slog.Logger, matchmaker matchmaker, leaderboard leaderboard, accounts accountService) *Server {
	return &Server{
		logger:      logger.With("component", "rest"),
		matchmaker:  matchmaker,
		leaderboard: leaderboard,
		accounts:    accounts,
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", that.PingHandler)
	mux.HandleFunc("POST /rpc/find_match", that.FindMatchHandler)
	mux.HandleFunc("POST /rpc/find_ongoing_match", that.FindOngoingMatchHandler)
	mux.HandleFunc("GET /leaderboard", that.LeaderboardHandler)
	mux.HandleFunc("POST /account", that.AccountHandler)

	return mux
}

// Start - starts the HTTP server and stops it when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, errorResponse{Error: message})
}
