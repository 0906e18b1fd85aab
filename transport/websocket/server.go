package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/usecase"
)

const (
	sessionCookie = "user_session"
	actionLeave   = "leave"
)

type matchManager interface {
	Join(ctx context.Context, matchID string, session usecase.Session) (<-chan struct{}, error)
	Leave(ctx context.Context, matchID string, session usecase.Session, reason entity.LeaveReason) error
	SendMessage(ctx context.Context, matchID string, session usecase.Session, opCode entity.OpCode, data []byte) error
}

type Server struct {
	logger   *slog.Logger
	matches  matchManager
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, matches matchManager) *Server {
	return &Server{
		logger:  logger.With("component", "websocket"),
		matches: matches,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", that.ServeWS)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
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

// ServeWS upgrades the request and joins the connection to the match named by match_id.
func (that *Server) ServeWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeWS")

	matchID := req.URL.Query().Get("match_id")
	if matchID == "" {
		http.Error(writer, "match_id is required", http.StatusBadRequest)
		return
	}

	header := http.Header{}
	userID := that.identify(req, header)

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sess := newSession(that.logger, conn, matchID, userID, uuid.NewString())
	go sess.writePump()

	ctx := context.Background()

	ended, err := that.matches.Join(ctx, matchID, sess)
	if err != nil {
		log.Info("join refused", "matchID", matchID, "userID", userID, "error", err)
		sess.Close(websocket.ClosePolicyViolation, closeReason(err))

		return
	}

	log.Info("session joined match", "matchID", matchID, "userID", userID)

	go func() {
		select {
		case <-ended:
			sess.Close(websocket.CloseNormalClosure, "match ended")
		case <-sess.closed:
		}
	}()

	left := false
	sess.readPump(func(frame Frame) bool {
		if frame.Action == actionLeave {
			left = true
			return false
		}

		if err := that.matches.SendMessage(ctx, matchID, sess, frame.OpCode, frame.Data); err != nil {
			log.Debug("failed to deliver message", "error", err)
			return false
		}

		return true
	})

	reason := entity.LeaveReasonDisconnect
	if left {
		reason = entity.LeaveReasonLeave
	}

	if err = that.matches.Leave(ctx, matchID, sess, reason); err != nil && !errors.Is(err, apperror.ErrMatchNotFound) {
		log.Error("failed to leave match", "error", err)
	}

	sess.Close(websocket.CloseNormalClosure, "")
}

// identify takes the identity from user_id, then the session cookie, and issues a new cookie otherwise.
func (that *Server) identify(req *http.Request, header http.Header) string {
	if userID := req.URL.Query().Get("user_id"); userID != "" {
		return userID
	}

	if cookie, err := req.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	cookie := &http.Cookie{
		Name:    sessionCookie,
		Value:   uuid.NewString(),
		Expires: time.Now().Add(24 * time.Hour),
		Path:    "/ws",
	}
	header.Add("Set-Cookie", cookie.String())

	that.logger.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value
}

func closeReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrMatchNotFound):
		return "match not found"
	case errors.Is(err, apperror.ErrJoinRejected):
		return "match is full"
	default:
		return "join failed"
	}
}
