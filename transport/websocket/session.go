package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Frame is the envelope of every websocket message in both directions.
type Frame struct {
	OpCode entity.OpCode   `json:"op_code"`
	Data   json.RawMessage `json:"data,omitempty"`
	Action string          `json:"action,omitempty"`
}

// session is one websocket connection joined to one match.
type session struct {
	userID    string
	sessionID string
	matchID   string
	logger    *slog.Logger

	conn *websocket.Conn
	send chan []byte

	closeOnce   sync.Once
	closed      chan struct{}
	closeCode   int
	closeReason string
}

func newSession(logger *slog.Logger, conn *websocket.Conn, matchID, userID, sessionID string) *session {
	return &session{
		userID:    userID,
		sessionID: sessionID,
		matchID:   matchID,
		logger:    logger.With("userID", userID, "sessionID", sessionID, "matchID", matchID),
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		closed:    make(chan struct{}),
	}
}

func (that *session) GetUserID() string {
	return that.userID
}

func (that *session) GetSessionID() string {
	return that.sessionID
}

// Send queues a frame for the write pump. It never blocks.
func (that *session) Send(opCode entity.OpCode, data []byte) bool {
	frame, err := json.Marshal(Frame{OpCode: opCode, Data: data})
	if err != nil {
		that.logger.Error("failed to marshal frame", "error", err)
		return false
	}

	select {
	case <-that.closed:
		return false
	default:
	}

	select {
	case that.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which then sends a close frame with code and reason.
// Only the first call has an effect.
func (that *session) Close(code int, reason string) {
	that.closeOnce.Do(func() {
		that.closeCode = code
		that.closeReason = reason
		close(that.closed)
	})
}

func (that *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case frame := <-that.send:
			if err := that.write(websocket.TextMessage, frame); err != nil {
				that.logger.Debug("failed to write frame", "error", err)
				return
			}
		case <-ticker.C:
			if err := that.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-that.closed:
			that.flush()

			_ = that.write(websocket.CloseMessage, websocket.FormatCloseMessage(that.closeCode, that.closeReason))

			return
		}
	}
}

// flush writes whatever is still queued, so a final Rejected reaches the client before the close frame.
func (that *session) flush() {
	for {
		select {
		case frame := <-that.send:
			if err := that.write(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (that *session) write(messageType int, data []byte) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return that.conn.WriteMessage(messageType, data)
}

// readPump delivers inbound frames to handle until the connection fails or handle asks to stop.
func (that *session) readPump(handle func(frame Frame) bool) {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				that.logger.Warn("websocket read error", "error", err)
			}

			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var frame Frame
		if err = json.Unmarshal(message, &frame); err != nil {
			that.logger.Debug("malformed frame", "error", err)
			that.reject(entity.ReasonUnknownMessage)

			continue
		}

		if !handle(frame) {
			return
		}
	}
}

func (that *session) reject(reason string) {
	data, err := json.Marshal(entity.RejectedMessage{Error: reason})
	if err != nil {
		return
	}

	that.Send(entity.OpCodeRejected, data)
}
