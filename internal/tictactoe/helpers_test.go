package tictactoe

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

type testPresence struct {
	userID    string
	sessionID string
}

func (that testPresence) GetUserID() string    { return that.userID }
func (that testPresence) GetSessionID() string { return that.sessionID }

func presence(userID string) testPresence {
	return testPresence{userID: userID, sessionID: userID + "-1"}
}

type sentMessage struct {
	opCode entity.OpCode
	data   []byte
	to     []string
}

type fakeDispatcher struct {
	messages []sentMessage
	labels   []string
}

func (that *fakeDispatcher) BroadcastMessage(opCode entity.OpCode, data []byte, presences []entity.Presence) error {
	to := make([]string, 0, len(presences))
	for _, p := range presences {
		to = append(to, p.GetUserID())
	}

	that.messages = append(that.messages, sentMessage{opCode: opCode, data: data, to: to})

	return nil
}

func (that *fakeDispatcher) MatchLabelUpdate(label string) error {
	that.labels = append(that.labels, label)
	return nil
}

func (that *fakeDispatcher) byOpCode(opCode entity.OpCode) []sentMessage {
	var found []sentMessage
	for _, msg := range that.messages {
		if msg.opCode == opCode {
			found = append(found, msg)
		}
	}

	return found
}

func (that *fakeDispatcher) last() sentMessage {
	return that.messages[len(that.messages)-1]
}

func (that *fakeDispatcher) reset() {
	that.messages = nil
}

type fakeScorer struct {
	events []entity.ScoreEvent
}

func (that *fakeScorer) Submit(event entity.ScoreEvent) {
	that.events = append(that.events, event)
}

type fakeClock struct {
	now time.Time
}

func (that *fakeClock) Now() time.Time {
	return that.now
}

func (that *fakeClock) Advance(d time.Duration) {
	that.now = that.now.Add(d)
}

type fixture struct {
	match      *Match
	dispatcher *fakeDispatcher
	scorer     *fakeScorer
	clock      *fakeClock
	tick       int64
}

func newFixture() *fixture {
	dispatcher := &fakeDispatcher{}
	scorer := &fakeScorer{}
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	match := NewMatch(logger, "match-1", dispatcher, scorer, Options{Now: clock.Now})

	return &fixture{match: match, dispatcher: dispatcher, scorer: scorer, clock: clock}
}

// startWith joins both participants so that the first one holds X.
func (that *fixture) startWith(t *testing.T, first, second entity.Presence) {
	t.Helper()

	require.True(t, that.match.JoinAttempt(first))
	that.match.Join([]entity.Presence{first})
	require.True(t, that.match.JoinAttempt(second))
	that.match.Join([]entity.Presence{second})
	require.True(t, that.match.State().Playing)
}

func (that *fixture) loop(messages ...entity.InboundMessage) bool {
	that.tick++
	return that.match.Loop(that.tick, messages)
}

func move(sender entity.Presence, position int) entity.InboundMessage {
	return entity.InboundMessage{
		Sender: sender,
		OpCode: entity.OpCodeMove,
		Data:   []byte(fmt.Sprintf(`{"position":%d}`, position)),
	}
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(data, &v))

	return v
}
