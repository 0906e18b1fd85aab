package tictactoe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

func TestMatch_StartRound(t *testing.T) {
	// Given: a fresh match
	f := newFixture()
	p1, p2 := presence("p1"), presence("p2")

	// When: two participants join
	f.startWith(t, p1, p2)

	// Then: the label is closed and the first participant plays X
	assert.Equal(t, `{"open":false,"users":["p1","p2"]}`, f.dispatcher.labels[len(f.dispatcher.labels)-1])

	starts := f.dispatcher.byOpCode(entity.OpCodeStart)
	require.Len(t, starts, 1)
	assert.Equal(t, []string{"p1", "p2"}, starts[0].to)

	start := decode[entity.StartMessage](t, starts[0].data)
	assert.Equal(t, map[string]entity.Mark{"p1": entity.MarkX, "p2": entity.MarkO}, start.Marks)
	assert.Equal(t, entity.MarkX, start.Turn)
	assert.Equal(t, entity.Board{}, start.Board)
}

func TestMatch_WinScenario(t *testing.T) {
	// Given: a started match
	f := newFixture()
	p1, p2 := presence("p1"), presence("p2")
	f.startWith(t, p1, p2)
	f.dispatcher.reset()

	// When: X completes the top row
	ok := f.loop(move(p1, 0), move(p2, 3), move(p1, 1), move(p2, 4), move(p1, 2))

	// Then: five updates are followed by a single done message
	require.True(t, ok)
	assert.Len(t, f.dispatcher.byOpCode(entity.OpCodeUpdate), 5)

	last := f.dispatcher.last()
	require.Equal(t, entity.OpCodeDone, last.opCode)

	done := decode[entity.DoneMessage](t, last.data)
	assert.Equal(t, entity.MarkX, done.Winner)
	require.NotNil(t, done.WinnerPositions)
	assert.Equal(t, entity.Line{0, 1, 2}, *done.WinnerPositions)
	assert.Equal(t, f.clock.now.Add(DefaultResetDelay).UnixMilli(), done.ResetDeadline)

	require.Len(t, f.scorer.events, 1)
	assert.Equal(t, entity.Win(entity.MarkX, entity.Line{0, 1, 2}), f.scorer.events[0].Outcome)
	assert.Equal(t, "match-1", f.scorer.events[0].MatchID)
	assert.False(t, f.match.State().Playing)
}

func TestMatch_DrawScenario(t *testing.T) {
	// Given: a started match
	f := newFixture()
	p1, p2 := presence("p1"), presence("p2")
	f.startWith(t, p1, p2)
	f.dispatcher.reset()

	// When: the board fills without a line
	f.loop(
		move(p1, 0), move(p2, 1), move(p1, 2),
		move(p2, 4), move(p1, 3), move(p2, 5),
		move(p1, 7), move(p2, 6), move(p1, 8),
	)

	// Then: a draw is announced without winning positions
	last := f.dispatcher.last()
	require.Equal(t, entity.OpCodeDone, last.opCode)

	done := decode[entity.DoneMessage](t, last.data)
	assert.Equal(t, entity.MarkNone, done.Winner)
	assert.Nil(t, done.WinnerPositions)

	require.Len(t, f.scorer.events, 1)
	assert.Equal(t, entity.Draw(), f.scorer.events[0].Outcome)
}

func TestMatch_Rejections(t *testing.T) {
	p1, p2 := presence("p1"), presence("p2")

	tests := []struct {
		name     string
		messages []entity.InboundMessage
		reason   string
		to       string
	}{
		{
			name:     "wrong turn",
			messages: []entity.InboundMessage{move(p2, 0)},
			reason:   entity.ReasonNotYourTurn,
			to:       "p2",
		},
		{
			name:     "occupied cell",
			messages: []entity.InboundMessage{move(p1, 4), move(p2, 4)},
			reason:   entity.ReasonCellOccupied,
			to:       "p2",
		},
		{
			name:     "malformed payload",
			messages: []entity.InboundMessage{{Sender: p1, OpCode: entity.OpCodeMove, Data: []byte("nope")}},
			reason:   entity.ReasonInvalidMove,
			to:       "p1",
		},
		{
			name:     "position out of range",
			messages: []entity.InboundMessage{move(p1, 9)},
			reason:   entity.ReasonInvalidMove,
			to:       "p1",
		},
		{
			name:     "unknown opcode",
			messages: []entity.InboundMessage{{Sender: p1, OpCode: entity.OpCodeStart, Data: []byte("{}")}},
			reason:   entity.ReasonUnknownMessage,
			to:       "p1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a started match
			f := newFixture()
			f.startWith(t, p1, p2)
			f.dispatcher.reset()

			// When: an invalid message arrives
			f.loop(tt.messages...)

			// Then: only the sender is told why
			last := f.dispatcher.last()
			assert.Equal(t, entity.OpCodeRejected, last.opCode)
			assert.Equal(t, []string{tt.to}, last.to)
			assert.Equal(t, tt.reason, decode[entity.RejectedMessage](t, last.data).Error)
		})
	}
}

func TestMatch_MovesAfterRoundEnds(t *testing.T) {
	// Given: a started match
	f := newFixture()
	p1, p2 := presence("p1"), presence("p2")
	f.startWith(t, p1, p2)
	f.dispatcher.reset()

	// When: a move is queued behind the winning move
	f.loop(move(p1, 0), move(p2, 3), move(p1, 1), move(p2, 4), move(p1, 2), move(p2, 5))

	// Then: the trailing move is rejected and the board keeps the winning state
	last := f.dispatcher.last()
	assert.Equal(t, entity.OpCodeRejected, last.opCode)
	assert.Equal(t, []string{"p2"}, last.to)
	assert.Equal(t, entity.ReasonNotInProgress, decode[entity.RejectedMessage](t, last.data).Error)
	assert.Equal(t, entity.MarkNone, f.match.State().Board[5])
}

func TestMatch_AutoReset(t *testing.T) {
	// Given: a finished round
	f := newFixture()
	p1, p2 := presence("p1"), presence("p2")
	f.startWith(t, p1, p2)
	f.loop(move(p1, 0), move(p2, 3), move(p1, 1), move(p2, 4), move(p1, 2))
	f.dispatcher.reset()

	t.Run("waits for the deadline", func(t *testing.T) {
		// When: time passes but the deadline is not reached
		f.clock.Advance(DefaultResetDelay - time.Second)
		ok := f.loop(move(p2, 8))

		// Then: nothing restarts and the move is rejected
		assert.True(t, ok)
		assert.Empty(t, f.dispatcher.byOpCode(entity.OpCodeStart))
		assert.Equal(t, entity.ReasonNotInProgress, decode[entity.RejectedMessage](t, f.dispatcher.last().data).Error)
	})

	t.Run("restarts with swapped marks", func(t *testing.T) {
		// When: the deadline passes, with a move arriving on the same tick
		f.clock.Advance(time.Second)
		ok := f.loop(move(p2, 4))

		// Then: a new round starts with marks exchanged and the early move is rejected
		require.True(t, ok)

		starts := f.dispatcher.byOpCode(entity.OpCodeStart)
		require.Len(t, starts, 1)

		start := decode[entity.StartMessage](t, starts[0].data)
		assert.Equal(t, map[string]entity.Mark{"p1": entity.MarkO, "p2": entity.MarkX}, start.Marks)
		assert.Equal(t, entity.Board{}, start.Board)
		assert.Equal(t, entity.MarkX, start.Turn)
		assert.Equal(t, entity.ReasonNotInProgress, decode[entity.RejectedMessage](t, f.dispatcher.last().data).Error)
		assert.True(t, f.match.State().Playing)
	})

	t.Run("new X moves first", func(t *testing.T) {
		// When: the participant now holding X moves
		f.dispatcher.reset()
		f.loop(move(p2, 4))

		// Then: the move is accepted
		require.Equal(t, entity.OpCodeUpdate, f.dispatcher.last().opCode)
		assert.Equal(t, entity.MarkX, f.match.State().Board[4])
	})
}

func TestMatch_ResetWithMissingParticipant(t *testing.T) {
	// Given: a finished round where one participant dropped
	f := newFixture()
	p1, p2 := presence("p1"), presence("p2")
	f.startWith(t, p1, p2)
	f.loop(move(p1, 0), move(p2, 3), move(p1, 1), move(p2, 4), move(p1, 2))
	f.match.Leave([]entity.Departure{{Presence: p2, Reason: entity.LeaveReasonDisconnect}})

	// When: the reset deadline passes
	f.clock.Advance(DefaultResetDelay)
	ok := f.loop()

	// Then: the match announces a forfeit and terminates
	assert.False(t, ok)
	assert.Equal(t, entity.OpCodeRejected, f.dispatcher.last().opCode)
	assert.Equal(t, []string{"p1"}, f.dispatcher.last().to)
}

func TestMatch_EmptyTeardown(t *testing.T) {
	// Given: a match nobody joined
	f := newFixture()

	// When: ticking up to the limit
	for i := 0; i < DefaultEmptyTickLimit; i++ {
		require.True(t, f.loop())
	}

	// Then: the next tick terminates it
	assert.False(t, f.loop())
}

func TestMatch_EmptyTicksResetOnJoin(t *testing.T) {
	// Given: a match that was empty for a while
	f := newFixture()
	for i := 0; i < DefaultEmptyTickLimit; i++ {
		require.True(t, f.loop())
	}

	// When: someone joins
	f.match.Join([]entity.Presence{presence("p1")})

	// Then: the counter starts over
	assert.True(t, f.loop())
	assert.Equal(t, 0, f.match.State().EmptyTicks)
}
