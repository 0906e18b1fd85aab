package tictactoe

import (
	"slices"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

// schedule does the per-tick bookkeeping that precedes move processing.
// It returns false when the match must terminate.
func (that *Match) schedule(tick int64) bool {
	log := that.logger.With("method", "schedule", "tick", tick)
	state := that.state
	connected := state.ConnectedCount()

	if connected == 0 {
		state.EmptyTicks++
	} else {
		state.EmptyTicks = 0
	}

	if state.EmptyTicks > that.opts.EmptyTickLimit {
		log.Info("match is empty, terminating")
		return false
	}

	if connected == 1 && !state.Label.Open {
		state.OpenTicks++
	} else {
		state.OpenTicks = 0
	}

	if state.OpenTicks >= that.opts.OpenTickLimit {
		that.forfeitAbsent()
	}

	if state.IsFinished() && !that.opts.Now().Before(state.ResetDeadline) {
		return that.restartRound()
	}

	return true
}

// forfeitAbsent reopens the match once a disconnected participant stayed away too long.
func (that *Match) forfeitAbsent() {
	state := that.state

	var absent string
	if len(state.DisconnectedUsers) > 0 {
		absent = state.DisconnectedUsers[0]
	}

	state.Label.Open = true
	state.Label.Users = slices.Clone(state.JoinOrder)
	that.publishLabel()

	state.DisconnectedUsers = nil
	state.OpenTicks = 0
	state.Playing = false
	state.ResetBoard()

	for userID := range state.Marks {
		if _, ok := state.Presences[userID]; !ok {
			delete(state.Marks, userID)
		}
	}

	that.broadcast(entity.OpCodeRejected, entity.RejectedMessage{Error: entity.ReasonForfeit, UserID: absent})

	that.logger.Info("absent participant forfeited", "userID", absent)
}

// restartRound starts the next round with swapped marks after the reset deadline.
func (that *Match) restartRound() bool {
	state := that.state

	state.ResetBoard()
	state.Playing = true
	state.SwitchMarks()

	if state.ConnectedCount() == 2 {
		that.broadcast(entity.OpCodeStart, entity.StartMessage{
			Board: state.Board,
			Marks: state.CopyMarks(),
			Turn:  state.Turn,
		})

		that.logger.Info("round restarted")

		return true
	}

	that.broadcast(entity.OpCodeRejected, entity.RejectedMessage{Error: entity.ReasonForfeit})
	that.logger.Info("not enough participants to restart, terminating")

	return false
}
