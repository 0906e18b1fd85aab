package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

func (that *Match) processMessages(messages []entity.InboundMessage, acceptMoves bool) {
	for _, msg := range messages {
		if msg.OpCode != entity.OpCodeMove {
			that.reject(entity.ReasonUnknownMessage, msg.Sender)
			continue
		}

		position, err := entity.ParseMove(msg.Data)
		if err != nil {
			that.logger.Debug("malformed move", "userID", msg.Sender.GetUserID(), "error", err)
			that.reject(entity.ReasonInvalidMove, msg.Sender)

			continue
		}

		if !acceptMoves || !that.state.Playing || that.state.IsFinished() {
			that.reject(entity.ReasonNotInProgress, msg.Sender)
			continue
		}

		that.applyMove(msg.Sender, position)
	}
}

func (that *Match) applyMove(sender entity.Presence, position int) {
	state := that.state

	mark, ok := state.Marks[sender.GetUserID()]
	if !ok || mark != state.Turn {
		that.reject(entity.ReasonNotYourTurn, sender)
		return
	}

	if state.Board[position] != entity.MarkNone {
		that.reject(entity.ReasonCellOccupied, sender)
		return
	}

	state.Board[position] = mark
	state.Turn = mark.Opponent()

	that.broadcast(entity.OpCodeUpdate, entity.UpdateMessage{
		Board: state.Board,
		Turn:  state.Turn,
	})

	outcome := entity.DetermineOutcome(state.Board)
	if !outcome.IsTerminal() {
		return
	}

	that.finishRound(outcome)
}

func (that *Match) finishRound(outcome entity.Outcome) {
	state := that.state
	deadline := that.opts.Now().Add(that.opts.ResetDelay)

	state.Finish(outcome, deadline)

	done := entity.DoneMessage{
		Board:         state.Board,
		Winner:        outcome.Mark,
		ResetDeadline: deadline.UnixMilli(),
	}

	if outcome.Kind == entity.OutcomeWin {
		line := outcome.Line
		done.WinnerPositions = &line
	}

	that.broadcast(entity.OpCodeDone, done)

	if that.scorer != nil {
		that.scorer.Submit(entity.ScoreEvent{
			MatchID: that.id,
			Outcome: outcome,
			Marks:   state.CopyMarks(),
		})
	}

	that.logger.Info("round finished", "outcome", outcome.String())
}
