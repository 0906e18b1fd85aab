package tictactoe

import (
	"slices"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

// JoinAttempt accepts a reconnecting participant, or anyone while the match is open
// and has a free slot.
func (that *Match) JoinAttempt(presence entity.Presence) bool {
	userID := presence.GetUserID()

	if that.state.IsDisconnected(userID) {
		return true
	}

	// a second session of a connected participant replaces the first one
	if _, ok := that.state.Presences[userID]; ok {
		return true
	}

	return that.state.Label.Open && that.state.ConnectedCount() < 2
}

// Join records accepted participants, resynchronizes the ones reconnecting and starts
// the round once two participants are connected.
func (that *Match) Join(presences []entity.Presence) {
	log := that.logger.With("method", "Join")

	for _, presence := range presences {
		userID := presence.GetUserID()
		rejoin := that.state.IsDisconnected(userID)

		that.state.AddPresence(presence)

		if !rejoin {
			log.Debug("participant joined", "userID", userID)
			continue
		}

		that.state.RemoveDisconnected(userID)
		that.unicast(entity.OpCodeUpdate, that.resyncMessage(), presence)

		log.Info("participant reconnected", "userID", userID)
	}

	if that.state.ConnectedCount() == 2 && !that.state.Playing && that.state.Label.Open {
		that.startRound()
	}
}

// Leave applies departures. A voluntary leave forfeits the round; anything else freezes
// the round until the participant reconnects or the open tick limit is reached.
func (that *Match) Leave(departures []entity.Departure) {
	log := that.logger.With("method", "Leave")

	for _, departure := range departures {
		userID := departure.Presence.GetUserID()

		current, ok := that.state.Presences[userID]
		if !ok || current.GetSessionID() != departure.Presence.GetSessionID() {
			log.Debug("ignoring stale departure", "userID", userID)
			continue
		}

		if departure.Reason == entity.LeaveReasonLeave {
			that.forfeit(userID)
			continue
		}

		that.state.RemovePresence(userID)

		// nobody holds a committed slot while the match is open
		if that.state.Label.Open {
			log.Debug("participant left open match", "userID", userID)
			continue
		}

		if !that.state.IsDisconnected(userID) {
			that.state.DisconnectedUsers = append(that.state.DisconnectedUsers, userID)
		}

		log.Info("participant disconnected", "userID", userID)
	}
}

func (that *Match) startRound() {
	that.state.Label.Open = false
	that.state.Label.Users = slices.Clone(that.state.JoinOrder)
	that.publishLabel()

	that.state.ResetBoard()
	that.state.Playing = true
	that.state.AssignMarks()

	that.broadcast(entity.OpCodeStart, entity.StartMessage{
		Board: that.state.Board,
		Marks: that.state.CopyMarks(),
		Turn:  entity.MarkX,
	})

	that.logger.Info("round started", "users", that.state.Label.Users)
}

func (that *Match) forfeit(userID string) {
	that.state.Label.Open = true
	that.state.Label.Users = slices.DeleteFunc(slices.Clone(that.state.Label.Users), func(id string) bool { return id == userID })
	that.publishLabel()

	that.state.Playing = false
	that.state.ResetBoard()
	that.state.RemovePresence(userID)
	delete(that.state.Marks, userID)

	that.broadcast(entity.OpCodeRejected, entity.RejectedMessage{Error: entity.ReasonForfeit, UserID: userID})

	that.logger.Info("participant forfeited", "userID", userID)
}

func (that *Match) resyncMessage() entity.UpdateMessage {
	msg := entity.UpdateMessage{
		Board:           that.state.Board,
		Turn:            that.state.Turn,
		Marks:           that.state.CopyMarks(),
		WinningPosition: that.state.WinningPosition,
		ResetDeadline:   that.state.ResetDeadlineMillis(),
	}

	if that.state.Winner != entity.MarkNone {
		winner := that.state.Winner
		msg.Winner = &winner
	}

	return msg
}
