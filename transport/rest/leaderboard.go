package rest

import (
	"net/http"
	"strconv"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func (that *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxLeaderboardLimit {
			that.writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}

		limit = parsed
	}

	records, err := that.leaderboard.Top(r.Context(), limit)
	if err != nil {
		that.logger.Error("failed to read leaderboard", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to read leaderboard")

		return
	}

	that.writeJSON(w, http.StatusOK, records)
}
