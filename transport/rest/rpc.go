package rest

import (
	"net/http"
)

const sessionCookie = "user_session"

type matchIDsResponse struct {
	MatchIDs []string `json:"matchIds"`
}

// FindMatchHandler returns open matches, creating one when needed.
func (that *Server) FindMatchHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "FindMatchHandler")

	matchIDs, err := that.matchmaker.FindMatch(r.Context())
	if err != nil {
		log.Error("failed to find match", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to find match")

		return
	}

	that.writeJSON(w, http.StatusOK, matchIDsResponse{MatchIDs: matchIDs})
}

// FindOngoingMatchHandler returns the matches the caller still belongs to.
func (that *Server) FindOngoingMatchHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "FindOngoingMatchHandler")

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			userID = cookie.Value
		}
	}

	if userID == "" {
		that.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	matchIDs, err := that.matchmaker.FindOngoingMatch(r.Context(), userID)
	if err != nil {
		log.Error("failed to find ongoing match", "userID", userID, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to find ongoing match")

		return
	}

	that.writeJSON(w, http.StatusOK, matchIDsResponse{MatchIDs: matchIDs})
}
