package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

func (that *Server) AccountHandler(w http.ResponseWriter, r *http.Request) {
	var account entity.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid account payload")
		return
	}

	err := that.accounts.SaveAccount(r.Context(), &account)
	if errors.Is(err, apperror.ErrInvalidAccount) {
		that.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err != nil {
		that.logger.Error("failed to save account", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to save account")

		return
	}

	that.writeJSON(w, http.StatusOK, account)
}
