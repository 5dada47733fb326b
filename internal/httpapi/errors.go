package httpapi

import (
	"errors"
	"net/http"

	"agentpoker/internal/game"
	"agentpoker/internal/sanitizer"
	"agentpoker/internal/store"
	"agentpoker/internal/tableactor"
)

// writeEngineError maps an error surfaced by the table actor, the
// identity store, or the sanitizer to the stable HTTP status taxonomy in
// the error handling design: validation and precondition errors both
// collapse to 400, since neither changes any state and the client
// contract (retry after a fresh GET /table/state) is identical for both.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, tableactor.ErrTableNotFound):
		WriteHTTPError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNameTaken):
		WriteHTTPError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sanitizer.ErrFiltered):
		WriteHTTPError(w, http.StatusBadRequest, "message_filtered")
	case isClientFault(err):
		WriteHTTPError(w, http.StatusBadRequest, err.Error())
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

// isClientFault reports whether err is one of the engine's well-known
// ValidationError/PreconditionError sentinels, all of which map to 400.
func isClientFault(err error) bool {
	for _, sentinel := range []error{
		game.ErrTableFull, game.ErrAlreadySeated, game.ErrInsufficientBuyIn,
		game.ErrNotSeated, game.ErrInHandCannotLeave, game.ErrNotBetweenHands,
		game.ErrAlreadyInProgress, game.ErrNotEnoughPlayers, game.ErrNotYourTurn,
		game.ErrNotActive, game.ErrWrongPhase, game.ErrBetToMatch,
		game.ErrBelowMinRaise, game.ErrInsufficientChips, game.ErrUnknownAction,
		store.ErrRebuyNotAllowed, store.ErrNoRebuysRemaining,
		sanitizer.ErrInvalidName, sanitizer.ErrEmptyAfterCleaning, sanitizer.ErrTooLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
