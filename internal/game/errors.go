package game

import "errors"

var (
	ErrTableFull           = errors.New("table_full")
	ErrAlreadySeated       = errors.New("already_seated")
	ErrInsufficientBuyIn   = errors.New("insufficient_buy_in")
	ErrNotSeated           = errors.New("not_seated")
	ErrInHandCannotLeave   = errors.New("in_hand_cannot_leave")
	ErrNotBetweenHands     = errors.New("not_between_hands")
	ErrAlreadyInProgress   = errors.New("hand_already_in_progress")
	ErrNotEnoughPlayers    = errors.New("not_enough_players")
	ErrNotYourTurn         = errors.New("not_your_turn")
	ErrNotActive           = errors.New("not_active")
	ErrWrongPhase          = errors.New("wrong_phase")
	ErrBetToMatch          = errors.New("bet_to_match")
	ErrBelowMinRaise       = errors.New("below_min_raise")
	ErrInsufficientChips   = errors.New("insufficient_chips")
	ErrUnknownAction       = errors.New("unknown_action")
	ErrDeckExhausted       = errors.New("deck_exhausted")
)
