package game

import "time"

// Timeout synthesizes a fold for the player on the clock if the action
// timeout has elapsed. Idempotent: once the fold is applied, the turn
// pointer moves on and a repeated call with the same now has nothing to
// act on.
func Timeout(s *TableState, now time.Time) bool {
	if s.Phase != PhasePreflop && s.Phase != PhaseFlop && s.Phase != PhaseTurn && s.Phase != PhaseRiver {
		return false
	}
	if s.CurrentTurnIndex < 0 {
		return false
	}
	if now.Sub(s.LastActionTime) < time.Duration(s.ActionTimeoutMs)*time.Millisecond {
		return false
	}
	p := s.currentPlayer()
	if p == nil || p.Status != StatusActive {
		return false
	}
	_ = Act(s, p.AgentID, ActionFold, 0, now)
	return true
}
