package game

import "time"

// advanceRound is called after every accepted action. It resolves the hand
// on a fold-out, advances the phase when betting is settled, or moves the
// turn pointer to the next player who can act.
func advanceRound(s *TableState, now time.Time) {
	if s.activeCount() <= 1 {
		Resolve(s, now)
		return
	}
	if bettingSettled(s) {
		advancePhase(s, now)
		return
	}
	advanceToNextActingSeat(s)
	s.LastActionTime = now
}

// bettingSettled reports whether every player still able to act this
// street has acted and matched the current bet.
func bettingSettled(s *TableState) bool {
	for _, p := range s.Players {
		if p.Status != StatusActive {
			continue
		}
		if !p.HasActed || p.Bet != s.CurrentBet {
			return false
		}
	}
	return true
}

// advanceToNextActingSeat moves CurrentTurnIndex forward to the next seat
// with Status == active, wrapping around the table. If no such seat
// exists it sets CurrentTurnIndex to -1.
func advanceToNextActingSeat(s *TableState) {
	n := len(s.Players)
	if n == 0 {
		s.CurrentTurnIndex = -1
		return
	}
	start := s.CurrentTurnIndex
	if start < 0 {
		start = 0
	}
	for i := 1; i <= n; i++ {
		seat := (start + i) % n
		p := s.playerBySeat(seat)
		if p != nil && p.Status == StatusActive {
			s.CurrentTurnIndex = seat
			return
		}
	}
	s.CurrentTurnIndex = -1
}

// advancePhase resets round-local betting state, deals the next street's
// community cards, and either sets the new first-to-act seat or continues
// advancing when too few players can still act (runout with all-ins).
func advancePhase(s *TableState, now time.Time) {
	for _, p := range s.Players {
		p.Bet = 0
		p.HasActed = p.Status != StatusActive
	}
	s.CurrentBet = 0

	switch s.Phase {
	case PhasePreflop:
		dealCommunity(s, 3)
		s.Phase = PhaseFlop
	case PhaseFlop:
		dealCommunity(s, 1)
		s.Phase = PhaseTurn
	case PhaseTurn:
		dealCommunity(s, 1)
		s.Phase = PhaseRiver
	case PhaseRiver:
		Resolve(s, now)
		return
	}

	if s.actingCount() < 2 {
		if s.Phase == PhaseRiver {
			Resolve(s, now)
			return
		}
		advancePhase(s, now)
		return
	}

	setFirstToActPostflop(s)
}

func dealCommunity(s *TableState, n int) {
	dealt, err := s.Deck.Deal(n)
	if err != nil {
		panic(err)
	}
	s.CommunityCards = append(s.CommunityCards, dealt...)
}

// setFirstToActPostflop points the turn at the first active seat after
// the dealer.
func setFirstToActPostflop(s *TableState) {
	n := len(s.Players)
	if n == 0 {
		s.CurrentTurnIndex = -1
		return
	}
	for i := 1; i <= n; i++ {
		seat := (s.DealerIndex + i) % n
		p := s.playerBySeat(seat)
		if p != nil && p.Status == StatusActive {
			s.CurrentTurnIndex = seat
			return
		}
	}
	s.CurrentTurnIndex = -1
}
