package game

// Join seats a new player at the table. Seats are assigned in insertion
// order, immediately after the current highest SeatIndex.
func Join(s *TableState, agentID, name string, chips int64) error {
	if s.findByAgent(agentID) != nil {
		return ErrAlreadySeated
	}
	if len(s.Players) >= s.MaxSeats {
		return ErrTableFull
	}
	if chips < s.MinBuyInBlinds*s.BigBlind {
		return ErrInsufficientBuyIn
	}
	seat := len(s.Players)
	s.Players = append(s.Players, &Player{
		AgentID:   agentID,
		Name:      name,
		Chips:     chips,
		Status:    StatusActive,
		SeatIndex: seat,
	})
	return nil
}

// Leave removes a seated player. Disallowed while the player is still
// contesting the current hand.
func Leave(s *TableState, agentID string) error {
	p := s.findByAgent(agentID)
	if p == nil {
		return ErrNotSeated
	}
	if (p.Status == StatusActive || p.Status == StatusAllIn) && s.Phase != PhaseWaiting && s.Phase != PhaseShowdown {
		return ErrInHandCannotLeave
	}
	removeAndReseat(s, agentID)
	return nil
}

// SitOut marks a seated player as not to be dealt into the next hand.
// Only permitted between hands.
func SitOut(s *TableState, agentID string) error {
	if s.Phase != PhaseWaiting && s.Phase != PhaseShowdown {
		return ErrNotBetweenHands
	}
	p := s.findByAgent(agentID)
	if p == nil {
		return ErrNotSeated
	}
	p.Status = StatusSittingOut
	return nil
}

// SitIn resumes a sitting-out player. Only permitted between hands.
func SitIn(s *TableState, agentID string) error {
	if s.Phase != PhaseWaiting && s.Phase != PhaseShowdown {
		return ErrNotBetweenHands
	}
	p := s.findByAgent(agentID)
	if p == nil {
		return ErrNotSeated
	}
	if p.Status != StatusSittingOut {
		return nil
	}
	p.Status = StatusActive
	p.SitOutCount = 0
	return nil
}

// removeAndReseat drops agentID and compacts SeatIndex to stay contiguous.
func removeAndReseat(s *TableState, agentID string) {
	out := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.AgentID == agentID {
			continue
		}
		out = append(out, p)
	}
	for i, p := range out {
		p.SeatIndex = i
	}
	s.Players = out
}
