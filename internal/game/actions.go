package game

import "time"

// Act applies one betting decision from the player whose turn it is.
func Act(s *TableState, agentID string, action ActionType, amount int64, now time.Time) error {
	if s.Phase != PhasePreflop && s.Phase != PhaseFlop && s.Phase != PhaseTurn && s.Phase != PhaseRiver {
		return ErrWrongPhase
	}
	p := s.findByAgent(agentID)
	if p == nil {
		return ErrNotSeated
	}
	if p.SeatIndex != s.CurrentTurnIndex {
		return ErrNotYourTurn
	}
	if p.Status != StatusActive {
		return ErrNotActive
	}

	switch action {
	case ActionFold:
		p.Status = StatusFolded
		p.HasActed = true
	case ActionCheck:
		if s.CurrentBet != p.Bet {
			return ErrBetToMatch
		}
		p.HasActed = true
	case ActionCall:
		need := s.CurrentBet - p.Bet
		if need > p.Chips {
			need = p.Chips
		}
		contribute(s, p, need)
		p.HasActed = true
	case ActionRaise:
		if err := applyRaise(s, p, amount); err != nil {
			return err
		}
	case ActionAllIn:
		need := p.Chips
		prevBet := s.CurrentBet
		contribute(s, p, need)
		if p.Bet > prevBet {
			s.CurrentBet = p.Bet
			clearOtherHasActed(s, p)
		}
		p.HasActed = true
	default:
		return ErrUnknownAction
	}

	s.logAction(p, action, amount, now)
	advanceRound(s, now)
	return nil
}

// applyRaise validates and applies a raise to a new currentBet of amount.
// Min raise is 2x the existing currentBet, unless the player is going
// all-in for less.
func applyRaise(s *TableState, p *Player, amount int64) error {
	need := amount - p.Bet
	if need <= 0 || need > p.Chips {
		return ErrInsufficientChips
	}
	isAllIn := need == p.Chips
	minNewBet := s.CurrentBet * 2
	if s.CurrentBet == 0 {
		minNewBet = s.BigBlind
	}
	if amount < minNewBet && !isAllIn {
		return ErrBelowMinRaise
	}
	contribute(s, p, need)
	s.CurrentBet = p.Bet
	p.HasActed = true
	clearOtherHasActed(s, p)
	return nil
}

func contribute(s *TableState, p *Player, amount int64) {
	if amount <= 0 {
		return
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	s.Pot += amount
	if p.Chips == 0 {
		p.Status = StatusAllIn
	}
}

func clearOtherHasActed(s *TableState, raiser *Player) {
	for _, p := range s.Players {
		if p == raiser {
			continue
		}
		if p.Status == StatusActive {
			p.HasActed = false
		}
	}
}

func (s *TableState) logAction(p *Player, action ActionType, amount int64, now time.Time) {
	if s.HandRecord == nil {
		return
	}
	s.HandRecord.Actions = append(s.HandRecord.Actions, LoggedAction{
		AgentID: p.AgentID,
		Name:    p.Name,
		Phase:   s.Phase,
		Action:  action,
		Amount:  amount,
		At:      now,
	})
}
