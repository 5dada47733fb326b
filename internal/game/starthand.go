package game

import (
	"time"

	"agentpoker/internal/cards"
)

// StartHand deals a new hand. The caller supplies handID (typically a
// fresh ULID from the identity store) and now, keeping this function pure.
func StartHand(s *TableState, handID string, now time.Time) error {
	if s.Phase != PhaseWaiting && s.Phase != PhaseShowdown {
		return ErrAlreadyInProgress
	}

	evictShortStacks(s)
	evictStaleSitOuts(s)
	dealtIn := reseatDealtInFirst(s)
	if len(dealtIn) < s.MinSeats {
		return ErrNotEnoughPlayers
	}

	s.SmallBlind, s.BigBlind = computeBlinds(dealtIn)

	deck := cards.New()
	deck.Shuffle()
	s.Deck = deck
	s.CommunityCards = nil
	s.Pot = 0
	s.CurrentBet = 0

	holeCards := make(map[string][]cards.Card, len(dealtIn))
	for _, p := range dealtIn {
		p.Status = StatusActive
		p.Bet = 0
		p.TotalBet = 0
		p.HasActed = false
		dealt, err := s.Deck.Deal(2)
		if err != nil {
			return ErrDeckExhausted
		}
		p.HoleCards = dealt
		holeCards[p.AgentID] = dealt
	}

	k := len(dealtIn)
	startingStacks := make(map[string]int64, k)
	for _, p := range dealtIn {
		startingStacks[p.AgentID] = p.Chips
	}

	var sbIdx, bbIdx int
	if k == 2 {
		sbIdx = s.DealerIndex % k
		bbIdx = (sbIdx + 1) % k
	} else {
		sbIdx = (s.DealerIndex + 1) % k
		bbIdx = (s.DealerIndex + 2) % k
	}

	postBlind(dealtIn[sbIdx], s.SmallBlind, s)
	postBlind(dealtIn[bbIdx], s.BigBlind, s)
	s.CurrentBet = s.BigBlind

	s.HandID = handID
	s.Phase = PhasePreflop
	s.LastActionTime = now
	s.HandRecord = &HandRecord{
		HandID:         handID,
		TableID:        s.TableID,
		StartingStacks: startingStacks,
		HoleCards:      holeCards,
		PlayerCount:    k,
		StartedAt:      now,
	}

	if k == 2 {
		s.CurrentTurnIndex = dealtIn[sbIdx].SeatIndex
	} else {
		firstToAct := dealtIn[(bbIdx+1)%k]
		s.CurrentTurnIndex = firstToAct.SeatIndex
	}
	advanceTurnIfCurrentCannotAct(s)

	return nil
}

func evictShortStacks(s *TableState) {
	keep := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Status != StatusSittingOut && p.Chips < s.BigBlind {
			continue
		}
		keep = append(keep, p)
	}
	s.Players = keep
}

func evictStaleSitOuts(s *TableState) {
	keep := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Status == StatusSittingOut && p.SitOutCount >= s.SitOutEvictAt {
			continue
		}
		keep = append(keep, p)
	}
	s.Players = keep
}

// reseatDealtInFirst reorders s.Players so dealt-in players occupy
// contiguous SeatIndex 0..k-1 (preserving their previous relative order),
// followed by sitting-out players, and bumps SitOutCount for everyone
// skipped. It returns the dealt-in players in seat order.
func reseatDealtInFirst(s *TableState) []*Player {
	dealtIn := make([]*Player, 0, len(s.Players))
	sittingOut := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Status == StatusSittingOut {
			p.SitOutCount++
			sittingOut = append(sittingOut, p)
		} else {
			dealtIn = append(dealtIn, p)
		}
	}
	ordered := append(dealtIn, sittingOut...)
	for i, p := range ordered {
		p.SeatIndex = i
	}
	s.Players = ordered
	return dealtIn
}

func computeBlinds(dealtIn []*Player) (sb, bb int64) {
	var total int64
	for _, p := range dealtIn {
		total += p.Chips
	}
	avg := total / int64(len(dealtIn))
	sb = avg / 100
	if sb < 10 {
		sb = 10
	}
	return sb, sb * 2
}

func postBlind(p *Player, blind int64, s *TableState) {
	amount := blind
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.Bet = amount
	p.TotalBet = amount
	s.Pot += amount
	if p.Chips == 0 {
		p.Status = StatusAllIn
	}
}

// advanceTurnIfCurrentCannotAct skips the turn pointer past any player who
// is already all_in at the moment preflop action opens (a short-stacked
// blind can go all_in before its first decision).
func advanceTurnIfCurrentCannotAct(s *TableState) {
	for i := 0; i < len(s.Players); i++ {
		p := s.currentPlayer()
		if p == nil || p.Status == StatusActive {
			return
		}
		advanceToNextActingSeat(s)
	}
}
