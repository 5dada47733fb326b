package game

import (
	"sort"
	"time"

	"agentpoker/internal/handeval"
)

// Resolve ends the current hand: fold-out awards the pot to the lone
// survivor, otherwise layered side pots are built from each player's
// TotalBet and awarded by best-hand comparison within each layer.
func Resolve(s *TableState, now time.Time) {
	contenders := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Status == StatusActive || p.Status == StatusAllIn {
			contenders = append(contenders, p)
		}
	}

	var handName string
	awards := map[string]int64{}

	if len(contenders) == 1 {
		winner := contenders[0]
		awards[winner.AgentID] = s.Pot
		handName = "Last player standing"
	} else {
		handName = resolveShowdown(s, contenders, awards)
	}

	for _, p := range s.Players {
		p.Chips += awards[p.AgentID]
	}

	finalizeHandRecord(s, awards, handName, now)

	winners := make([]string, 0, len(awards))
	winnerNames := make([]string, 0, len(awards))
	var potWon int64
	for _, p := range s.Players {
		if amt, ok := awards[p.AgentID]; ok && amt > 0 {
			winners = append(winners, p.AgentID)
			winnerNames = append(winnerNames, p.Name)
			potWon += amt
		}
	}
	s.LastHandResult = &HandResult{
		HandID:   s.HandID,
		Winners:  winners,
		HandName: handName,
		PotWon:   potWon,
	}

	s.Phase = PhaseShowdown
	s.CurrentTurnIndex = -1
	rotateDealer(s)
}

// resolveShowdown builds ascending side-pot layers from TotalBet and
// awards each layer to the best eligible hand(s), splitting ties evenly
// with any remainder going to the earliest seat among the winners.
func resolveShowdown(s *TableState, contenders []*Player, awards map[string]int64) string {
	levels := distinctLevels(s.Players)
	ranks := make(map[string]handeval.HandRank, len(contenders))
	for _, p := range contenders {
		ranks[p.AgentID] = evaluate(p, s.CommunityCards)
	}

	var bestName string
	var prev int64
	for _, level := range levels {
		var contributors []*Player
		for _, p := range s.Players {
			if p.TotalBet >= level {
				contributors = append(contributors, p)
			}
		}
		layerAmount := (level - prev) * int64(len(contributors))
		prev = level
		if layerAmount <= 0 {
			continue
		}

		eligible := make([]*Player, 0, len(contributors))
		for _, p := range contributors {
			if p.Status == StatusActive || p.Status == StatusAllIn {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) == 0 {
			continue
		}

		winners := bestHandWinners(eligible, ranks)
		if bestName == "" {
			bestName = ranks[winners[0].AgentID].Name()
		}
		share := layerAmount / int64(len(winners))
		remainder := layerAmount % int64(len(winners))
		sort.Slice(winners, func(i, j int) bool { return winners[i].SeatIndex < winners[j].SeatIndex })
		for i, w := range winners {
			amt := share
			if i == 0 {
				amt += remainder
			}
			awards[w.AgentID] += amt
		}
	}
	return bestName
}

func distinctLevels(players []*Player) []int64 {
	seen := map[int64]bool{}
	var levels []int64
	for _, p := range players {
		if p.TotalBet > 0 && !seen[p.TotalBet] {
			seen[p.TotalBet] = true
			levels = append(levels, p.TotalBet)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

func bestHandWinners(eligible []*Player, ranks map[string]handeval.HandRank) []*Player {
	best := ranks[eligible[0].AgentID]
	winners := []*Player{eligible[0]}
	for _, p := range eligible[1:] {
		r := ranks[p.AgentID]
		cmp := handeval.Cmp(r, best)
		if cmp > 0 {
			best = r
			winners = []*Player{p}
		} else if cmp == 0 {
			winners = append(winners, p)
		}
	}
	return winners
}

func finalizeHandRecord(s *TableState, awards map[string]int64, handName string, now time.Time) {
	if s.HandRecord == nil {
		return
	}
	s.HandRecord.CommunityCards = s.CommunityCards
	s.HandRecord.Pot = s.Pot
	s.HandRecord.HandName = handName
	s.HandRecord.EndedAt = now
	for _, p := range s.Players {
		if amt, ok := awards[p.AgentID]; ok && amt > 0 {
			s.HandRecord.WinnerIDs = append(s.HandRecord.WinnerIDs, p.AgentID)
			s.HandRecord.WinnerNames = append(s.HandRecord.WinnerNames, p.Name)
		}
	}
}

// rotateDealer advances DealerIndex by one over the set of still-seated,
// non-sitting-out players.
func rotateDealer(s *TableState) {
	eligible := make([]int, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Status != StatusSittingOut {
			eligible = append(eligible, p.SeatIndex)
		}
	}
	if len(eligible) == 0 {
		return
	}
	sort.Ints(eligible)
	for i, seat := range eligible {
		if seat > s.DealerIndex {
			s.DealerIndex = seat
			return
		}
		if i == len(eligible)-1 {
			s.DealerIndex = eligible[0]
		}
	}
}
