package game

import "time"

// PlayerPublic is the public-facing slice of a seated player.
type PlayerPublic struct {
	AgentID string `json:"id"`
	Name    string `json:"name"`
	Chips   int64  `json:"chips"`
	Status  Status `json:"status"`
	Bet     int64  `json:"bet"`
	Seat    int    `json:"seatIndex"`
}

// ChatView is one chat line as exposed to clients, matching the SDK's
// ChatMessage shape (from/fromName/text/timestamp).
type ChatView struct {
	AgentID   string `json:"from"`
	Name      string `json:"fromName"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// HandResultView reports the outcome of the last completed hand at this
// table, for a client that polled through showdown and wants to know
// who won without re-deriving it from the players list.
type HandResultView struct {
	HandID   string   `json:"handId"`
	Winners  []string `json:"winners"`
	HandName string   `json:"handName"`
	PotWon   int64    `json:"potWon"`
}

// AgentView is what one agent is allowed to see of its own table: its
// hole cards, the public table state, and the actions it may take. Field
// names follow the SDK's GameState dataclass exactly.
type AgentView struct {
	TableID          string           `json:"tableId"`
	HandID           string           `json:"handId"`
	Phase            Phase            `json:"phase"`
	YourCards        []string         `json:"yourCards"`
	CommunityCards   []string         `json:"communityCards"`
	Pot              int64            `json:"pot"`
	CurrentBet       int64            `json:"currentBet"`
	YourChips        int64            `json:"yourChips"`
	YourBet          int64            `json:"yourBet"`
	IsYourTurn       bool             `json:"isYourTurn"`
	Turn             *string          `json:"turn"`
	TimeLeftMs       int64            `json:"timeLeftMs"`
	Players          []PlayerPublic   `json:"players"`
	RecentChat       []ChatView       `json:"recentChat"`
	AvailableActions []ActionType     `json:"availableActions"`
	LastHandResult   *HandResultView  `json:"lastHandResult,omitempty"`
}

// PublicView is the spectator-facing view: no hole cards except during
// showdown for non-folded players.
type PublicView struct {
	TableID        string              `json:"tableId"`
	HandID         string              `json:"handId"`
	Phase          Phase               `json:"phase"`
	CommunityCards []string            `json:"communityCards"`
	Pot            int64               `json:"pot"`
	CurrentBet     int64               `json:"currentBet"`
	Turn           *string             `json:"turn"`
	Players        []PlayerPublic      `json:"players"`
	RevealedHoles  map[string][]string `json:"revealedHoles,omitempty"`
	LastHandResult *HandResultView     `json:"lastHandResult,omitempty"`
}

func publicPlayers(s *TableState) []PlayerPublic {
	out := make([]PlayerPublic, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, PlayerPublic{
			AgentID: p.AgentID,
			Name:    p.Name,
			Chips:   p.Chips,
			Status:  p.Status,
			Bet:     p.Bet,
			Seat:    p.SeatIndex,
		})
	}
	return out
}

func communityStrings(s *TableState) []string {
	out := make([]string, 0, len(s.CommunityCards))
	for _, c := range s.CommunityCards {
		out = append(out, c.String())
	}
	return out
}

// turnAgentID reports the agent id on the clock, or nil when no seat is
// currently acting (between hands, or a hand just settled).
func turnAgentID(s *TableState) *string {
	p := s.currentPlayer()
	if p == nil {
		return nil
	}
	id := p.AgentID
	return &id
}

func handResultView(r *HandResult) *HandResultView {
	if r == nil {
		return nil
	}
	return &HandResultView{
		HandID:   r.HandID,
		Winners:  r.Winners,
		HandName: r.HandName,
		PotWon:   r.PotWon,
	}
}

// BuildAgentView builds the filtered view for the given agent, including its
// own hole cards and the actions it may currently take.
func BuildAgentView(s *TableState, agentID string, now time.Time, chatLimit int) AgentView {
	p := s.findByAgent(agentID)
	view := AgentView{
		TableID:        s.TableID,
		HandID:         s.HandID,
		Phase:          s.Phase,
		CommunityCards: communityStrings(s),
		Pot:            s.Pot,
		CurrentBet:     s.CurrentBet,
		Turn:           turnAgentID(s),
		Players:        publicPlayers(s),
		RecentChat:     recentChat(s, chatLimit),
		LastHandResult: handResultView(s.LastHandResult),
	}
	if p == nil {
		return view
	}
	hole := make([]string, 0, len(p.HoleCards))
	for _, c := range p.HoleCards {
		hole = append(hole, c.String())
	}
	view.YourCards = hole
	view.YourChips = p.Chips
	view.YourBet = p.Bet
	view.IsYourTurn = p.SeatIndex == s.CurrentTurnIndex && p.Status == StatusActive
	if view.IsYourTurn {
		elapsed := now.Sub(s.LastActionTime)
		remaining := time.Duration(s.ActionTimeoutMs)*time.Millisecond - elapsed
		if remaining < 0 {
			remaining = 0
		}
		view.TimeLeftMs = remaining.Milliseconds()
		view.AvailableActions = availableActions(s, p)
	}
	return view
}

// BuildPublicView builds the spectator view. Hole cards are revealed only
// during showdown, and only for players who did not fold.
func BuildPublicView(s *TableState) PublicView {
	view := PublicView{
		TableID:        s.TableID,
		HandID:         s.HandID,
		Phase:          s.Phase,
		CommunityCards: communityStrings(s),
		Pot:            s.Pot,
		CurrentBet:     s.CurrentBet,
		Turn:           turnAgentID(s),
		Players:        publicPlayers(s),
		LastHandResult: handResultView(s.LastHandResult),
	}
	if s.Phase == PhaseShowdown {
		revealed := map[string][]string{}
		for _, p := range s.Players {
			if p.Status == StatusFolded || len(p.HoleCards) == 0 {
				continue
			}
			hole := make([]string, 0, len(p.HoleCards))
			for _, c := range p.HoleCards {
				hole = append(hole, c.String())
			}
			revealed[p.AgentID] = hole
		}
		if len(revealed) > 0 {
			view.RevealedHoles = revealed
		}
	}
	return view
}

func recentChat(s *TableState, limit int) []ChatView {
	if s.HandRecord == nil {
		return nil
	}
	chat := s.HandRecord.Chat
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	start := 0
	if len(chat) > limit {
		start = len(chat) - limit
	}
	out := make([]ChatView, 0, len(chat)-start)
	for _, c := range chat[start:] {
		out = append(out, ChatView{AgentID: c.AgentID, Name: c.Name, Text: c.Text, Timestamp: c.At.UnixMilli()})
	}
	return out
}

// availableActions derives the legal actions for p when it is p's turn.
func availableActions(s *TableState, p *Player) []ActionType {
	actions := []ActionType{ActionFold, ActionAllIn}
	toCall := s.CurrentBet - p.Bet
	if toCall <= 0 {
		actions = append(actions, ActionCheck)
	} else {
		actions = append(actions, ActionCall)
	}
	if p.Chips > toCall {
		actions = append(actions, ActionRaise)
	}
	return actions
}
