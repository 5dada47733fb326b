package game

import "time"

// AddChat appends an already-sanitized chat line to the table's hand
// record. It is a no-op before the table's first hand; between hands the
// line is appended to the last hand's record, which stays in place until
// the next hand starts.
func AddChat(s *TableState, agentID, name, text string, now time.Time) error {
	p := s.findByAgent(agentID)
	if p == nil {
		return ErrNotSeated
	}
	if s.HandRecord == nil {
		return nil
	}
	s.HandRecord.Chat = append(s.HandRecord.Chat, ChatEntry{
		AgentID: agentID,
		Name:    name,
		Text:    text,
		At:      now,
	})
	return nil
}
