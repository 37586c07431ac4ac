package model

import "time"

// MessageType distinguishes participant chat from synthesized system messages.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

// SystemAuthor is the author id of synthesized messages.
const SystemAuthor = "system"

// Message is one entry in the party's ordered chat log. Append-only; the only
// mutation after creation is the reaction tally.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	AuthorID  string      `json:"author_id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`

	// PlaybackTimestamp anchors the message to a moment in the content
	// ("jump to this moment" references). Nil for plain messages.
	PlaybackTimestamp *float64 `json:"playback_timestamp,omitempty"`

	// Reactions is the per-symbol tally. ReactionBy keeps each participant's
	// current choice so re-reacting replaces instead of double counting.
	Reactions  map[string]int    `json:"reactions,omitempty"`
	ReactionBy map[string]string `json:"-"`
}

// React upserts the participant's reaction and recomputes the tally entry.
// Returns the symbol that was replaced, if any.
func (m *Message) React(participantID, symbol string) (replaced string) {
	if m.Reactions == nil {
		m.Reactions = make(map[string]int)
	}
	if m.ReactionBy == nil {
		m.ReactionBy = make(map[string]string)
	}
	if prev, ok := m.ReactionBy[participantID]; ok {
		if prev == symbol {
			return prev
		}
		replaced = prev
		if m.Reactions[prev] <= 1 {
			delete(m.Reactions, prev)
		} else {
			m.Reactions[prev]--
		}
	}
	m.ReactionBy[participantID] = symbol
	m.Reactions[symbol]++
	return replaced
}
