package model

import "time"

// PollState is Open until the host or the duration timer ends the poll.
type PollState string

const (
	PollStateOpen  PollState = "open"
	PollStateEnded PollState = "ended"
)

// Poll option count bounds.
const (
	PollMinOptions = 2
	PollMaxOptions = 5
)

// PollOption is one choice in a poll. ContentRef optionally points at a
// catalog item ("watch this next").
type PollOption struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	ContentRef string `json:"content_ref,omitempty"`
}

// Poll holds options in creation order and at most one vote per participant.
type Poll struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	CreatorID string       `json:"creator_id"`
	Options   []PollOption `json:"options"`
	Duration  int          `json:"duration_seconds"`
	CreatedAt time.Time    `json:"created_at"`
	State     PollState    `json:"state"`

	// Votes maps participant id -> option id, last write wins.
	Votes map[string]string `json:"votes"`

	WinnerOptionID string     `json:"winner_option_id,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// HasOption reports whether id names one of the poll's options.
func (p *Poll) HasOption(id string) bool {
	for _, opt := range p.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// Counts returns votes per option id, including zero entries for unvoted options.
func (p *Poll) Counts() map[string]int {
	counts := make(map[string]int, len(p.Options))
	for _, opt := range p.Options {
		counts[opt.ID] = 0
	}
	for _, optID := range p.Votes {
		counts[optID]++
	}
	return counts
}

// Winner returns the option id with the highest vote count. Ties break toward
// the option that appears first in the option list, so the result is stable
// regardless of vote arrival order.
func (p *Poll) Winner() string {
	counts := p.Counts()
	winner := ""
	best := -1
	for _, opt := range p.Options {
		if counts[opt.ID] > best {
			winner = opt.ID
			best = counts[opt.ID]
		}
	}
	return winner
}
