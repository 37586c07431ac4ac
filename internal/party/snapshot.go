package party

import (
	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
)

// snapshotEvent builds the joined event for one participant: everything a
// reconnecting client needs to resynchronize without replaying history.
func (p *Party) snapshotEvent(you *model.Participant, correlationID string) event.Outbound {
	snap := event.Snapshot{
		Party: model.Party{
			ID:        p.id,
			HostID:    p.hostID,
			Settings:  p.settings,
			State:     p.state,
			CreatedAt: p.createdAt,
		},
		You:      *you,
		Roster:   p.rosterList(),
		Messages: p.recentMessages(p.snapshotMessages),
		Playback: p.playback,
		OpenPoll: p.openPoll,
	}
	if you.Role == model.RoleHost {
		snap.PendingCount = len(p.pending)
	}
	return event.Outbound{
		Type:          event.OutJoined,
		CorrelationID: correlationID,
		Payload:       snap,
	}
}

// Participants returns the current roster for REST inspection. Safe to call
// from outside the actor goroutine: it round-trips through the mailbox.
func (p *Party) Participants() ([]model.Participant, error) {
	reply := make(chan []model.Participant, 1)
	if err := p.Submit(Command{inspect: reply}); err != nil {
		return nil, err
	}
	select {
	case list := <-reply:
		return list, nil
	case <-p.done:
		return nil, errs.ErrSessionClosed
	}
}
