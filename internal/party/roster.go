package party

import (
	"sort"
	"time"

	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
	"go.uber.org/zap"
)

// join admits a participant or, when approval is required, parks a pending
// request for the host. Reconnecting with an id already on the roster just
// resends the snapshot.
func (p *Party) join(participantID, name, correlationID string) error {
	if _, banned := p.banned[participantID]; banned {
		// Report first, then drop: once the hub disconnects the peer a
		// targeted send has nowhere to go.
		p.reject(participantID, correlationID, errs.ErrBanned)
		p.out.Disconnect(p.id, participantID)
		return nil
	}
	if existing, ok := p.roster[participantID]; ok {
		p.out.SendTo(p.id, participantID, p.snapshotEvent(existing, correlationID))
		return nil
	}
	if p.maxParticipants > 0 && len(p.roster) >= p.maxParticipants {
		return errs.ErrPartyFull
	}

	if p.settings.RequireApproval && participantID != p.hostID {
		req := &model.PendingJoinRequest{
			ID:            newID(),
			ParticipantID: participantID,
			Name:          name,
			RequestedAt:   time.Now(),
		}
		p.pending[participantID] = req
		p.out.SendTo(p.id, p.hostID, event.Outbound{
			Type:    event.OutJoinRequested,
			Payload: req,
		})
		p.log.Info("join request pending",
			zap.String("participant_id", participantID),
			zap.String("name", name))
		return nil
	}

	p.admit(participantID, name, correlationID)
	return nil
}

// admit puts the participant on the roster, activates the party on first join,
// sends the snapshot to the joiner and user_joined to everyone else.
func (p *Party) admit(participantID, name, correlationID string) {
	role := model.RoleGuest
	if participantID == p.hostID {
		role = model.RoleHost
		if name == "" {
			name = p.hostName
		}
	}
	member := &model.Participant{
		ID:       participantID,
		Name:     name,
		Role:     role,
		JoinedAt: time.Now(),
	}
	p.roster[participantID] = member

	if p.state == model.PartyStateCreated {
		p.state = model.PartyStateActive
		if p.rec != nil {
			p.rec.PartyActivated(p.id)
		}
		p.log.Info("party activated", zap.String("host_id", p.hostID))
	}

	p.out.SendTo(p.id, participantID, p.snapshotEvent(member, correlationID))
	p.out.BroadcastExcept(p.id, participantID, event.Outbound{
		Type:    event.OutUserJoined,
		Payload: member,
	})
	p.systemMessage(name + " joined the party")
	p.log.Info("participant joined",
		zap.String("participant_id", participantID),
		zap.String("role", string(role)),
		zap.Int("roster_size", len(p.roster)))
}

// resolveJoinRequest is the host answering a pending join request. Approval
// admits the requester; denial notifies only the requester and drops them.
func (p *Party) resolveJoinRequest(sender *model.Participant, res *event.JoinRequestResponsePayload, correlationID string) error {
	if sender.Role != model.RoleHost {
		return errs.ErrUnauthorized
	}
	req, ok := p.pending[res.TargetParticipantID]
	if !ok {
		return errs.ErrNotFound
	}
	delete(p.pending, res.TargetParticipantID)

	if !res.Approved {
		p.out.SendTo(p.id, req.ParticipantID, event.Outbound{
			Type:    event.OutJoinRequestResolved,
			Payload: event.JoinResolution{Approved: false},
		})
		p.out.Disconnect(p.id, req.ParticipantID)
		p.log.Info("join request denied", zap.String("participant_id", req.ParticipantID))
		return nil
	}
	p.admit(req.ParticipantID, req.Name, "")
	return nil
}

// leave removes the participant. Leaving when not on the roster is a no-op so
// a disconnect racing an explicit leave stays harmless. An empty roster closes
// the party.
func (p *Party) leave(participantID string) {
	member, ok := p.roster[participantID]
	if !ok {
		// A pending requester disconnecting withdraws the request.
		if req, pending := p.pending[participantID]; pending {
			delete(p.pending, participantID)
			p.log.Info("pending join withdrawn", zap.String("participant_id", req.ParticipantID))
		}
		return
	}
	delete(p.roster, participantID)
	p.out.Broadcast(p.id, event.Outbound{
		Type:    event.OutUserLeft,
		Payload: event.RosterChange{ParticipantID: participantID, Name: member.Name},
	})
	if len(p.roster) > 0 {
		p.systemMessage(member.Name + " left the party")
	}
	p.log.Info("participant left",
		zap.String("participant_id", participantID),
		zap.Int("roster_size", len(p.roster)))

	if len(p.roster) == 0 {
		p.close()
	}
}

// rosterList returns roster members ordered by join time.
func (p *Party) rosterList() []model.Participant {
	out := make([]model.Participant, 0, len(p.roster))
	for _, m := range p.roster {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}
