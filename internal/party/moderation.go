package party

import (
	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
	"go.uber.org/zap"
)

// kick removes the target from the roster and drops its connection.
func (p *Party) kick(sender *model.Participant, targetID, correlationID string) error {
	target, err := p.moderationTarget(sender, targetID)
	if err != nil {
		return err
	}
	p.removeModerated(target, event.OutUserKicked, target.Name+" was kicked from the party")
	p.log.Info("participant kicked", zap.String("participant_id", targetID))
	return nil
}

// ban is kick plus a permanent ban-set entry: the id can never rejoin.
func (p *Party) ban(sender *model.Participant, targetID, correlationID string) error {
	target, err := p.moderationTarget(sender, targetID)
	if err != nil {
		return err
	}
	p.banned[targetID] = struct{}{}
	p.removeModerated(target, event.OutUserBanned, target.Name+" was banned from the party")
	p.log.Info("participant banned", zap.String("participant_id", targetID))
	return nil
}

// setMuted toggles the flag consulted by chat. Does not disconnect.
func (p *Party) setMuted(sender *model.Participant, mute *event.MutePayload, correlationID string) error {
	target, err := p.moderationTarget(sender, mute.TargetParticipantID)
	if err != nil {
		return err
	}
	target.IsMuted = mute.Muted
	p.out.Broadcast(p.id, event.Outbound{
		Type:    event.OutUserMuted,
		Payload: event.MuteChange{ParticipantID: target.ID, Muted: mute.Muted},
	})
	if mute.Muted {
		p.systemMessage(target.Name + " was muted")
	} else {
		p.systemMessage(target.Name + " was unmuted")
	}
	return nil
}

// moderationTarget authorizes the sender and resolves the target. Kick, ban
// and mute are host-only.
func (p *Party) moderationTarget(sender *model.Participant, targetID string) (*model.Participant, error) {
	if sender.Role != model.RoleHost {
		return nil, errs.ErrUnauthorized
	}
	target, ok := p.roster[targetID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return target, nil
}

// removeModerated drops the target from the roster, broadcasts the removal
// (the target's own connection sees it too, then gets disconnected) and closes
// the party if the roster emptied.
func (p *Party) removeModerated(target *model.Participant, outType event.OutType, systemText string) {
	delete(p.roster, target.ID)
	p.out.Broadcast(p.id, event.Outbound{
		Type:    outType,
		Payload: event.RosterChange{ParticipantID: target.ID, Name: target.Name},
	})
	if len(p.roster) > 0 {
		p.systemMessage(systemText)
	}
	p.out.Disconnect(p.id, target.ID)
	if len(p.roster) == 0 {
		p.close()
	}
}

// updateSettings applies a host-only partial settings update.
func (p *Party) updateSettings(sender *model.Participant, upd *event.UpdateSettingsPayload, correlationID string) error {
	if sender.Role != model.RoleHost {
		return errs.ErrUnauthorized
	}
	if upd.IsPrivate != nil {
		p.settings.IsPrivate = *upd.IsPrivate
	}
	if upd.RequireApproval != nil {
		p.settings.RequireApproval = *upd.RequireApproval
	}
	if upd.ChatEnabled != nil {
		p.settings.ChatEnabled = *upd.ChatEnabled
	}
	p.out.Broadcast(p.id, event.Outbound{
		Type:          event.OutSettingsUpdated,
		CorrelationID: correlationID,
		Payload:       p.settings,
	})
	return nil
}
