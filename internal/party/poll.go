package party

import (
	"time"

	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
	"go.uber.org/zap"
)

// createPoll opens a poll (host-only, at most one open per party) and arms a
// cancellable duration timer. The timer fires back through the actor mailbox
// so expiry is serialized like any other mutation.
func (p *Party) createPoll(sender *model.Participant, req *event.CreatePollPayload, correlationID string) error {
	if sender.Role != model.RoleHost {
		return errs.ErrUnauthorized
	}
	if p.openPoll != nil {
		return errs.ErrPollAlreadyOpen
	}

	options := make([]model.PollOption, 0, len(req.Options))
	for _, opt := range req.Options {
		options = append(options, model.PollOption{
			ID:         newID(),
			Label:      opt.Label,
			ContentRef: opt.ContentRef,
		})
	}
	poll := &model.Poll{
		ID:        newID(),
		Title:     req.Title,
		CreatorID: sender.ID,
		Options:   options,
		Duration:  req.DurationSeconds,
		CreatedAt: time.Now(),
		State:     model.PollStateOpen,
		Votes:     make(map[string]string),
	}
	p.openPoll = poll
	pollID := poll.ID
	p.pollTimer = time.AfterFunc(time.Duration(req.DurationSeconds)*time.Second, func() {
		_ = p.Submit(Command{action: actionPollExpired, pollID: pollID})
	})

	p.out.Broadcast(p.id, event.Outbound{
		Type:          event.OutPollCreated,
		CorrelationID: correlationID,
		Payload:       poll,
	})
	p.systemMessage("Poll started: " + poll.Title)
	p.log.Info("poll created",
		zap.String("poll_id", poll.ID),
		zap.Int("options", len(options)),
		zap.Int("duration_seconds", req.DurationSeconds))
	return nil
}

// vote upserts the sender's vote: changing your mind before the poll ends
// overwrites the prior choice, never adds a second vote.
func (p *Party) vote(sender *model.Participant, v *event.VotePollPayload, correlationID string) error {
	if p.openPoll == nil || p.openPoll.ID != v.PollID {
		return errs.ErrNoSuchPoll
	}
	if !p.openPoll.HasOption(v.OptionID) {
		return errs.ErrNotFound
	}
	p.openPoll.Votes[sender.ID] = v.OptionID

	counts := p.openPoll.Counts()
	p.out.Broadcast(p.id, event.Outbound{
		Type:          event.OutPollVoteUpdated,
		CorrelationID: correlationID,
		Payload: event.VoteUpdate{
			PollID:     p.openPoll.ID,
			VoterID:    sender.ID,
			OptionID:   v.OptionID,
			Counts:     counts,
			TotalVotes: len(p.openPoll.Votes),
		},
	})
	return nil
}

// endPoll is the host closing the poll early.
func (p *Party) endPoll(sender *model.Participant, pollID, correlationID string) error {
	if sender.Role != model.RoleHost {
		return errs.ErrUnauthorized
	}
	if p.openPoll == nil || p.openPoll.ID != pollID {
		return errs.ErrNoSuchPoll
	}
	p.finishPoll(correlationID)
	return nil
}

// expirePoll is the duration timer firing. The poll may have been ended by the
// host in the meantime; then this is a no-op.
func (p *Party) expirePoll(pollID string) {
	if p.state == model.PartyStateClosed {
		return
	}
	if p.openPoll == nil || p.openPoll.ID != pollID {
		return
	}
	p.log.Info("poll duration expired", zap.String("poll_id", pollID))
	p.finishPoll("")
}

// finishPoll computes the winner (highest count, ties broken by option order),
// moves the poll to history and broadcasts the result.
func (p *Party) finishPoll(correlationID string) {
	poll := p.openPoll
	if p.pollTimer != nil {
		p.pollTimer.Stop()
		p.pollTimer = nil
	}
	now := time.Now()
	poll.State = model.PollStateEnded
	poll.EndedAt = &now
	poll.WinnerOptionID = poll.Winner()
	p.pollHistory = append(p.pollHistory, poll)
	p.openPoll = nil

	if p.rec != nil {
		p.rec.PollEnded(p.id, poll)
	}
	p.out.Broadcast(p.id, event.Outbound{
		Type:          event.OutPollEnded,
		CorrelationID: correlationID,
		Payload: event.PollResult{
			PollID:         poll.ID,
			WinnerOptionID: poll.WinnerOptionID,
			Counts:         poll.Counts(),
			TotalVotes:     len(poll.Votes),
		},
	})
	p.systemMessage("Poll ended: " + poll.Title)
	p.log.Info("poll ended",
		zap.String("poll_id", poll.ID),
		zap.String("winner_option_id", poll.WinnerOptionID),
		zap.Int("total_votes", len(poll.Votes)))
}
