package party

import (
	"time"

	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
	"go.uber.org/zap"
)

// sendMessage appends a chat message with a server-assigned id and timestamp
// and broadcasts it. Muted senders and disabled chat are rejected before any
// state changes.
func (p *Party) sendMessage(sender *model.Participant, msg *event.MessagePayload, correlationID string) error {
	if !p.settings.ChatEnabled {
		return errs.ErrChatDisabled
	}
	if sender.IsMuted {
		return errs.ErrMuted
	}
	m := &model.Message{
		ID:                newID(),
		Type:              model.MessageTypeText,
		AuthorID:          sender.ID,
		Content:           msg.Content,
		CreatedAt:         time.Now(),
		PlaybackTimestamp: msg.PlaybackTimestamp,
	}
	p.appendMessage(m)
	p.out.Broadcast(p.id, event.Outbound{
		Type:          event.OutNewMessage,
		CorrelationID: correlationID,
		Payload:       m,
	})
	return nil
}

// addReaction upserts the sender's reaction and broadcasts the recomputed
// tally. Broadcasting the tally instead of the raw event keeps every client's
// counts consistent regardless of arrival order.
func (p *Party) addReaction(sender *model.Participant, r *event.ReactionPayload, correlationID string) error {
	m, ok := p.msgIndex[r.MessageID]
	if !ok {
		return errs.ErrNotFound
	}
	m.React(sender.ID, r.Symbol)
	p.out.Broadcast(p.id, event.Outbound{
		Type:          event.OutReactionUpdated,
		CorrelationID: correlationID,
		Payload:       event.ReactionTally{MessageID: m.ID, Reactions: m.Reactions},
	})
	return nil
}

// systemMessage appends a synthesized message to the same ordered log as chat
// and broadcasts it. Used for roster, moderation and poll milestones.
func (p *Party) systemMessage(content string) {
	m := &model.Message{
		ID:        newID(),
		Type:      model.MessageTypeSystem,
		AuthorID:  model.SystemAuthor,
		Content:   content,
		CreatedAt: time.Now(),
	}
	p.appendMessage(m)
	p.out.Broadcast(p.id, event.Outbound{
		Type:    event.OutNewMessage,
		Payload: m,
	})
}

func (p *Party) appendMessage(m *model.Message) {
	p.messages = append(p.messages, m)
	p.msgIndex[m.ID] = m
	p.log.Debug("message appended",
		zap.String("message_id", m.ID),
		zap.String("author_id", m.AuthorID),
		zap.String("type", string(m.Type)))
}

// recentMessages returns up to n most recent messages in log order for join
// snapshots.
func (p *Party) recentMessages(n int) []*model.Message {
	if len(p.messages) <= n {
		return p.messages
	}
	return p.messages[len(p.messages)-n:]
}
