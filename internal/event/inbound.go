// Package event defines the closed wire schema between clients and the party
// coordinator. Every inbound frame is validated here before it reaches the
// party actor; unknown or malformed frames are decode errors, never silently
// dropped.
package event

import (
	"encoding/json"
	"fmt"
)

// Type tags an inbound event.
type Type string

const (
	TypeJoin                Type = "join"
	TypeLeave               Type = "leave"
	TypeMessage             Type = "message"
	TypeReaction            Type = "reaction"
	TypeVideoSync           Type = "video_sync"
	TypeUpdateSettings      Type = "update_settings"
	TypeJoinRequestResponse Type = "join_request_response"
	TypeKickUser            Type = "kick_user"
	TypeBanUser             Type = "ban_user"
	TypeMuteUser            Type = "mute_user"
	TypeCreatePoll          Type = "create_poll"
	TypeVotePoll            Type = "vote_poll"
	TypeEndPoll             Type = "end_poll"
)

// Inbound is a decoded client frame. Exactly one payload pointer is non-nil,
// matching Type (TypeJoin and TypeLeave carry no payload).
type Inbound struct {
	Type          Type
	CorrelationID string

	Message             *MessagePayload
	Reaction            *ReactionPayload
	VideoSync           *VideoSyncPayload
	UpdateSettings      *UpdateSettingsPayload
	JoinRequestResponse *JoinRequestResponsePayload
	Target              *TargetPayload
	Mute                *MutePayload
	CreatePoll          *CreatePollPayload
	VotePoll            *VotePollPayload
	EndPoll             *EndPollPayload
}

// MessagePayload carries a chat message.
type MessagePayload struct {
	Content           string   `json:"content"`
	PlaybackTimestamp *float64 `json:"playback_timestamp,omitempty"`
}

// ReactionPayload upserts the sender's reaction on a message.
type ReactionPayload struct {
	MessageID string `json:"message_id"`
	Symbol    string `json:"symbol"`
}

// VideoSyncPayload is a local playback report.
type VideoSyncPayload struct {
	Position  float64 `json:"timestamp"` // seconds into content
	IsPlaying bool    `json:"is_playing"`
}

// UpdateSettingsPayload is a partial settings update; nil fields keep their value.
type UpdateSettingsPayload struct {
	IsPrivate       *bool `json:"is_private,omitempty"`
	RequireApproval *bool `json:"require_approval,omitempty"`
	ChatEnabled     *bool `json:"chat_enabled,omitempty"`
}

// JoinRequestResponsePayload resolves a pending join request.
type JoinRequestResponsePayload struct {
	TargetParticipantID string `json:"target_participant_id"`
	Approved            bool   `json:"approved"`
}

// TargetPayload names the participant a kick/ban applies to.
type TargetPayload struct {
	TargetParticipantID string `json:"target_participant_id"`
}

// MutePayload sets or clears a participant's mute flag.
type MutePayload struct {
	TargetParticipantID string `json:"target_participant_id"`
	Muted               bool   `json:"muted"`
}

// CreatePollOption is one option in a create_poll request.
type CreatePollOption struct {
	Label      string `json:"label"`
	ContentRef string `json:"content_ref,omitempty"`
}

// CreatePollPayload opens a new poll.
type CreatePollPayload struct {
	Title           string             `json:"title"`
	Options         []CreatePollOption `json:"options"`
	DurationSeconds int                `json:"duration_seconds"`
}

// VotePollPayload records or replaces the sender's vote.
type VotePollPayload struct {
	PollID   string `json:"poll_id"`
	OptionID string `json:"option_id"`
}

// EndPollPayload closes the named poll.
type EndPollPayload struct {
	PollID string `json:"poll_id"`
}

type envelope struct {
	Type          Type            `json:"type"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Decode parses and validates one inbound frame.
func Decode(data []byte) (*Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	in := &Inbound{Type: env.Type, CorrelationID: env.CorrelationID}

	switch env.Type {
	case TypeJoin, TypeLeave:
		return in, nil
	case TypeMessage:
		p := &MessagePayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.Content == "" {
			return nil, fmt.Errorf("message: content is required")
		}
		in.Message = p
	case TypeReaction:
		p := &ReactionPayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.MessageID == "" || p.Symbol == "" {
			return nil, fmt.Errorf("reaction: message_id and symbol are required")
		}
		in.Reaction = p
	case TypeVideoSync:
		p := &VideoSyncPayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.Position < 0 {
			return nil, fmt.Errorf("video_sync: timestamp must be >= 0")
		}
		in.VideoSync = p
	case TypeUpdateSettings:
		p := &UpdateSettingsPayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		in.UpdateSettings = p
	case TypeJoinRequestResponse:
		p := &JoinRequestResponsePayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.TargetParticipantID == "" {
			return nil, fmt.Errorf("join_request_response: target_participant_id is required")
		}
		in.JoinRequestResponse = p
	case TypeKickUser, TypeBanUser:
		p := &TargetPayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.TargetParticipantID == "" {
			return nil, fmt.Errorf("%s: target_participant_id is required", env.Type)
		}
		in.Target = p
	case TypeMuteUser:
		p := &MutePayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.TargetParticipantID == "" {
			return nil, fmt.Errorf("mute_user: target_participant_id is required")
		}
		in.Mute = p
	case TypeCreatePoll:
		p := &CreatePollPayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.Title == "" {
			return nil, fmt.Errorf("create_poll: title is required")
		}
		if len(p.Options) < 2 || len(p.Options) > 5 {
			return nil, fmt.Errorf("create_poll: between 2 and 5 options required, got %d", len(p.Options))
		}
		for i, opt := range p.Options {
			if opt.Label == "" {
				return nil, fmt.Errorf("create_poll: option %d has empty label", i)
			}
		}
		if p.DurationSeconds <= 0 {
			return nil, fmt.Errorf("create_poll: duration_seconds must be > 0")
		}
		in.CreatePoll = p
	case TypeVotePoll:
		p := &VotePollPayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.PollID == "" || p.OptionID == "" {
			return nil, fmt.Errorf("vote_poll: poll_id and option_id are required")
		}
		in.VotePoll = p
	case TypeEndPoll:
		p := &EndPollPayload{}
		if err := unmarshalPayload(env, p); err != nil {
			return nil, err
		}
		if p.PollID == "" {
			return nil, fmt.Errorf("end_poll: poll_id is required")
		}
		in.EndPoll = p
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	return in, nil
}

func unmarshalPayload(env envelope, dst any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%s: payload is required", env.Type)
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("%s: %w", env.Type, err)
	}
	return nil
}
