package event

import (
	"encoding/json"
	"time"

	"github.com/psds-microservice/watch-party-service/internal/model"
)

// OutType tags an outbound event.
type OutType string

const (
	OutJoined              OutType = "joined"
	OutUserJoined          OutType = "user_joined"
	OutUserLeft            OutType = "user_left"
	OutUserKicked          OutType = "user_kicked"
	OutUserBanned          OutType = "user_banned"
	OutUserMuted           OutType = "user_muted"
	OutNewMessage          OutType = "new_message"
	OutReactionUpdated     OutType = "reaction_updated"
	OutVideoSync           OutType = "video_sync"
	OutSettingsUpdated     OutType = "settings_updated"
	OutJoinRequested       OutType = "join_requested"
	OutJoinRequestResolved OutType = "join_request_resolved"
	OutPollCreated         OutType = "poll_created"
	OutPollVoteUpdated     OutType = "poll_vote_updated"
	OutPollEnded           OutType = "poll_ended"
	OutError               OutType = "error"
)

// Outbound is one event broadcast or targeted to participants. Payload must be
// JSON-marshalable; CorrelationID echoes the inbound frame that caused it so
// client reconcilers can match optimistic updates.
type Outbound struct {
	Type          OutType `json:"type"`
	CorrelationID string  `json:"correlation_id,omitempty"`
	Payload       any     `json:"payload,omitempty"`
}

// Encode marshals the event for the wire.
func (o Outbound) Encode() ([]byte, error) {
	return json.Marshal(o)
}

// Snapshot is the payload of a joined event, sent only to the joining or
// reconnecting participant so it can resynchronize without replaying history.
type Snapshot struct {
	Party        model.Party         `json:"party"`
	You          model.Participant   `json:"you"`
	Roster       []model.Participant `json:"roster"`
	Messages     []*model.Message    `json:"messages"`
	Playback     model.PlaybackState `json:"playback"`
	OpenPoll     *model.Poll         `json:"open_poll,omitempty"`
	PendingCount int                 `json:"pending_join_requests,omitempty"`
}

// RosterChange is the payload of user_left / user_kicked / user_banned.
type RosterChange struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
}

// MuteChange is the payload of user_muted.
type MuteChange struct {
	ParticipantID string `json:"participant_id"`
	Muted         bool   `json:"muted"`
}

// ReactionTally is the payload of reaction_updated: the full recomputed tally,
// so client counts converge regardless of arrival order.
type ReactionTally struct {
	MessageID string         `json:"message_id"`
	Reactions map[string]int `json:"reactions"`
}

// PlaybackSync is the payload of an outbound video_sync.
type PlaybackSync struct {
	Position  float64   `json:"timestamp"`
	IsPlaying bool      `json:"is_playing"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JoinResolution is the payload of join_request_resolved, sent to the requester only.
type JoinResolution struct {
	Approved bool `json:"approved"`
}

// VoteUpdate is the payload of poll_vote_updated: full counts, so clients can
// recompute percentages without tracking individual vote events.
type VoteUpdate struct {
	PollID     string         `json:"poll_id"`
	VoterID    string         `json:"voter_id"`
	OptionID   string         `json:"option_id"`
	Counts     map[string]int `json:"counts"`
	TotalVotes int            `json:"total_votes"`
}

// PollResult is the payload of poll_ended.
type PollResult struct {
	PollID         string         `json:"poll_id"`
	WinnerOptionID string         `json:"winner_option_id"`
	Counts         map[string]int `json:"counts"`
	TotalVotes     int            `json:"total_votes"`
}

// WireError is the payload of an error event, sent to the originator only.
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
