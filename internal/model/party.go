package model

import "time"

// PartyState represents watch party lifecycle state.
type PartyState string

const (
	PartyStateCreated PartyState = "created"
	PartyStateActive  PartyState = "active"
	PartyStateClosed  PartyState = "closed"
)

// Role of a participant inside a party.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Settings are the host-controlled party switches.
type Settings struct {
	IsPrivate       bool `json:"is_private"`
	RequireApproval bool `json:"require_approval"`
	ChatEnabled     bool `json:"chat_enabled"`
}

// Party is the API view of a watch party (not the GORM entity).
type Party struct {
	ID        string     `json:"id"`
	HostID    string     `json:"host_id"`
	Settings  Settings   `json:"settings"`
	State     PartyState `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Participant is a member of the party roster.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	IsMuted  bool      `json:"is_muted"`
	JoinedAt time.Time `json:"joined_at"`
}

// PlaybackState is the session-wide authoritative playback position.
// Last report wins; any participant may update it.
type PlaybackState struct {
	Position  float64   `json:"position"` // seconds into content
	IsPlaying bool      `json:"is_playing"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}

// PendingJoinRequest exists only while require_approval is on; resolved by the
// host and then discarded.
type PendingJoinRequest struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	Name          string    `json:"name"`
	RequestedAt   time.Time `json:"requested_at"`
}

// CreatePartyRequest is the request body for POST /parties.
type CreatePartyRequest struct {
	HostID   string   `json:"host_id" binding:"required"`
	HostName string   `json:"host_name" binding:"required"`
	Settings Settings `json:"settings"`
}

// CreatePartyResponse is the response for POST /parties.
type CreatePartyResponse struct {
	PartyID string `json:"party_id"`
	WSURL   string `json:"ws_url"`
	State   string `json:"state"`
}

// PartyParticipantsResponse is the response for GET /parties/:id/participants.
type PartyParticipantsResponse struct {
	PartyID      string        `json:"party_id"`
	Participants []Participant `json:"participants"`
}
