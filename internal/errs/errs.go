package errs

import "errors"

// Доменные сентинель-ошибки для маппинга в коды error-событий и HTTP статусы в handlers.
var (
	ErrPartyNotFound   = errors.New("party not found")
	ErrSessionClosed   = errors.New("party is closed")
	ErrUnauthorized    = errors.New("host privileges required")
	ErrBanned          = errors.New("participant is banned from this party")
	ErrMuted           = errors.New("participant is muted")
	ErrChatDisabled    = errors.New("chat is disabled for this party")
	ErrNoSuchPoll      = errors.New("no such open poll")
	ErrPollAlreadyOpen = errors.New("a poll is already open")
	ErrNotFound        = errors.New("target not found")
	ErrPartyFull       = errors.New("party has maximum participants")
)

// Code returns the wire code carried by outbound error events.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrSessionClosed):
		return "SessionClosed"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrBanned):
		return "Banned"
	case errors.Is(err, ErrMuted):
		return "Muted"
	case errors.Is(err, ErrChatDisabled):
		return "ChatDisabled"
	case errors.Is(err, ErrNoSuchPoll):
		return "NoSuchPoll"
	case errors.Is(err, ErrPollAlreadyOpen):
		return "PollAlreadyOpen"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPartyNotFound):
		return "NotFound"
	case errors.Is(err, ErrPartyFull):
		return "PartyFull"
	default:
		return "Internal"
	}
}
