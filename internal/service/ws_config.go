package service

import "fmt"

// WSConfig holds WebSocket URL base for responses.
type WSConfig struct {
	BaseURL string
}

// WSURL returns the WebSocket URL for a party and participant
// (e.g. wss://host/ws/party/partyID/participantID).
func (c *WSConfig) WSURL(partyID, participantID string) string {
	if c == nil || c.BaseURL == "" {
		return fmt.Sprintf("/ws/party/%s/%s", partyID, participantID)
	}
	base := c.BaseURL
	if base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return fmt.Sprintf("%s/ws/party/%s/%s", base, partyID, participantID)
}
