package service

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"go.uber.org/zap"
)

// Peer represents one participant's WebSocket connection in a party.
type Peer struct {
	PartyID       string
	ParticipantID string
	Name          string
	Conn          *websocket.Conn
	Send          chan []byte
}

// PartyHub manages WebSocket connections per party and implements the actor's
// Broadcaster: broadcast, targeted send, disconnect. All sends are
// non-blocking; a peer with a full send buffer loses the frame rather than
// stalling the party actor.
type PartyHub struct {
	mu         sync.RWMutex
	peers      map[string]map[string]*Peer // partyID -> participantID -> peer
	upgrader   websocket.Upgrader
	maxMsgSize int64
	log        *zap.Logger
}

// NewPartyHub creates the hub.
func NewPartyHub(readBufferSize, writeBufferSize int, maxMessageSize int64, log *zap.Logger) *PartyHub {
	return &PartyHub{
		peers:      make(map[string]map[string]*Peer),
		maxMsgSize: maxMessageSize,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			// Allow all origins for dev; in prod set CheckOrigin.
		},
	}
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (h *PartyHub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}

// Register adds a participant's connection to a party and returns a release
// function. A second connection for the same participant replaces the first
// (reconnect before the disconnect was noticed). Release reports whether the
// peer was still the current registration when it ran; false means a newer
// connection superseded it, and the caller must not treat the teardown as the
// participant leaving.
func (h *PartyHub) Register(partyID, participantID, name string, conn *websocket.Conn) (*Peer, func() bool) {
	if h.maxMsgSize > 0 {
		conn.SetReadLimit(h.maxMsgSize)
	}
	p := &Peer{
		PartyID:       partyID,
		ParticipantID: participantID,
		Name:          name,
		Conn:          conn,
		Send:          make(chan []byte, 256),
	}
	h.mu.Lock()
	if h.peers[partyID] == nil {
		h.peers[partyID] = make(map[string]*Peer)
	}
	if old, ok := h.peers[partyID][participantID]; ok {
		close(old.Send)
		_ = old.Conn.Close()
	}
	h.peers[partyID][participantID] = p
	h.mu.Unlock()

	h.log.Info("peer registered",
		zap.String("party_id", partyID),
		zap.String("participant_id", participantID))

	release := func() bool {
		return h.unregister(p)
	}
	return p, release
}

// unregister removes the peer and reports whether it was still the current
// registration. A peer already replaced by a newer connection for the same
// participant (or removed by Disconnect/CloseParty) is left alone.
func (h *PartyHub) unregister(p *Peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.peers[p.PartyID]
	if !ok || m[p.ParticipantID] != p {
		return false
	}
	delete(m, p.ParticipantID)
	if len(m) == 0 {
		delete(h.peers, p.PartyID)
	}
	close(p.Send)
	h.log.Info("peer unregistered",
		zap.String("party_id", p.PartyID),
		zap.String("participant_id", p.ParticipantID))
	return true
}

// Broadcast sends the event to every peer in the party.
func (h *PartyHub) Broadcast(partyID string, ev event.Outbound) {
	h.fanOut(partyID, "", ev)
}

// BroadcastExcept sends the event to every peer in the party except one.
func (h *PartyHub) BroadcastExcept(partyID, exceptID string, ev event.Outbound) {
	h.fanOut(partyID, exceptID, ev)
}

func (h *PartyHub) fanOut(partyID, exceptID string, ev event.Outbound) {
	data, err := ev.Encode()
	if err != nil {
		h.log.Error("encode outbound event", zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, p := range h.peers[partyID] {
		if id == exceptID {
			continue
		}
		h.trySend(p, data)
	}
}

// SendTo sends the event to a single participant. Silently dropped if the
// participant has no live connection.
func (h *PartyHub) SendTo(partyID, participantID string, ev event.Outbound) {
	data, err := ev.Encode()
	if err != nil {
		h.log.Error("encode outbound event", zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if p, ok := h.peers[partyID][participantID]; ok {
		h.trySend(p, data)
	}
}

// trySend is the non-blocking per-peer delivery. Caller holds at least the
// read lock, so the Send channel cannot be closed concurrently.
func (h *PartyHub) trySend(p *Peer, data []byte) {
	select {
	case p.Send <- data:
	default:
		h.log.Warn("peer send buffer full, dropping frame",
			zap.String("party_id", p.PartyID),
			zap.String("participant_id", p.ParticipantID))
	}
}

// Disconnect closes a single participant's connection (kick, ban, deny).
func (h *PartyHub) Disconnect(partyID, participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.peers[partyID]
	if !ok {
		return
	}
	p, ok := m[participantID]
	if !ok {
		return
	}
	delete(m, participantID)
	if len(m) == 0 {
		delete(h.peers, partyID)
	}
	close(p.Send)
	_ = p.Conn.Close()
}

// CloseParty closes every connection in the party and removes them.
func (h *PartyHub) CloseParty(partyID string) {
	h.mu.Lock()
	m, ok := h.peers[partyID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.peers, partyID)
	for _, p := range m {
		close(p.Send)
	}
	h.mu.Unlock()

	for _, p := range m {
		_ = p.Conn.Close()
	}
	h.log.Info("party connections closed", zap.String("party_id", partyID))
}

// PeerCount returns the number of live connections in a party (for debugging).
func (h *PartyHub) PeerCount(partyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers[partyID])
}
