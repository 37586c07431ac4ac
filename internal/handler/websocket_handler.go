package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/party"
	"github.com/psds-microservice/watch-party-service/internal/service"
	"go.uber.org/zap"
)

// PartyResolver resolves a party id to its live actor handle.
type PartyResolver interface {
	Get(partyID string) (*party.Party, error)
}

// PartyWSHandler handles WebSocket connections for /ws/party/:party_id/:participant_id.
type PartyWSHandler struct {
	hub    *service.PartyHub
	svc    PartyResolver
	logger *zap.Logger
}

// NewPartyWSHandler creates the WebSocket party handler.
func NewPartyWSHandler(hub *service.PartyHub, svc PartyResolver, logger *zap.Logger) *PartyWSHandler {
	return &PartyWSHandler{hub: hub, svc: svc, logger: logger}
}

// ServeWS upgrades the request to WebSocket and runs the event loop.
// Path: /ws/party/:party_id/:participant_id?name=DisplayName
// The identity layer in front of this service guarantees a stable participant
// id and display name per connection.
func (h *PartyWSHandler) ServeWS(c *gin.Context) {
	partyID := c.Param("party_id")
	participantID := c.Param("participant_id")
	name := c.Query("name")
	if partyID == "" || participantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "party_id and participant_id required"})
		return
	}
	if name == "" {
		name = participantID
	}

	actor, err := h.svc.Get(partyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
		return
	}

	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	peer, release := h.hub.Register(partyID, participantID, name, conn)

	// The connection itself is the join: admission, approval parking or a
	// Banned rejection all come back as events.
	if err := actor.Submit(party.Command{
		ParticipantID: participantID,
		Name:          name,
		Event:         &event.Inbound{Type: event.TypeJoin},
	}); err != nil {
		h.logger.Debug("join rejected, party closed", zap.String("party_id", partyID))
		release()
		return
	}

	// Writer goroutine: send from peer.Send to connection
	go h.writePump(peer)

	// Reader: decode frames and hand them to the party actor
	h.readPump(actor, peer)

	// Disconnect without an explicit leave is an implicit leave — but only
	// when this connection was still the participant's current one. A
	// superseded peer (the participant reconnected) must not evict them.
	if release() {
		_ = actor.Submit(party.Command{
			ParticipantID: participantID,
			Event:         &event.Inbound{Type: event.TypeLeave},
		})
	}
}

func (h *PartyWSHandler) readPump(actor *party.Party, p *service.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for {
		_, data, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.Error(err))
			}
			return
		}
		in, err := event.Decode(data)
		if err != nil {
			// Malformed frames are rejected to the sender, never silently dropped.
			h.hub.SendTo(p.PartyID, p.ParticipantID, event.Outbound{
				Type:    event.OutError,
				Payload: event.WireError{Code: "BadRequest", Message: err.Error()},
			})
			continue
		}
		if err := actor.Submit(party.Command{
			ParticipantID: p.ParticipantID,
			Name:          p.Name,
			Event:         in,
		}); err != nil {
			h.hub.SendTo(p.PartyID, p.ParticipantID, event.Outbound{
				Type:          event.OutError,
				CorrelationID: in.CorrelationID,
				Payload:       event.WireError{Code: errs.Code(err), Message: err.Error()},
			})
			return
		}
	}
}

func (h *PartyWSHandler) writePump(p *service.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for data := range p.Send {
		if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
