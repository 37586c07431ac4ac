package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/model"
	"github.com/psds-microservice/watch-party-service/internal/service"
)

// PartyServicer is the lifecycle surface handlers depend on.
type PartyServicer interface {
	Create(hostID, hostName string, settings model.Settings) (*model.Party, error)
	Close(partyID string) error
	Participants(partyID string) ([]model.Participant, error)
	Lookup(partyID string) (*model.Party, error)
}

// PartyHandler handles REST API for parties.
type PartyHandler struct {
	svc PartyServicer
	cfg *service.WSConfig
}

// NewPartyHandler creates a party handler.
func NewPartyHandler(svc PartyServicer, wsBaseURL string) *PartyHandler {
	return &PartyHandler{
		svc: svc,
		cfg: &service.WSConfig{BaseURL: wsBaseURL},
	}
}

// CreateParty godoc
// POST /parties
func (h *PartyHandler) CreateParty(c *gin.Context) {
	var req model.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	p, err := h.svc.Create(req.HostID, req.HostName, req.Settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create party"})
		return
	}
	c.JSON(http.StatusCreated, model.CreatePartyResponse{
		PartyID: p.ID,
		WSURL:   h.cfg.WSURL(p.ID, req.HostID),
		State:   string(p.State),
	})
}

// GetParty godoc
// GET /parties/:id
func (h *PartyHandler) GetParty(c *gin.Context) {
	partyID := c.Param("id")
	if partyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "party_id required"})
		return
	}
	p, err := h.svc.Lookup(partyID)
	if err != nil {
		if errors.Is(err, errs.ErrPartyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get party"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// CloseParty godoc
// DELETE /parties/:id
func (h *PartyHandler) CloseParty(c *gin.Context) {
	partyID := c.Param("id")
	if partyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "party_id required"})
		return
	}
	if err := h.svc.Close(partyID); err != nil {
		if errors.Is(err, errs.ErrPartyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to close party"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPartyParticipants godoc
// GET /parties/:id/participants
func (h *PartyHandler) GetPartyParticipants(c *gin.Context) {
	partyID := c.Param("id")
	if partyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "party_id required"})
		return
	}
	participants, err := h.svc.Participants(partyID)
	if err != nil {
		if errors.Is(err, errs.ErrPartyNotFound) || errors.Is(err, errs.ErrSessionClosed) {
			c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get participants"})
		return
	}
	c.JSON(http.StatusOK, model.PartyParticipantsResponse{
		PartyID:      partyID,
		Participants: participants,
	})
}
