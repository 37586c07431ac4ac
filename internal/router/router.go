package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/watch-party-service/internal/handler"
	"github.com/psds-microservice/watch-party-service/pkg/constants"
)

// New builds the HTTP router.
func New(
	partyHandler *handler.PartyHandler,
	partyWS *handler.PartyWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// REST parties
	parties := r.Group("/parties")
	{
		parties.POST("", partyHandler.CreateParty)
		parties.GET("/:id", partyHandler.GetParty)
		parties.DELETE("/:id", partyHandler.CloseParty)
		parties.GET("/:id/participants", partyHandler.GetPartyParticipants)
	}

	// WebSocket: /ws/party/:party_id/:participant_id
	r.GET("/ws/party/:party_id/:participant_id", partyWS.ServeWS)

	return r
}
