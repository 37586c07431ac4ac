package party

import (
	"time"

	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
)

// reportPlayback takes any participant's local playback report as the new
// authoritative state (last report wins, peer-symmetric) and rebroadcasts it
// to everyone except the reporter. Drift correction happens client-side.
func (p *Party) reportPlayback(sender *model.Participant, sync *event.VideoSyncPayload, correlationID string) {
	p.playback = model.PlaybackState{
		Position:  sync.Position,
		IsPlaying: sync.IsPlaying,
		UpdatedAt: time.Now(),
		UpdatedBy: sender.ID,
	}
	p.out.BroadcastExcept(p.id, sender.ID, event.Outbound{
		Type:          event.OutVideoSync,
		CorrelationID: correlationID,
		Payload: event.PlaybackSync{
			Position:  p.playback.Position,
			IsPlaying: p.playback.IsPlaying,
			UpdatedBy: p.playback.UpdatedBy,
			UpdatedAt: p.playback.UpdatedAt,
		},
	})
}
