package client

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"go.uber.org/zap"
)

// Reconciler applies authoritative broadcasts to the local player and rolls
// optimistic local updates forward or back as their confirmations arrive.
type Reconciler struct {
	player         Player
	driftThreshold float64 // seconds
	log            *zap.Logger

	mu      sync.Mutex
	pending map[string]func() // correlation id -> rollback
}

// NewReconciler creates a reconciler for one participant's player.
func NewReconciler(player Player, driftThresholdSeconds float64, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		player:         player,
		driftThreshold: driftThresholdSeconds,
		log:            log,
		pending:        make(map[string]func()),
	}
}

// ApplySync reconciles an authoritative playback report. Position is only
// corrected when drift exceeds the threshold, so harmless small drift never
// causes visible jitter; play/pause state must match exactly and is
// reconciled unconditionally.
func (r *Reconciler) ApplySync(sync event.PlaybackSync) {
	local := r.player.Position()
	drift := math.Abs(local - sync.Position)
	if drift > r.driftThreshold {
		r.log.Debug("corrective seek",
			zap.Float64("local", local),
			zap.Float64("authoritative", sync.Position),
			zap.Float64("drift", drift))
		r.player.SeekTo(sync.Position)
	}
	if sync.IsPlaying != r.player.IsPlaying() {
		if sync.IsPlaying {
			r.player.Play()
		} else {
			r.player.Pause()
		}
	}
}

// Optimistic applies a speculative local transition and registers its
// rollback. Returns the correlation id to attach to the outbound frame.
func (r *Reconciler) Optimistic(apply, rollback func()) string {
	id := uuid.New().String()
	apply()
	r.mu.Lock()
	r.pending[id] = rollback
	r.mu.Unlock()
	return id
}

// Resolve consumes an authoritative event carrying a correlation id. An error
// event rolls the matching optimistic change back; anything else confirms it
// (the authoritative payload then supersedes the guess through the normal
// event path). Events without a matching id are ignored here.
func (r *Reconciler) Resolve(out event.Outbound) {
	if out.CorrelationID == "" {
		return
	}
	r.mu.Lock()
	rollback, ok := r.pending[out.CorrelationID]
	if ok {
		delete(r.pending, out.CorrelationID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	if out.Type == event.OutError {
		r.log.Debug("optimistic update rejected", zap.String("correlation_id", out.CorrelationID))
		rollback()
	}
}

// PendingCount returns how many optimistic updates await resolution.
func (r *Reconciler) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
