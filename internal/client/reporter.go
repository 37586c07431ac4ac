package client

import (
	"sync"
	"time"
)

// SyncSender delivers one outbound playback report to the party.
type SyncSender func(position float64, isPlaying bool)

// Reporter bounds outbound sync traffic: player-driven reports are debounced
// to at most one per debounce interval (the latest report wins a suppressed
// window), and a heartbeat repeats the current state every heartbeat interval
// while the player is playing, bounding staleness. Both timers stop
// deterministically on Close.
type Reporter struct {
	player    Player
	send      SyncSender
	debounce  time.Duration
	heartbeat time.Duration

	mu        sync.Mutex
	lastSent  time.Time
	trailing  *time.Timer
	latestPos float64
	latestPly bool
	closed    bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewReporter creates a reporter. Call Start to arm the heartbeat.
func NewReporter(player Player, send SyncSender, debounce, heartbeat time.Duration) *Reporter {
	return &Reporter{
		player:    player,
		send:      send,
		debounce:  debounce,
		heartbeat: heartbeat,
		stop:      make(chan struct{}),
	}
}

// Start launches the heartbeat loop.
func (r *Reporter) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				if r.player.IsPlaying() {
					r.Report(r.player.Position(), true)
				}
			}
		}
	}()
}

// Report requests an outbound sync with the given state. Sent immediately if
// the debounce window has passed; otherwise the report is deferred to the end
// of the window, replacing any earlier deferred values.
func (r *Reporter) Report(position float64, isPlaying bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.latestPos = position
	r.latestPly = isPlaying

	elapsed := time.Since(r.lastSent)
	if elapsed >= r.debounce {
		r.lastSent = time.Now()
		r.mu.Unlock()
		r.send(position, isPlaying)
		return
	}
	if r.trailing == nil {
		r.trailing = time.AfterFunc(r.debounce-elapsed, r.flushTrailing)
	}
	r.mu.Unlock()
}

func (r *Reporter) flushTrailing() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.trailing = nil
	r.lastSent = time.Now()
	pos, playing := r.latestPos, r.latestPly
	r.mu.Unlock()
	r.send(pos, playing)
}

// Close stops the heartbeat and cancels any deferred report.
func (r *Reporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.trailing != nil {
		r.trailing.Stop()
		r.trailing = nil
	}
	r.mu.Unlock()
	close(r.stop)
	r.wg.Wait()
}
