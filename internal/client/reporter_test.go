package client

import (
	"sync"
	"testing"
	"time"
)

type sentReport struct {
	position float64
	playing  bool
}

type reportSink struct {
	mu      sync.Mutex
	reports []sentReport
}

func (s *reportSink) send(position float64, playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, sentReport{position, playing})
}

func (s *reportSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func (s *reportSink) last(t *testing.T) sentReport {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reports) == 0 {
		t.Fatal("no reports sent")
	}
	return s.reports[len(s.reports)-1]
}

func TestDebounceSuppressesBursts(t *testing.T) {
	sink := &reportSink{}
	r := NewReporter(&fakePlayer{}, sink.send, 50*time.Millisecond, time.Hour)
	defer r.Close()

	// A burst of reports inside one debounce window: the first goes out
	// immediately, the rest collapse into a single trailing report carrying
	// the latest values.
	r.Report(1.0, true)
	r.Report(2.0, true)
	r.Report(3.0, true)

	time.Sleep(120 * time.Millisecond)
	if got := sink.count(); got != 2 {
		t.Fatalf("reports = %d, want leading + trailing", got)
	}
	if last := sink.last(t); last.position != 3.0 {
		t.Fatalf("trailing report = %+v, want the latest position", last)
	}
}

func TestSpacedReportsPassThrough(t *testing.T) {
	sink := &reportSink{}
	r := NewReporter(&fakePlayer{}, sink.send, 30*time.Millisecond, time.Hour)
	defer r.Close()

	r.Report(1.0, true)
	time.Sleep(60 * time.Millisecond)
	r.Report(2.0, true)
	time.Sleep(30 * time.Millisecond)

	if got := sink.count(); got != 2 {
		t.Fatalf("reports = %d, want 2 immediate sends", got)
	}
}

func TestHeartbeatFiresWhilePlaying(t *testing.T) {
	sink := &reportSink{}
	player := &fakePlayer{position: 42, playing: true}
	r := NewReporter(player, sink.send, time.Millisecond, 40*time.Millisecond)
	r.Start()
	defer r.Close()

	time.Sleep(150 * time.Millisecond)
	if got := sink.count(); got < 2 {
		t.Fatalf("heartbeat reports = %d, want several while playing", got)
	}
	if last := sink.last(t); last.position != 42 || !last.playing {
		t.Fatalf("heartbeat report = %+v", last)
	}
}

func TestHeartbeatSilentWhilePaused(t *testing.T) {
	sink := &reportSink{}
	player := &fakePlayer{position: 42, playing: false}
	r := NewReporter(player, sink.send, time.Millisecond, 20*time.Millisecond)
	r.Start()
	defer r.Close()

	time.Sleep(100 * time.Millisecond)
	if got := sink.count(); got != 0 {
		t.Fatalf("reports = %d, heartbeat must stay silent while paused", got)
	}
}

func TestCloseCancelsTimers(t *testing.T) {
	sink := &reportSink{}
	r := NewReporter(&fakePlayer{playing: true}, sink.send, 50*time.Millisecond, 10*time.Millisecond)
	r.Start()

	r.Report(1.0, true) // immediate
	r.Report(2.0, true) // deferred to the trailing edge
	r.Close()

	sent := sink.count()
	time.Sleep(120 * time.Millisecond)
	if got := sink.count(); got != sent {
		t.Fatalf("reports after Close: %d -> %d, timers must be cancelled", sent, got)
	}
}
