package party

import (
	"testing"

	"github.com/psds-microservice/watch-party-service/internal/model"
)

func TestRegistryAddGetRemove(t *testing.T) {
	r := NewRegistry()
	p := New(Options{ID: "p1", HostID: "h", Broadcaster: newCapture()})
	r.Add(p)

	got, err := r.Get("p1")
	if err != nil || got != p {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := r.Get("p2"); err == nil {
		t.Fatal("unknown id must return an error")
	}

	r.Remove("p1")
	if _, err := r.Get("p1"); err == nil {
		t.Fatal("removed party must not resolve")
	}
}

func TestRegistryCloseAllStopsActors(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"p1", "p2"} {
		p := New(Options{
			ID:          id,
			HostID:      "h",
			Settings:    model.Settings{ChatEnabled: true},
			Broadcaster: newCapture(),
			OnClosed:    r.Remove,
		})
		r.Add(p)
		go p.Run()
	}

	r.CloseAll()
	if r.Len() != 0 {
		t.Fatalf("registry len = %d after CloseAll, want 0", r.Len())
	}
}
