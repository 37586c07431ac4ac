package party

import (
	"testing"
	"time"

	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
)

// captureBroadcaster records everything the actor emits, in emission order.
type captureBroadcaster struct {
	broadcasts   []event.Outbound
	excepted     map[string][]event.Outbound // exceptID -> events broadcast around them
	targeted     map[string][]event.Outbound // participantID -> direct sends
	disconnected []string
	partyClosed  bool
}

func newCapture() *captureBroadcaster {
	return &captureBroadcaster{
		excepted: make(map[string][]event.Outbound),
		targeted: make(map[string][]event.Outbound),
	}
}

func (c *captureBroadcaster) Broadcast(partyID string, ev event.Outbound) {
	c.broadcasts = append(c.broadcasts, ev)
}

func (c *captureBroadcaster) BroadcastExcept(partyID, exceptID string, ev event.Outbound) {
	c.broadcasts = append(c.broadcasts, ev)
	c.excepted[exceptID] = append(c.excepted[exceptID], ev)
}

func (c *captureBroadcaster) SendTo(partyID, participantID string, ev event.Outbound) {
	c.targeted[participantID] = append(c.targeted[participantID], ev)
}

func (c *captureBroadcaster) Disconnect(partyID, participantID string) {
	c.disconnected = append(c.disconnected, participantID)
}

func (c *captureBroadcaster) CloseParty(partyID string) { c.partyClosed = true }

func (c *captureBroadcaster) lastBroadcast(t *testing.T, typ event.OutType) event.Outbound {
	t.Helper()
	for i := len(c.broadcasts) - 1; i >= 0; i-- {
		if c.broadcasts[i].Type == typ {
			return c.broadcasts[i]
		}
	}
	t.Fatalf("no %s broadcast recorded", typ)
	return event.Outbound{}
}

func (c *captureBroadcaster) lastError(t *testing.T, participantID string) event.WireError {
	t.Helper()
	evs := c.targeted[participantID]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type == event.OutError {
			return evs[i].Payload.(event.WireError)
		}
	}
	t.Fatalf("no error event sent to %s", participantID)
	return event.WireError{}
}

type captureRecorder struct {
	activated  int
	pollsEnded []*model.Poll
	closedAt   *time.Time
}

func (r *captureRecorder) PartyActivated(string) { r.activated++ }
func (r *captureRecorder) PollEnded(_ string, poll *model.Poll) {
	r.pollsEnded = append(r.pollsEnded, poll)
}
func (r *captureRecorder) PartyClosed(_ string, at time.Time) { r.closedAt = &at }

// newTestParty builds an actor whose commands are driven synchronously via
// handle, so tests observe deterministic state without goroutines.
func newTestParty(t *testing.T, settings model.Settings) (*Party, *captureBroadcaster, *captureRecorder) {
	t.Helper()
	out := newCapture()
	rec := &captureRecorder{}
	p := New(Options{
		ID:          "party-1",
		HostID:      "host",
		HostName:    "Helga",
		Settings:    settings,
		Broadcaster: out,
		Recorder:    rec,
	})
	return p, out, rec
}

func (p *Party) drive(participantID, name string, in *event.Inbound) {
	p.handle(Command{ParticipantID: participantID, Name: name, Event: in})
}

func join(p *Party, id, name string) {
	p.drive(id, name, &event.Inbound{Type: event.TypeJoin})
}

func TestLifecycleCreatedToActiveToClosed(t *testing.T) {
	p, out, rec := newTestParty(t, model.Settings{ChatEnabled: true})
	if p.state != model.PartyStateCreated {
		t.Fatalf("expected created, got %s", p.state)
	}

	join(p, "host", "Helga")
	if p.state != model.PartyStateActive {
		t.Fatalf("expected active after first join, got %s", p.state)
	}
	if rec.activated != 1 {
		t.Fatalf("expected one activation record, got %d", rec.activated)
	}

	p.drive("host", "", &event.Inbound{Type: event.TypeLeave})
	if p.state != model.PartyStateClosed {
		t.Fatalf("expected closed after last leave, got %s", p.state)
	}
	if !out.partyClosed {
		t.Fatal("expected hub CloseParty on empty roster")
	}
	if rec.closedAt == nil {
		t.Fatal("expected close to be recorded")
	}

	select {
	case <-p.Done():
	default:
		t.Fatal("Done must be closed once the party closes")
	}
}

func TestEventsRejectedAfterClose(t *testing.T) {
	p, out, _ := newTestParty(t, model.Settings{ChatEnabled: true})
	join(p, "host", "Helga")
	p.drive("host", "", &event.Inbound{Type: event.TypeLeave})

	p.drive("g1", "Gus", &event.Inbound{Type: event.TypeJoin})
	if got := out.lastError(t, "g1").Code; got != "SessionClosed" {
		t.Fatalf("expected SessionClosed, got %s", got)
	}

	if err := p.Submit(Command{ParticipantID: "g1", Event: &event.Inbound{Type: event.TypeJoin}}); err == nil {
		t.Fatal("Submit after close must fail")
	}
}

func TestNonMemberEventsRejected(t *testing.T) {
	p, out, _ := newTestParty(t, model.Settings{ChatEnabled: true})
	join(p, "host", "Helga")

	p.drive("stranger", "", &event.Inbound{
		Type:    event.TypeMessage,
		Message: &event.MessagePayload{Content: "hi"},
	})
	if got := out.lastError(t, "stranger").Code; got != "NotFound" {
		t.Fatalf("expected NotFound for non-member, got %s", got)
	}
}

// TestScenarioHostGuestPoll runs the full flow: guest joins, host opens a
// two-option poll, guest votes for the second option, host ends the poll.
func TestScenarioHostGuestPoll(t *testing.T) {
	p, out, rec := newTestParty(t, model.Settings{ChatEnabled: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")

	if len(p.roster) != 2 {
		t.Fatalf("roster = %d, want 2", len(p.roster))
	}

	p.drive("host", "", &event.Inbound{Type: event.TypeCreatePoll, CreatePoll: &event.CreatePollPayload{
		Title:           "Next?",
		Options:         []event.CreatePollOption{{Label: "X"}, {Label: "Y"}},
		DurationSeconds: 300,
	}})
	if p.openPoll == nil {
		t.Fatal("expected open poll")
	}
	optY := p.openPoll.Options[1].ID

	p.drive("g1", "", &event.Inbound{Type: event.TypeVotePoll, VotePoll: &event.VotePollPayload{
		PollID:   p.openPoll.ID,
		OptionID: optY,
	}})

	pollID := p.openPoll.ID
	p.drive("host", "", &event.Inbound{Type: event.TypeEndPoll, EndPoll: &event.EndPollPayload{PollID: pollID}})

	res := out.lastBroadcast(t, event.OutPollEnded).Payload.(event.PollResult)
	if res.WinnerOptionID != optY {
		t.Fatalf("winner = %s, want %s", res.WinnerOptionID, optY)
	}
	if p.openPoll != nil {
		t.Fatal("open poll must be cleared after end")
	}
	if len(p.pollHistory) != 1 {
		t.Fatalf("poll history = %d, want 1", len(p.pollHistory))
	}
	if len(rec.pollsEnded) != 1 {
		t.Fatalf("recorded polls = %d, want 1", len(rec.pollsEnded))
	}
}
