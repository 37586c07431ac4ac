package party

import (
	"testing"

	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
)

func TestJoinSendsSnapshotAndBroadcastsToOthers(t *testing.T) {
	p, out, _ := newTestParty(t, model.Settings{ChatEnabled: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")

	snaps := out.targeted["g1"]
	if len(snaps) == 0 || snaps[0].Type != event.OutJoined {
		t.Fatal("joiner must receive the snapshot first")
	}
	snap := snaps[0].Payload.(event.Snapshot)
	if snap.You.ID != "g1" || snap.You.Role != model.RoleGuest {
		t.Fatalf("snapshot you = %+v", snap.You)
	}
	if len(snap.Roster) != 2 {
		t.Fatalf("snapshot roster = %d, want 2", len(snap.Roster))
	}
	if snap.Roster[0].ID != "host" {
		t.Fatalf("roster must be join-ordered, got %s first", snap.Roster[0].ID)
	}

	// user_joined goes around the joiner, not to them.
	if got := out.excepted["g1"]; len(got) != 1 || got[0].Type != event.OutUserJoined {
		t.Fatalf("expected one user_joined around g1, got %v", got)
	}
}

func TestRejoinWhileOnRosterResendsSnapshot(t *testing.T) {
	p, out, _ := newTestParty(t, model.Settings{ChatEnabled: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")

	before := len(p.roster)
	join(p, "g1", "Gus")
	if len(p.roster) != before {
		t.Fatalf("rejoin must not duplicate roster entries")
	}
	var snapshots int
	for _, ev := range out.targeted["g1"] {
		if ev.Type == event.OutJoined {
			snapshots++
		}
	}
	if snapshots != 2 {
		t.Fatalf("expected snapshot resent on rejoin, got %d snapshots", snapshots)
	}
}

func TestRosterConsistencyAcrossJoinLeaveKickBan(t *testing.T) {
	p, _, _ := newTestParty(t, model.Settings{ChatEnabled: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")
	join(p, "g2", "Gwen")
	join(p, "g3", "Glen")

	p.drive("g1", "", &event.Inbound{Type: event.TypeLeave})
	p.drive("host", "", &event.Inbound{Type: event.TypeKickUser, Target: &event.TargetPayload{TargetParticipantID: "g2"}})
	p.drive("host", "", &event.Inbound{Type: event.TypeBanUser, Target: &event.TargetPayload{TargetParticipantID: "g3"}})

	if len(p.roster) != 1 {
		t.Fatalf("roster = %d, want only the host", len(p.roster))
	}
	if _, ok := p.roster["host"]; !ok {
		t.Fatal("host must remain on the roster")
	}
}

func TestBannedIDCanNeverRejoin(t *testing.T) {
	p, out, _ := newTestParty(t, model.Settings{ChatEnabled: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")

	p.drive("host", "", &event.Inbound{Type: event.TypeBanUser, Target: &event.TargetPayload{TargetParticipantID: "g1"}})
	join(p, "g1", "Gus")

	if got := out.lastError(t, "g1").Code; got != "Banned" {
		t.Fatalf("expected Banned, got %s", got)
	}
	if _, ok := p.roster["g1"]; ok {
		t.Fatal("banned participant must not re-enter the roster")
	}
}

// droppingBroadcaster behaves like the real hub: once a participant has been
// disconnected, targeted sends to them go nowhere until they reconnect.
type droppingBroadcaster struct {
	*captureBroadcaster
	gone map[string]bool
}

func (d *droppingBroadcaster) SendTo(partyID, participantID string, ev event.Outbound) {
	if d.gone[participantID] {
		return
	}
	d.captureBroadcaster.SendTo(partyID, participantID, ev)
}

func (d *droppingBroadcaster) Disconnect(partyID, participantID string) {
	d.gone[participantID] = true
	d.captureBroadcaster.Disconnect(partyID, participantID)
}

func TestBannedJoinGetsErrorEventBeforeDisconnect(t *testing.T) {
	out := &droppingBroadcaster{captureBroadcaster: newCapture(), gone: make(map[string]bool)}
	p := New(Options{
		ID:          "party-1",
		HostID:      "host",
		HostName:    "Helga",
		Settings:    model.Settings{ChatEnabled: true},
		Broadcaster: out,
	})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")
	p.drive("host", "", &event.Inbound{Type: event.TypeBanUser, Target: &event.TargetPayload{TargetParticipantID: "g1"}})

	// g1 reconnects: the hub registers the new connection before the join
	// command reaches the actor.
	out.gone["g1"] = false
	join(p, "g1", "Gus")

	if got := out.lastError(t, "g1").Code; got != "Banned" {
		t.Fatalf("banned joiner must receive the error event, got %s", got)
	}
	if !out.gone["g1"] {
		t.Fatal("banned joiner must be disconnected after the error event")
	}
}

func TestKickedIDMayRejoin(t *testing.T) {
	p, _, _ := newTestParty(t, model.Settings{ChatEnabled: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")

	p.drive("host", "", &event.Inbound{Type: event.TypeKickUser, Target: &event.TargetPayload{TargetParticipantID: "g1"}})
	join(p, "g1", "Gus")

	if _, ok := p.roster["g1"]; !ok {
		t.Fatal("kick is not a ban: rejoin must succeed")
	}
}

func TestRequireApprovalParksRequestForHost(t *testing.T) {
	p, out, _ := newTestParty(t, model.Settings{ChatEnabled: true, RequireApproval: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")

	if _, ok := p.roster["g1"]; ok {
		t.Fatal("guest must not be admitted before approval")
	}
	reqs := out.targeted["host"]
	last := reqs[len(reqs)-1]
	if last.Type != event.OutJoinRequested {
		t.Fatalf("host must receive join_requested, got %s", last.Type)
	}

	t.Run("approve admits and broadcasts", func(t *testing.T) {
		p.drive("host", "", &event.Inbound{Type: event.TypeJoinRequestResponse, JoinRequestResponse: &event.JoinRequestResponsePayload{
			TargetParticipantID: "g1",
			Approved:            true,
		}})
		if _, ok := p.roster["g1"]; !ok {
			t.Fatal("approved guest must be on the roster")
		}
		if len(p.pending) != 0 {
			t.Fatal("pending request must be discarded after resolution")
		}
	})
}

func TestRequireApprovalDenyNotifiesRequesterOnly(t *testing.T) {
	p, out, _ := newTestParty(t, model.Settings{ChatEnabled: true, RequireApproval: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")

	p.drive("host", "", &event.Inbound{Type: event.TypeJoinRequestResponse, JoinRequestResponse: &event.JoinRequestResponsePayload{
		TargetParticipantID: "g1",
		Approved:            false,
	}})

	if _, ok := p.roster["g1"]; ok {
		t.Fatal("denied guest must not be admitted")
	}
	evs := out.targeted["g1"]
	last := evs[len(evs)-1]
	if last.Type != event.OutJoinRequestResolved {
		t.Fatalf("requester must receive join_request_resolved, got %s", last.Type)
	}
	if res := last.Payload.(event.JoinResolution); res.Approved {
		t.Fatal("resolution must carry approved=false")
	}
	if len(out.disconnected) == 0 || out.disconnected[len(out.disconnected)-1] != "g1" {
		t.Fatal("denied requester must be disconnected")
	}
}

func TestApprovalResolutionIsHostOnly(t *testing.T) {
	p, out, _ := newTestParty(t, model.Settings{ChatEnabled: true, RequireApproval: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")
	p.drive("host", "", &event.Inbound{Type: event.TypeJoinRequestResponse, JoinRequestResponse: &event.JoinRequestResponsePayload{
		TargetParticipantID: "g1",
		Approved:            true,
	}})
	join(p, "g2", "Gwen")

	p.drive("g1", "", &event.Inbound{Type: event.TypeJoinRequestResponse, JoinRequestResponse: &event.JoinRequestResponsePayload{
		TargetParticipantID: "g2",
		Approved:            true,
	}})
	if got := out.lastError(t, "g1").Code; got != "Unauthorized" {
		t.Fatalf("expected Unauthorized, got %s", got)
	}
	if _, ok := p.roster["g2"]; ok {
		t.Fatal("guest approval must not admit anyone")
	}
}

func TestHostJoinSkipsApproval(t *testing.T) {
	p, _, _ := newTestParty(t, model.Settings{ChatEnabled: true, RequireApproval: true})
	join(p, "host", "Helga")
	if _, ok := p.roster["host"]; !ok {
		t.Fatal("host must be admitted without approval")
	}
	if p.roster["host"].Role != model.RoleHost {
		t.Fatal("host role must be assigned")
	}
}

func TestPendingRequesterDisconnectWithdrawsRequest(t *testing.T) {
	p, _, _ := newTestParty(t, model.Settings{ChatEnabled: true, RequireApproval: true})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")

	p.drive("g1", "", &event.Inbound{Type: event.TypeLeave})
	if len(p.pending) != 0 {
		t.Fatal("disconnect must withdraw the pending request")
	}
}

func TestPartyFull(t *testing.T) {
	out := newCapture()
	p := New(Options{
		ID:              "party-1",
		HostID:          "host",
		HostName:        "Helga",
		Settings:        model.Settings{ChatEnabled: true},
		MaxParticipants: 2,
		Broadcaster:     out,
	})
	join(p, "host", "Helga")
	join(p, "g1", "Gus")
	join(p, "g2", "Gwen")

	if got := out.lastError(t, "g2").Code; got != "PartyFull" {
		t.Fatalf("expected PartyFull, got %s", got)
	}
}
