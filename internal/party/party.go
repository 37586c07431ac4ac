// Package party implements the watch party coordinator core: one actor
// goroutine per party owns all of that party's state (roster, chat, polls,
// playback) and processes inbound events strictly one at a time, so the
// submodule logic is sequential and race-free. Different parties share
// nothing and run fully in parallel.
package party

import (
	"time"

	"github.com/google/uuid"
	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/event"
	"github.com/psds-microservice/watch-party-service/internal/model"
	"go.uber.org/zap"
)

// Broadcaster delivers outbound events to connected participants. Fan-out must
// be non-blocking per peer: a slow or dead connection never stalls the actor.
type Broadcaster interface {
	Broadcast(partyID string, ev event.Outbound)
	BroadcastExcept(partyID, exceptID string, ev event.Outbound)
	SendTo(partyID, participantID string, ev event.Outbound)
	Disconnect(partyID, participantID string)
	CloseParty(partyID string)
}

// Recorder persists lifecycle milestones (party activated/closed, poll
// results). Optional; live state never goes through it.
type Recorder interface {
	PartyActivated(partyID string)
	PollEnded(partyID string, poll *model.Poll)
	PartyClosed(partyID string, closedAt time.Time)
}

type internalAction int

const (
	actionNone internalAction = iota
	actionPollExpired
	actionCloseParty
)

// Command is one unit of work for the party actor: either a decoded client
// event or an internal action (poll timer expiry, host close).
type Command struct {
	ParticipantID string
	Name          string // display name, consulted on join
	Event         *event.Inbound

	action  internalAction
	pollID  string
	inspect chan []model.Participant
}

// Options configures a new party actor.
type Options struct {
	ID               string
	HostID           string
	HostName         string
	Settings         model.Settings
	SnapshotMessages int // recent messages included in a join snapshot
	MaxParticipants  int // 0 = unlimited
	Broadcaster      Broadcaster
	Recorder         Recorder
	Logger           *zap.Logger
	OnClosed         func(partyID string)
}

// Party is a single watch party actor. All fields below inbox are owned by the
// actor goroutine and must only be touched from Run.
type Party struct {
	id        string
	hostID    string
	hostName  string
	createdAt time.Time

	inbox chan Command
	done  chan struct{}

	out      Broadcaster
	rec      Recorder
	log      *zap.Logger
	onClosed func(partyID string)

	snapshotMessages int
	maxParticipants  int

	state    model.PartyState
	settings model.Settings
	roster   map[string]*model.Participant
	banned   map[string]struct{}
	pending  map[string]*model.PendingJoinRequest // keyed by participant id

	messages []*model.Message
	msgIndex map[string]*model.Message

	openPoll    *model.Poll
	pollHistory []*model.Poll
	pollTimer   *time.Timer

	playback model.PlaybackState
}

// New creates a party actor in the Created state. Call Run in its own
// goroutine to start processing.
func New(opts Options) *Party {
	if opts.SnapshotMessages <= 0 {
		opts.SnapshotMessages = 50
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Party{
		id:               opts.ID,
		hostID:           opts.HostID,
		hostName:         opts.HostName,
		createdAt:        time.Now(),
		inbox:            make(chan Command, 64),
		done:             make(chan struct{}),
		out:              opts.Broadcaster,
		rec:              opts.Recorder,
		log:              opts.Logger.With(zap.String("party_id", opts.ID)),
		onClosed:         opts.OnClosed,
		snapshotMessages: opts.SnapshotMessages,
		maxParticipants:  opts.MaxParticipants,
		state:            model.PartyStateCreated,
		settings:         opts.Settings,
		roster:           make(map[string]*model.Participant),
		banned:           make(map[string]struct{}),
		pending:          make(map[string]*model.PendingJoinRequest),
		msgIndex:         make(map[string]*model.Message),
	}
}

// ID returns the party id.
func (p *Party) ID() string { return p.id }

// Done is closed when the party reaches the Closed state.
func (p *Party) Done() <-chan struct{} { return p.done }

// Submit queues a command for the actor. Returns ErrSessionClosed once the
// party has closed.
func (p *Party) Submit(cmd Command) error {
	select {
	case <-p.done:
		return errs.ErrSessionClosed
	case p.inbox <- cmd:
		return nil
	}
}

// Close asks the actor to close the party (host REST delete or shutdown).
func (p *Party) Close() {
	_ = p.Submit(Command{action: actionCloseParty})
}

// Run is the actor loop. It exits when the party closes.
func (p *Party) Run() {
	for {
		select {
		case <-p.done:
			return
		case cmd := <-p.inbox:
			p.handle(cmd)
			if p.state == model.PartyStateClosed {
				return
			}
		}
	}
}

// handle processes exactly one command. Every mutation is atomic: an error
// leaves party state untouched and is reported only to the originator.
func (p *Party) handle(cmd Command) {
	switch cmd.action {
	case actionPollExpired:
		p.expirePoll(cmd.pollID)
		return
	case actionCloseParty:
		p.close()
		return
	}
	if cmd.inspect != nil {
		cmd.inspect <- p.rosterList()
		return
	}

	in := cmd.Event
	if in == nil {
		return
	}
	if p.state == model.PartyStateClosed {
		p.reject(cmd.ParticipantID, in.CorrelationID, errs.ErrSessionClosed)
		return
	}

	var err error
	switch in.Type {
	case event.TypeJoin:
		err = p.join(cmd.ParticipantID, cmd.Name, in.CorrelationID)
	case event.TypeLeave:
		p.leave(cmd.ParticipantID)
	default:
		// Everything past join requires roster membership.
		sender, ok := p.roster[cmd.ParticipantID]
		if !ok {
			p.reject(cmd.ParticipantID, in.CorrelationID, errs.ErrNotFound)
			return
		}
		switch in.Type {
		case event.TypeMessage:
			err = p.sendMessage(sender, in.Message, in.CorrelationID)
		case event.TypeReaction:
			err = p.addReaction(sender, in.Reaction, in.CorrelationID)
		case event.TypeVideoSync:
			p.reportPlayback(sender, in.VideoSync, in.CorrelationID)
		case event.TypeUpdateSettings:
			err = p.updateSettings(sender, in.UpdateSettings, in.CorrelationID)
		case event.TypeJoinRequestResponse:
			err = p.resolveJoinRequest(sender, in.JoinRequestResponse, in.CorrelationID)
		case event.TypeKickUser:
			err = p.kick(sender, in.Target.TargetParticipantID, in.CorrelationID)
		case event.TypeBanUser:
			err = p.ban(sender, in.Target.TargetParticipantID, in.CorrelationID)
		case event.TypeMuteUser:
			err = p.setMuted(sender, in.Mute, in.CorrelationID)
		case event.TypeCreatePoll:
			err = p.createPoll(sender, in.CreatePoll, in.CorrelationID)
		case event.TypeVotePoll:
			err = p.vote(sender, in.VotePoll, in.CorrelationID)
		case event.TypeEndPoll:
			err = p.endPoll(sender, in.EndPoll.PollID, in.CorrelationID)
		}
	}
	if err != nil {
		p.reject(cmd.ParticipantID, in.CorrelationID, err)
	}
}

// reject reports a recoverable error to the originating participant only.
func (p *Party) reject(participantID, correlationID string, err error) {
	p.log.Debug("event rejected",
		zap.String("participant_id", participantID),
		zap.String("code", errs.Code(err)),
		zap.Error(err))
	p.out.SendTo(p.id, participantID, event.Outbound{
		Type:          event.OutError,
		CorrelationID: correlationID,
		Payload:       event.WireError{Code: errs.Code(err), Message: err.Error()},
	})
}

// close moves the party to Closed, stops timers, notifies the recorder and
// drops all connections. Idempotent.
func (p *Party) close() {
	if p.state == model.PartyStateClosed {
		return
	}
	p.state = model.PartyStateClosed
	if p.pollTimer != nil {
		p.pollTimer.Stop()
		p.pollTimer = nil
	}
	now := time.Now()
	if p.rec != nil {
		p.rec.PartyClosed(p.id, now)
	}
	p.out.CloseParty(p.id)
	if p.onClosed != nil {
		p.onClosed(p.id)
	}
	close(p.done)
	p.log.Info("party closed", zap.Int("messages", len(p.messages)), zap.Int("polls_ended", len(p.pollHistory)))
}

func newID() string { return uuid.New().String() }
