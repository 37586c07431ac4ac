package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/psds-microservice/watch-party-service/internal/config"
	"github.com/psds-microservice/watch-party-service/internal/errs"
	"github.com/psds-microservice/watch-party-service/internal/model"
	"github.com/psds-microservice/watch-party-service/internal/party"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PartyService manages watch party lifecycle: a Postgres record per party plus
// the in-memory actor that owns all live state.
type PartyService struct {
	db       *gorm.DB
	cfg      *config.Config
	hub      *PartyHub
	registry *party.Registry
	log      *zap.Logger
}

// NewPartyService creates a party service.
func NewPartyService(db *gorm.DB, cfg *config.Config, hub *PartyHub, log *zap.Logger) *PartyService {
	return &PartyService{
		db:       db,
		cfg:      cfg,
		hub:      hub,
		registry: party.NewRegistry(),
		log:      log,
	}
}

// Create inserts the lifecycle record and spawns the party actor.
func (s *PartyService) Create(hostID, hostName string, settings model.Settings) (*model.Party, error) {
	id := uuid.New().String()
	ent := &model.WatchParty{
		ID:              id,
		HostID:          hostID,
		HostName:        hostName,
		IsPrivate:       settings.IsPrivate,
		RequireApproval: settings.RequireApproval,
		ChatEnabled:     settings.ChatEnabled,
		Status:          string(model.PartyStateCreated),
	}
	if err := s.db.Create(ent).Error; err != nil {
		return nil, err
	}

	p := party.New(party.Options{
		ID:               id,
		HostID:           hostID,
		HostName:         hostName,
		Settings:         settings,
		SnapshotMessages: s.cfg.SnapshotMessages,
		MaxParticipants:  s.cfg.PartyMaxParticipants,
		Broadcaster:      s.hub,
		Recorder:         s,
		Logger:           s.log,
		OnClosed:         s.registry.Remove,
	})
	s.registry.Add(p)
	go p.Run()

	s.log.Info("party created", zap.String("party_id", id), zap.String("host_id", hostID))
	return &model.Party{
		ID:        id,
		HostID:    hostID,
		Settings:  settings,
		State:     model.PartyStateCreated,
		CreatedAt: ent.CreatedAt,
	}, nil
}

// Get returns the live actor handle for a party id.
func (s *PartyService) Get(partyID string) (*party.Party, error) {
	return s.registry.Get(partyID)
}

// Participants returns the current roster of a live party.
func (s *PartyService) Participants(partyID string) ([]model.Participant, error) {
	p, err := s.registry.Get(partyID)
	if err != nil {
		return nil, err
	}
	return p.Participants()
}

// Close asks a party actor to close and waits for it to stop.
func (s *PartyService) Close(partyID string) error {
	p, err := s.registry.Get(partyID)
	if err != nil {
		return err
	}
	p.Close()
	<-p.Done()
	return nil
}

// Shutdown closes every live party (graceful shutdown path).
func (s *PartyService) Shutdown() {
	s.registry.CloseAll()
}

// Lifecycle recorder: called from party actor goroutines. Writes run
// asynchronously so a slow database never blocks event processing.

// PartyActivated marks the record active on first join.
func (s *PartyService) PartyActivated(partyID string) {
	go func() {
		err := s.db.Model(&model.WatchParty{}).
			Where("id = ?", partyID).
			Update("status", string(model.PartyStateActive)).Error
		if err != nil {
			s.log.Warn("record party activation", zap.String("party_id", partyID), zap.Error(err))
		}
	}()
}

// PollEnded persists an ended poll's summary row.
func (s *PartyService) PollEnded(partyID string, poll *model.Poll) {
	ent := &model.PartyPoll{
		ID:             poll.ID,
		PartyID:        partyID,
		Title:          poll.Title,
		CreatorID:      poll.CreatorID,
		WinnerOptionID: poll.WinnerOptionID,
		TotalVotes:     len(poll.Votes),
		EndedAt:        *poll.EndedAt,
	}
	go func() {
		if err := s.db.Create(ent).Error; err != nil {
			s.log.Warn("record poll result", zap.String("poll_id", ent.ID), zap.Error(err))
		}
	}()
}

// PartyClosed finishes the lifecycle record.
func (s *PartyService) PartyClosed(partyID string, closedAt time.Time) {
	go func() {
		err := s.db.Model(&model.WatchParty{}).
			Where("id = ?", partyID).
			Updates(map[string]interface{}{
				"status":    string(model.PartyStateClosed),
				"closed_at": closedAt,
			}).Error
		if err != nil {
			s.log.Warn("record party close", zap.String("party_id", partyID), zap.Error(err))
		}
	}()
}

// Lookup resolves a party id against the database when it is not live, so
// handlers can answer "closed" instead of "not found".
func (s *PartyService) Lookup(partyID string) (*model.Party, error) {
	var ent model.WatchParty
	if err := s.db.Where("id = ?", partyID).First(&ent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPartyNotFound
		}
		return nil, err
	}
	return &model.Party{
		ID:     ent.ID,
		HostID: ent.HostID,
		Settings: model.Settings{
			IsPrivate:       ent.IsPrivate,
			RequireApproval: ent.RequireApproval,
			ChatEnabled:     ent.ChatEnabled,
		},
		State:     model.PartyState(ent.Status),
		CreatedAt: ent.CreatedAt,
		ClosedAt:  ent.ClosedAt,
	}, nil
}
