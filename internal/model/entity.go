package model

import "time"

// WatchParty — запись жизненного цикла пати (GORM). Живое состояние живёт в акторе,
// в базе только метаданные: кто создал, настройки, когда закрыта.
type WatchParty struct {
	ID              string     `gorm:"type:uuid;primaryKey"`
	HostID          string     `gorm:"size:64;not null;index"`
	HostName        string     `gorm:"size:128;not null"`
	IsPrivate       bool       `gorm:"not null;default:false"`
	RequireApproval bool       `gorm:"not null;default:false"`
	ChatEnabled     bool       `gorm:"not null;default:true"`
	Status          string     `gorm:"size:20;not null;default:created"` // created, active, closed
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
	ClosedAt        *time.Time `gorm:"column:closed_at"`

	Polls []PartyPoll `gorm:"foreignKey:PartyID"`
}

func (WatchParty) TableName() string { return "watch_parties" }

// PartyPoll — итог завершённого опроса (GORM). Пишется один раз при закрытии опроса.
type PartyPoll struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	PartyID        string    `gorm:"type:uuid;not null;index"`
	Title          string    `gorm:"size:256;not null"`
	CreatorID      string    `gorm:"size:64;not null"`
	WinnerOptionID string    `gorm:"size:64;not null"`
	TotalVotes     int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	EndedAt        time.Time `gorm:"column:ended_at;not null"`
}

func (PartyPoll) TableName() string { return "party_polls" }
