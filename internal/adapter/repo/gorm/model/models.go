package model

import "time"

type ExpeditionDefinition struct {
	ID             string `gorm:"primaryKey"`
	OriginGalaxy   int
	OriginSystem   int
	OriginPosition int
	OriginType     int
	HasDest        bool
	DestGalaxy     int
	DestSystem     int
	DestPosition   int
	DestType       int
	ShipsJSON      string
	CargoMetal     int64
	CargoCrystal   int64
	CargoDeuterium int64
	Speed          int
	HoldingSeconds int64
	Repeat         int
	Enabled        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ExpeditionRunState struct {
	DefinitionID string `gorm:"primaryKey"`
	FleetID      int64
	Remaining    int
	Budget       int
	Phase        string
	LastSentAt   *time.Time
	UpdatedAt    time.Time
}

type Notification struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	Kind        string
	Body        string
	OccurredAt  time.Time
	DetailsJSON string
}
