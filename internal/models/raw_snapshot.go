package models

import (
	"time"

	"gorm.io/datatypes"
)

// RawSnapshot keeps the provider payload that fed a cycle, per metric
// family, for replay and debugging.
type RawSnapshot struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Family    string         `gorm:"type:varchar(20);not null;index" json:"family"`
	Symbol    string         `gorm:"type:varchar(16);not null;index" json:"symbol"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	FetchedAt time.Time      `gorm:"type:timestamptz;not null;index" json:"fetched_at"`
}

func (RawSnapshot) TableName() string {
	return "raw_snapshots"
}
