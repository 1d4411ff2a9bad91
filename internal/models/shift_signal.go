package models

import (
	"time"

	"gorm.io/datatypes"
)

// Dominant sides and shift types.
const (
	SideCall = "CALL"
	SidePut  = "PUT"

	ShiftNone      = "NONE"
	ShiftPutToCall = "PUT_TO_CALL"
	ShiftCallToPut = "CALL_TO_PUT"
)

// Confidence tiers, shared with dark-pool level summaries.
const (
	ConfidenceLow      = "Low"
	ConfidenceModerate = "Moderate"
	ConfidenceHigh     = "High"
)

// ShiftSignal is an append-only log of bid-side volume dominance per symbol.
// The previous side is resolved by looking up the latest row at write time,
// so the detector itself carries no in-process state and is restart-safe.
type ShiftSignal struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"type:varchar(16);not null;index:idx_shift_symbol_recorded,priority:1" json:"symbol"`
	BucketStart time.Time `gorm:"type:timestamptz;not null" json:"bucket_start"`

	DominantSide         string  `gorm:"type:varchar(4);not null" json:"dominant_side"`
	PreviousDominantSide *string `gorm:"type:varchar(4)" json:"previous_dominant_side"`
	ShiftType            string  `gorm:"type:varchar(11);not null" json:"shift_type"`
	Continuation         bool    `gorm:"not null" json:"continuation"`
	DeltaConfirmation    bool    `gorm:"not null" json:"delta_confirmation"`
	Confidence           string  `gorm:"type:varchar(8);not null;index" json:"confidence"`

	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`

	RecordedAt time.Time `gorm:"type:timestamptz;not null;index:idx_shift_symbol_recorded,priority:2,sort:desc" json:"recorded_at"`
}

func (ShiftSignal) TableName() string {
	return "shift_signals"
}
