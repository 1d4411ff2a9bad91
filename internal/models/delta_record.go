package models

import "time"

// Sentiment labels for delta records.
const (
	SentimentBullish = "Bullish"
	SentimentBearish = "Bearish"
	SentimentNeutral = "Neutral"
)

// Signal strength labels.
const (
	StrengthStrong   = "Strong"
	StrengthModerate = "Moderate"
)

// DeltaRecord compares the two most recent same-day option-flow buckets for
// a symbol. Recomputed each cycle; the row for a bucket is overwritten, not
// duplicated.
type DeltaRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"type:varchar(16);not null;uniqueIndex:uniq_delta_symbol_bucket,priority:1" json:"symbol"`
	BucketStart time.Time `gorm:"type:timestamptz;not null;uniqueIndex:uniq_delta_symbol_bucket,priority:2;index" json:"bucket_start"`

	DeltaCallPremium     float64 `gorm:"not null" json:"delta_call_premium"`
	DeltaPutPremium      float64 `gorm:"not null" json:"delta_put_premium"`
	PctChangeCallPremium float64 `gorm:"not null" json:"pct_change_call_premium"`
	PctChangePutPremium  float64 `gorm:"not null" json:"pct_change_put_premium"`
	DeltaCallVolume      int64   `gorm:"not null" json:"delta_call_volume"`
	DeltaPutVolume       int64   `gorm:"not null" json:"delta_put_volume"`

	Sentiment   string `gorm:"type:varchar(10);not null" json:"sentiment"`
	Bounce      bool   `gorm:"not null" json:"bounce"`
	BearishCall bool   `gorm:"not null" json:"bearish_call"`
	Strength    string `gorm:"type:varchar(10);not null" json:"strength"`

	RecordedAt time.Time `gorm:"type:timestamptz;not null" json:"recorded_at"`
}

func (DeltaRecord) TableName() string {
	return "delta_records"
}
