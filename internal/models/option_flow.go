package models

import "time"

// OptionFlow is the cumulative-to-date net premium and volume picture for a
// symbol at a bucket. Upstream values are running totals for the day, so the
// delta engine compares consecutive buckets rather than smoothing.
type OptionFlow struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"type:varchar(16);not null;uniqueIndex:uniq_flow_symbol_bucket,priority:1" json:"symbol"`
	BucketStart time.Time `gorm:"type:timestamptz;not null;uniqueIndex:uniq_flow_symbol_bucket,priority:2;index" json:"bucket_start"`

	NetCallPremium float64 `gorm:"not null" json:"net_call_premium"`
	NetPutPremium  float64 `gorm:"not null" json:"net_put_premium"`
	CallVolume     int64   `gorm:"not null" json:"call_volume"`
	PutVolume      int64   `gorm:"not null" json:"put_volume"`

	RecordedAt time.Time `gorm:"type:timestamptz;not null" json:"recorded_at"`
}

func (OptionFlow) TableName() string {
	return "option_flows"
}
