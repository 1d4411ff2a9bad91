package models

import "time"

// OHLC is one 5-minute candle for a symbol. (symbol, bucket_start) is the
// only live row for that bucket; re-ingestion overwrites the value fields.
type OHLC struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"type:varchar(16);not null;uniqueIndex:uniq_ohlc_symbol_bucket,priority:1" json:"symbol"`
	BucketStart time.Time `gorm:"type:timestamptz;not null;uniqueIndex:uniq_ohlc_symbol_bucket,priority:2;index" json:"bucket_start"`

	Open  float64 `gorm:"not null" json:"open"`
	High  float64 `gorm:"not null" json:"high"`
	Low   float64 `gorm:"not null" json:"low"`
	Close float64 `gorm:"not null" json:"close"`

	Volume      int64 `gorm:"not null" json:"volume"`
	TotalVolume int64 `gorm:"not null" json:"total_volume"`

	RecordedAt time.Time `gorm:"type:timestamptz;not null" json:"recorded_at"`
}

func (OHLC) TableName() string {
	return "ohlc_buckets"
}
