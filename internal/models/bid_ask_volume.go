package models

import "time"

// BidAskVolume is the per-bucket bid/ask volume split between calls and puts.
// The *_bid_volume_delta columns compare against the prior stored bucket and
// feed the dominant-side shift detector.
type BidAskVolume struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"type:varchar(16);not null;uniqueIndex:uniq_bidask_symbol_bucket,priority:1" json:"symbol"`
	BucketStart time.Time `gorm:"type:timestamptz;not null;uniqueIndex:uniq_bidask_symbol_bucket,priority:2;index" json:"bucket_start"`

	CallBidVolume int64 `gorm:"not null" json:"call_bid_volume"`
	CallAskVolume int64 `gorm:"not null" json:"call_ask_volume"`
	PutBidVolume  int64 `gorm:"not null" json:"put_bid_volume"`
	PutAskVolume  int64 `gorm:"not null" json:"put_ask_volume"`

	CallBidVolumeDelta int64 `gorm:"not null" json:"call_bid_volume_delta"`
	PutBidVolumeDelta  int64 `gorm:"not null" json:"put_bid_volume_delta"`

	RecordedAt time.Time `gorm:"type:timestamptz;not null" json:"recorded_at"`
}

func (BidAskVolume) TableName() string {
	return "bid_ask_volumes"
}
