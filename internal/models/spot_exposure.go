package models

import "time"

// SpotExposure holds dealer greek exposure per one-percent move, bucketed.
type SpotExposure struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"type:varchar(16);not null;uniqueIndex:uniq_exposure_symbol_bucket,priority:1" json:"symbol"`
	BucketStart time.Time `gorm:"type:timestamptz;not null;uniqueIndex:uniq_exposure_symbol_bucket,priority:2;index" json:"bucket_start"`

	Price                  float64 `gorm:"not null" json:"price"`
	CharmPerOnePercentMove float64 `gorm:"not null" json:"charm_per_one_percent_move"`
	GammaPerOnePercentMove float64 `gorm:"not null" json:"gamma_per_one_percent_move"`
	VannaPerOnePercentMove float64 `gorm:"not null" json:"vanna_per_one_percent_move"`

	RecordedAt time.Time `gorm:"type:timestamptz;not null" json:"recorded_at"`
}

func (SpotExposure) TableName() string {
	return "spot_exposures"
}
