package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DarkPoolLevel accumulates dark-pool prints at one price for one trading
// day. Repeated ingestion passes of the same day may deliver disjoint trade
// subsets, so the upsert sums into the existing row instead of replacing it.
type DarkPoolLevel struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TradingDay time.Time       `gorm:"type:date;not null;uniqueIndex:uniq_darkpool_day_price,priority:1;index" json:"trading_day"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null;uniqueIndex:uniq_darkpool_day_price,priority:2" json:"price"`

	TotalPremium decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_premium"`
	TotalVolume  int64           `gorm:"not null" json:"total_volume"`
	TotalSize    int64           `gorm:"not null" json:"total_size"`
	TradeCount   int64           `gorm:"not null" json:"trade_count"`

	UpdatedAt time.Time `gorm:"type:timestamptz;not null" json:"updated_at"`
}

func (DarkPoolLevel) TableName() string {
	return "dark_pool_levels"
}
