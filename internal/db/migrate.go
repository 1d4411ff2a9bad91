package db

import (
	"github.com/RIchpenny312/spy-options-api/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.OHLC{},
		&models.SpotExposure{},
		&models.OptionFlow{},
		&models.BidAskVolume{},
		&models.DeltaRecord{},
		&models.ShiftSignal{},
		&models.DarkPoolLevel{},
		&models.RawSnapshot{},
	)
}
