package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RIchpenny312/spy-options-api/internal/models"
	"github.com/RIchpenny312/spy-options-api/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// dateOnly strips the clock from t so a trading day always lands on the same
// date column value regardless of the session timezone.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// --- writes -----------------------------------------------------------------

func (s *Store) UpsertOHLC(ctx context.Context, item *models.OHLC) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "bucket_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open",
			"high",
			"low",
			"close",
			"volume",
			"total_volume",
			"recorded_at",
		}),
	}).Create(item).Error
}

func (s *Store) UpsertSpotExposure(ctx context.Context, item *models.SpotExposure) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "bucket_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price",
			"charm_per_one_percent_move",
			"gamma_per_one_percent_move",
			"vanna_per_one_percent_move",
			"recorded_at",
		}),
	}).Create(item).Error
}

func (s *Store) UpsertOptionFlow(ctx context.Context, item *models.OptionFlow) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "bucket_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"net_call_premium",
			"net_put_premium",
			"call_volume",
			"put_volume",
			"recorded_at",
		}),
	}).Create(item).Error
}

func (s *Store) UpsertBidAskVolume(ctx context.Context, item *models.BidAskVolume) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "bucket_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"call_bid_volume",
			"call_ask_volume",
			"put_bid_volume",
			"put_ask_volume",
			"call_bid_volume_delta",
			"put_bid_volume_delta",
			"recorded_at",
		}),
	}).Create(item).Error
}

func (s *Store) UpsertDeltaRecord(ctx context.Context, item *models.DeltaRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "bucket_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"delta_call_premium",
			"delta_put_premium",
			"pct_change_call_premium",
			"pct_change_put_premium",
			"delta_call_volume",
			"delta_put_volume",
			"sentiment",
			"bounce",
			"bearish_call",
			"strength",
			"recorded_at",
		}),
	}).Create(item).Error
}

// AccumulateDarkPoolLevel sums the incoming totals into any existing row for
// (trading_day, price) rather than replacing them.
func (s *Store) AccumulateDarkPoolLevel(ctx context.Context, item *models.DarkPoolLevel) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.TradingDay = dateOnly(item.TradingDay)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trading_day"}, {Name: "price"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_premium": gorm.Expr("dark_pool_levels.total_premium + excluded.total_premium"),
			"total_volume":  gorm.Expr("dark_pool_levels.total_volume + excluded.total_volume"),
			"total_size":    gorm.Expr("dark_pool_levels.total_size + excluded.total_size"),
			"trade_count":   gorm.Expr("dark_pool_levels.trade_count + excluded.trade_count"),
			"updated_at":    gorm.Expr("excluded.updated_at"),
		}),
	}).Create(item).Error
}

func (s *Store) InsertShiftSignal(ctx context.Context, item *models.ShiftSignal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) InsertRawSnapshot(ctx context.Context, item *models.RawSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

// --- reads ------------------------------------------------------------------

func (s *Store) ListOHLC(ctx context.Context, symbol string, limit int) ([]models.OHLC, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.OHLC
	err := s.db.WithContext(ctx).
		Model(&models.OHLC{}).
		Where("symbol = ?", symbol).
		Order("bucket_start desc").
		Limit(normalizeLimit(limit, 5)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListRecentOptionFlows(ctx context.Context, symbol string, limit int) ([]models.OptionFlow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.OptionFlow
	err := s.db.WithContext(ctx).
		Model(&models.OptionFlow{}).
		Where("symbol = ?", symbol).
		Order("bucket_start desc").
		Limit(normalizeLimit(limit, 48)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LatestOptionFlow(ctx context.Context, symbol string) (*models.OptionFlow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.OptionFlow
	err := s.db.WithContext(ctx).
		Model(&models.OptionFlow{}).
		Where("symbol = ?", symbol).
		Order("bucket_start desc").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListOptionFlowsBetween(ctx context.Context, symbol string, from, to time.Time) ([]models.OptionFlow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.OptionFlow
	err := s.db.WithContext(ctx).
		Model(&models.OptionFlow{}).
		Where("symbol = ?", symbol).
		Where("bucket_start >= ? AND bucket_start < ?", from, to).
		Order("bucket_start asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) TopOptionFlowsByVolume(ctx context.Context, side string, limit int) ([]models.OptionFlow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	column := "call_volume"
	if strings.EqualFold(side, "put") {
		column = "put_volume"
	}
	var items []models.OptionFlow
	err := s.db.WithContext(ctx).
		Model(&models.OptionFlow{}).
		Order(column + " desc").
		Limit(normalizeLimit(limit, 3)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListRecentSpotExposures(ctx context.Context, symbol string, limit int) ([]models.SpotExposure, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SpotExposure
	err := s.db.WithContext(ctx).
		Model(&models.SpotExposure{}).
		Where("symbol = ?", symbol).
		Order("bucket_start desc").
		Limit(normalizeLimit(limit, 48)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListRecentBidAskVolumes(ctx context.Context, symbol string, limit int) ([]models.BidAskVolume, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.BidAskVolume
	err := s.db.WithContext(ctx).
		Model(&models.BidAskVolume{}).
		Where("symbol = ?", symbol).
		Order("bucket_start desc").
		Limit(normalizeLimit(limit, 48)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LatestBidAskVolume(ctx context.Context, symbol string) (*models.BidAskVolume, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.BidAskVolume
	err := s.db.WithContext(ctx).
		Model(&models.BidAskVolume{}).
		Where("symbol = ?", symbol).
		Order("bucket_start desc").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListDeltaRecordsBetween(ctx context.Context, symbol string, from, to time.Time) ([]models.DeltaRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.DeltaRecord
	err := s.db.WithContext(ctx).
		Model(&models.DeltaRecord{}).
		Where("symbol = ?", symbol).
		Where("bucket_start >= ? AND bucket_start < ?", from, to).
		Order("bucket_start asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LatestShiftSignal(ctx context.Context, symbol string) (*models.ShiftSignal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ShiftSignal
	err := s.db.WithContext(ctx).
		Model(&models.ShiftSignal{}).
		Where("symbol = ?", symbol).
		Order("recorded_at desc, id desc").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListShiftSignals(ctx context.Context, params repository.ListShiftSignalsParams) ([]models.ShiftSignal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ShiftSignal{})
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.TrimSpace(*params.Symbol))
	}
	if params.Confidence != nil && strings.TrimSpace(*params.Confidence) != "" {
		query = query.Where("confidence = ?", strings.TrimSpace(*params.Confidence))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("recorded_at >= ?", *params.Since)
	}
	var items []models.ShiftSignal
	err := query.
		Order("recorded_at desc, id desc").
		Limit(normalizeLimit(params.Limit, 200)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListDarkPoolLevels(ctx context.Context, day time.Time, limit int) ([]models.DarkPoolLevel, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.DarkPoolLevel
	err := s.db.WithContext(ctx).
		Model(&models.DarkPoolLevel{}).
		Where("trading_day = ?", dateOnly(day)).
		Order("total_premium desc").
		Limit(normalizeLimit(limit, 10)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LatestDarkPoolDayBefore(ctx context.Context, day time.Time) (*time.Time, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var latest *time.Time
	err := s.db.WithContext(ctx).
		Model(&models.DarkPoolLevel{}).
		Select("MAX(trading_day)").
		Where("trading_day < ?", dateOnly(day)).
		Scan(&latest).Error
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (s *Store) ListDarkPoolLevelsSince(ctx context.Context, since time.Time) ([]models.DarkPoolLevel, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.DarkPoolLevel
	err := s.db.WithContext(ctx).
		Model(&models.DarkPoolLevel{}).
		Where("trading_day >= ?", dateOnly(since)).
		Order("trading_day asc, total_premium desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
