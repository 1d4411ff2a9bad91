package service

import (
	"context"
	"sort"
	"time"

	"github.com/RIchpenny312/spy-options-api/internal/models"
	"github.com/RIchpenny312/spy-options-api/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// It mirrors the store's key semantics: overwrite-by-key for metric tables,
// summing accumulation for dark-pool levels, append-only shift signals.
type stubRepo struct {
	ohlc      []models.OHLC
	exposures []models.SpotExposure
	flows     []models.OptionFlow
	bidasks   []models.BidAskVolume
	deltas    map[string]models.DeltaRecord
	shifts    []models.ShiftSignal
	levels    map[string]models.DarkPoolLevel
	snapshots []models.RawSnapshot
}

var _ repository.Repository = (*stubRepo)(nil)

func newStubRepo() *stubRepo {
	return &stubRepo{
		deltas: make(map[string]models.DeltaRecord),
		levels: make(map[string]models.DarkPoolLevel),
	}
}

func metricKey(symbol string, bucket time.Time) string {
	return symbol + "|" + bucket.UTC().Format(time.RFC3339)
}

func levelKey(day time.Time, price string) string {
	return day.Format("2006-01-02") + "|" + price
}

func (s *stubRepo) UpsertOHLC(ctx context.Context, item *models.OHLC) error {
	for i := range s.ohlc {
		if s.ohlc[i].Symbol == item.Symbol && s.ohlc[i].BucketStart.Equal(item.BucketStart) {
			s.ohlc[i] = *item
			return nil
		}
	}
	s.ohlc = append(s.ohlc, *item)
	return nil
}

func (s *stubRepo) UpsertSpotExposure(ctx context.Context, item *models.SpotExposure) error {
	for i := range s.exposures {
		if s.exposures[i].Symbol == item.Symbol && s.exposures[i].BucketStart.Equal(item.BucketStart) {
			s.exposures[i] = *item
			return nil
		}
	}
	s.exposures = append(s.exposures, *item)
	return nil
}

func (s *stubRepo) UpsertOptionFlow(ctx context.Context, item *models.OptionFlow) error {
	for i := range s.flows {
		if s.flows[i].Symbol == item.Symbol && s.flows[i].BucketStart.Equal(item.BucketStart) {
			s.flows[i] = *item
			return nil
		}
	}
	s.flows = append(s.flows, *item)
	return nil
}

func (s *stubRepo) UpsertBidAskVolume(ctx context.Context, item *models.BidAskVolume) error {
	for i := range s.bidasks {
		if s.bidasks[i].Symbol == item.Symbol && s.bidasks[i].BucketStart.Equal(item.BucketStart) {
			s.bidasks[i] = *item
			return nil
		}
	}
	s.bidasks = append(s.bidasks, *item)
	return nil
}

func (s *stubRepo) UpsertDeltaRecord(ctx context.Context, item *models.DeltaRecord) error {
	s.deltas[metricKey(item.Symbol, item.BucketStart)] = *item
	return nil
}

func (s *stubRepo) AccumulateDarkPoolLevel(ctx context.Context, item *models.DarkPoolLevel) error {
	key := levelKey(item.TradingDay, item.Price.String())
	if existing, ok := s.levels[key]; ok {
		existing.TotalPremium = existing.TotalPremium.Add(item.TotalPremium)
		existing.TotalVolume += item.TotalVolume
		existing.TotalSize += item.TotalSize
		existing.TradeCount += item.TradeCount
		existing.UpdatedAt = item.UpdatedAt
		s.levels[key] = existing
		return nil
	}
	s.levels[key] = *item
	return nil
}

func (s *stubRepo) InsertShiftSignal(ctx context.Context, item *models.ShiftSignal) error {
	item.ID = uint64(len(s.shifts) + 1)
	s.shifts = append(s.shifts, *item)
	return nil
}

func (s *stubRepo) InsertRawSnapshot(ctx context.Context, item *models.RawSnapshot) error {
	s.snapshots = append(s.snapshots, *item)
	return nil
}

func (s *stubRepo) ListOHLC(ctx context.Context, symbol string, limit int) ([]models.OHLC, error) {
	var out []models.OHLC
	for _, row := range s.ohlc {
		if row.Symbol == symbol {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.After(out[j].BucketStart) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) ListRecentOptionFlows(ctx context.Context, symbol string, limit int) ([]models.OptionFlow, error) {
	var out []models.OptionFlow
	for _, row := range s.flows {
		if row.Symbol == symbol {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.After(out[j].BucketStart) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) LatestOptionFlow(ctx context.Context, symbol string) (*models.OptionFlow, error) {
	rows, _ := s.ListRecentOptionFlows(ctx, symbol, 1)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *stubRepo) ListOptionFlowsBetween(ctx context.Context, symbol string, from, to time.Time) ([]models.OptionFlow, error) {
	var out []models.OptionFlow
	for _, row := range s.flows {
		if row.Symbol != symbol {
			continue
		}
		if row.BucketStart.Before(from) || !row.BucketStart.Before(to) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.Before(out[j].BucketStart) })
	return out, nil
}

func (s *stubRepo) TopOptionFlowsByVolume(ctx context.Context, side string, limit int) ([]models.OptionFlow, error) {
	out := append([]models.OptionFlow(nil), s.flows...)
	sort.Slice(out, func(i, j int) bool {
		if side == "put" {
			return out[i].PutVolume > out[j].PutVolume
		}
		return out[i].CallVolume > out[j].CallVolume
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) ListRecentSpotExposures(ctx context.Context, symbol string, limit int) ([]models.SpotExposure, error) {
	var out []models.SpotExposure
	for _, row := range s.exposures {
		if row.Symbol == symbol {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.After(out[j].BucketStart) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) ListRecentBidAskVolumes(ctx context.Context, symbol string, limit int) ([]models.BidAskVolume, error) {
	var out []models.BidAskVolume
	for _, row := range s.bidasks {
		if row.Symbol == symbol {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.After(out[j].BucketStart) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) LatestBidAskVolume(ctx context.Context, symbol string) (*models.BidAskVolume, error) {
	rows, _ := s.ListRecentBidAskVolumes(ctx, symbol, 1)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *stubRepo) ListDeltaRecordsBetween(ctx context.Context, symbol string, from, to time.Time) ([]models.DeltaRecord, error) {
	var out []models.DeltaRecord
	for _, row := range s.deltas {
		if row.Symbol != symbol {
			continue
		}
		if row.BucketStart.Before(from) || !row.BucketStart.Before(to) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.Before(out[j].BucketStart) })
	return out, nil
}

func (s *stubRepo) LatestShiftSignal(ctx context.Context, symbol string) (*models.ShiftSignal, error) {
	for i := len(s.shifts) - 1; i >= 0; i-- {
		if s.shifts[i].Symbol == symbol {
			signal := s.shifts[i]
			return &signal, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListShiftSignals(ctx context.Context, params repository.ListShiftSignalsParams) ([]models.ShiftSignal, error) {
	var out []models.ShiftSignal
	for i := len(s.shifts) - 1; i >= 0; i-- {
		row := s.shifts[i]
		if params.Symbol != nil && row.Symbol != *params.Symbol {
			continue
		}
		if params.Confidence != nil && row.Confidence != *params.Confidence {
			continue
		}
		out = append(out, row)
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *stubRepo) ListDarkPoolLevels(ctx context.Context, day time.Time, limit int) ([]models.DarkPoolLevel, error) {
	var out []models.DarkPoolLevel
	for _, row := range s.levels {
		if row.TradingDay.Format("2006-01-02") == day.Format("2006-01-02") {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalPremium.GreaterThan(out[j].TotalPremium) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) LatestDarkPoolDayBefore(ctx context.Context, day time.Time) (*time.Time, error) {
	var latest *time.Time
	for _, row := range s.levels {
		d := row.TradingDay
		if d.Format("2006-01-02") >= day.Format("2006-01-02") {
			continue
		}
		if latest == nil || d.After(*latest) {
			copied := d
			latest = &copied
		}
	}
	return latest, nil
}

func (s *stubRepo) ListDarkPoolLevelsSince(ctx context.Context, since time.Time) ([]models.DarkPoolLevel, error) {
	var out []models.DarkPoolLevel
	for _, row := range s.levels {
		if row.TradingDay.Format("2006-01-02") >= since.Format("2006-01-02") {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TradingDay.Before(out[j].TradingDay) })
	return out, nil
}
