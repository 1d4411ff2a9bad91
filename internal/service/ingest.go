package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RIchpenny312/spy-options-api/internal/bucket"
	"github.com/RIchpenny312/spy-options-api/internal/client/provider"
	"github.com/RIchpenny312/spy-options-api/internal/models"
	"github.com/RIchpenny312/spy-options-api/internal/repository"
)

// IngestService runs one polling cycle: independent metric-family fetches
// fan out per symbol, each normalizing and upserting its own rows, then the
// derived signals (delta trend, dominant-side shift) run once the current
// cycle's rows are durable. A failure in one family never aborts another;
// the next cycle re-derives from whatever was persisted.
type IngestService struct {
	Repo     repository.Repository
	Provider *provider.Client
	Buckets  *bucket.Normalizer
	Logger   *zap.Logger

	Deltas   *DeltaTrendEngine
	Shifts   *ShiftDetector
	DarkPool *DarkPoolAggregator

	Symbols     []string
	SnapshotRaw bool
}

func (s *IngestService) RunCycle(ctx context.Context) {
	start := time.Now()
	for _, symbol := range s.Symbols {
		s.runSymbol(ctx, symbol)
	}
	if s.Logger != nil {
		s.Logger.Info("ingest cycle complete",
			zap.Int("symbols", len(s.Symbols)),
			zap.Duration("took", time.Since(start)))
	}
}

func (s *IngestService) runSymbol(ctx context.Context, symbol string) {
	var (
		wg         sync.WaitGroup
		flowStored bool
		sample     *models.BidAskVolume
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		s.ingestOHLC(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		s.ingestSpotExposure(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		flowStored = s.ingestOptionFlow(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		sample = s.ingestBidAskVolume(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		s.ingestDarkPool(ctx, symbol)
	}()
	wg.Wait()

	// Derived computations read what this cycle wrote, so they run strictly
	// after the fan-out completes.
	if flowStored {
		if _, err := s.Deltas.ComputeDay(ctx, symbol, time.Now()); err != nil && !errors.Is(err, ErrInsufficientData) {
			s.warn("delta trend failed", symbol, err)
		}
	}
	if sample != nil {
		if _, err := s.Shifts.Observe(ctx, sample); err != nil {
			s.warn("shift detection failed", symbol, err)
		}
	}
}

func (s *IngestService) ingestOHLC(ctx context.Context, symbol string) {
	ticks, raw, err := s.Provider.GetOHLC(ctx, symbol)
	if err != nil {
		s.warn("ohlc fetch failed", symbol, err)
		return
	}
	s.snapshot(ctx, "ohlc", symbol, raw)
	tick := latestOHLCTick(ticks)
	if tick == nil {
		return
	}
	bucketStart, err := s.Buckets.Normalize(tick.StartTime)
	if err != nil {
		s.warn("ohlc bucket normalize failed", symbol, err)
		return
	}
	open, err1 := strconv.ParseFloat(tick.Open, 64)
	high, err2 := strconv.ParseFloat(tick.High, 64)
	low, err3 := strconv.ParseFloat(tick.Low, 64)
	closePx, err4 := strconv.ParseFloat(tick.Close, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		s.warn("ohlc parse failed", symbol, errors.Join(err1, err2, err3, err4))
		return
	}
	item := &models.OHLC{
		Symbol:      symbol,
		BucketStart: bucketStart,
		Open:        open,
		High:        high,
		Low:         low,
		Close:       closePx,
		Volume:      tick.Volume,
		TotalVolume: tick.TotalVolume,
		RecordedAt:  time.Now().UTC(),
	}
	if err := s.Repo.UpsertOHLC(ctx, item); err != nil {
		s.warn("ohlc upsert failed", symbol, err)
	}
}

func (s *IngestService) ingestSpotExposure(ctx context.Context, symbol string) {
	ticks, raw, err := s.Provider.GetSpotExposures(ctx, symbol)
	if err != nil {
		s.warn("spot exposure fetch failed", symbol, err)
		return
	}
	s.snapshot(ctx, "spot_exposure", symbol, raw)
	tick := latestExposureTick(ticks)
	if tick == nil {
		return
	}
	bucketStart, err := s.Buckets.Normalize(tick.Time)
	if err != nil {
		s.warn("spot exposure bucket normalize failed", symbol, err)
		return
	}
	price, err := strconv.ParseFloat(tick.Price, 64)
	if err != nil {
		s.warn("spot exposure parse failed", symbol, err)
		return
	}
	item := &models.SpotExposure{
		Symbol:                 symbol,
		BucketStart:            bucketStart,
		Price:                  price,
		CharmPerOnePercentMove: tick.CharmPerOnePercentMove,
		GammaPerOnePercentMove: tick.GammaPerOnePercentMove,
		VannaPerOnePercentMove: tick.VannaPerOnePercentMove,
		RecordedAt:             time.Now().UTC(),
	}
	if err := s.Repo.UpsertSpotExposure(ctx, item); err != nil {
		s.warn("spot exposure upsert failed", symbol, err)
	}
}

func (s *IngestService) ingestOptionFlow(ctx context.Context, symbol string) bool {
	ticks, raw, err := s.Provider.GetNetPremTicks(ctx, symbol)
	if err != nil {
		s.warn("net premium fetch failed", symbol, err)
		return false
	}
	s.snapshot(ctx, "option_flow", symbol, raw)
	tick := latestPremTick(ticks)
	if tick == nil {
		return false
	}
	bucketStart, err := s.Buckets.Normalize(tick.TapeTime)
	if err != nil {
		s.warn("option flow bucket normalize failed", symbol, err)
		return false
	}
	callPrem, err1 := strconv.ParseFloat(tick.NetCallPremium, 64)
	putPrem, err2 := strconv.ParseFloat(tick.NetPutPremium, 64)
	if err1 != nil || err2 != nil {
		s.warn("option flow parse failed", symbol, errors.Join(err1, err2))
		return false
	}
	item := &models.OptionFlow{
		Symbol:         symbol,
		BucketStart:    bucketStart,
		NetCallPremium: callPrem,
		NetPutPremium:  putPrem,
		CallVolume:     tick.CallVolume,
		PutVolume:      tick.PutVolume,
		RecordedAt:     time.Now().UTC(),
	}
	if err := s.Repo.UpsertOptionFlow(ctx, item); err != nil {
		s.warn("option flow upsert failed", symbol, err)
		return false
	}
	return true
}

func (s *IngestService) ingestBidAskVolume(ctx context.Context, symbol string) *models.BidAskVolume {
	ticks, raw, err := s.Provider.GetOptionsVolume(ctx, symbol)
	if err != nil {
		s.warn("options volume fetch failed", symbol, err)
		return nil
	}
	s.snapshot(ctx, "bid_ask_volume", symbol, raw)
	tick := latestVolumeTick(ticks)
	if tick == nil {
		return nil
	}
	bucketStart, err := s.Buckets.Normalize(tick.Time)
	if err != nil {
		s.warn("options volume bucket normalize failed", symbol, err)
		return nil
	}

	item := &models.BidAskVolume{
		Symbol:        symbol,
		BucketStart:   bucketStart,
		CallBidVolume: tick.CallBidVolume,
		CallAskVolume: tick.CallAskVolume,
		PutBidVolume:  tick.PutBidVolume,
		PutAskVolume:  tick.PutAskVolume,
		RecordedAt:    time.Now().UTC(),
	}

	// Deltas compare against the bucket before this one. When the same
	// bucket is re-ingested, the prior row's stored delta recovers the
	// earlier baseline, so repeated cycles converge instead of zeroing out.
	prev, err := s.Repo.LatestBidAskVolume(ctx, symbol)
	if err != nil {
		s.warn("options volume lookup failed", symbol, err)
	} else if prev != nil {
		callBase, putBase := prev.CallBidVolume, prev.PutBidVolume
		if prev.BucketStart.Equal(bucketStart) {
			callBase = prev.CallBidVolume - prev.CallBidVolumeDelta
			putBase = prev.PutBidVolume - prev.PutBidVolumeDelta
		}
		item.CallBidVolumeDelta = item.CallBidVolume - callBase
		item.PutBidVolumeDelta = item.PutBidVolume - putBase
	}

	if err := s.Repo.UpsertBidAskVolume(ctx, item); err != nil {
		s.warn("options volume upsert failed", symbol, err)
		return nil
	}
	return item
}

func (s *IngestService) ingestDarkPool(ctx context.Context, symbol string) {
	prints, raw, err := s.Provider.GetDarkPoolTrades(ctx, symbol, time.Now())
	if err != nil {
		s.warn("dark pool fetch failed", symbol, err)
		return
	}
	s.snapshot(ctx, "dark_pool", symbol, raw)

	byDay := make(map[time.Time][]RawTrade)
	for _, p := range prints {
		day, err := s.Buckets.TradingDay(p.ExecutedAt)
		if err != nil {
			s.warn("dark pool trade has no timestamp, skipping", symbol, err)
			continue
		}
		price, err1 := decimal.NewFromString(p.Price)
		premium, err2 := decimal.NewFromString(p.Premium)
		if err1 != nil || err2 != nil {
			s.warn("dark pool trade parse failed, skipping", symbol, errors.Join(err1, err2))
			continue
		}
		byDay[day] = append(byDay[day], RawTrade{
			Price:      price,
			Premium:    premium,
			Size:       p.Size,
			Volume:     p.Volume,
			ExecutedAt: p.ExecutedAt,
		})
	}
	for day, trades := range byDay {
		if _, err := s.DarkPool.AggregateDay(ctx, day, trades); err != nil {
			s.warn("dark pool aggregation failed", symbol, err)
		}
	}
}

func (s *IngestService) snapshot(ctx context.Context, family, symbol string, raw []byte) {
	if !s.SnapshotRaw || len(raw) == 0 {
		return
	}
	item := &models.RawSnapshot{
		Family:    family,
		Symbol:    symbol,
		Payload:   raw,
		FetchedAt: time.Now().UTC(),
	}
	if err := s.Repo.InsertRawSnapshot(ctx, item); err != nil {
		s.warn("raw snapshot insert failed", symbol, err)
	}
}

func (s *IngestService) warn(msg, symbol string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, zap.String("symbol", symbol), zap.Error(err))
}

// The provider does not document ordering, so the newest tick is picked by
// timestamp instead of position.

func latestOHLCTick(ticks []provider.OHLCTick) *provider.OHLCTick {
	var latest *provider.OHLCTick
	for i := range ticks {
		if latest == nil || ticks[i].StartTime.After(latest.StartTime) {
			latest = &ticks[i]
		}
	}
	return latest
}

func latestExposureTick(ticks []provider.SpotExposureTick) *provider.SpotExposureTick {
	var latest *provider.SpotExposureTick
	for i := range ticks {
		if latest == nil || ticks[i].Time.After(latest.Time) {
			latest = &ticks[i]
		}
	}
	return latest
}

func latestPremTick(ticks []provider.NetPremTick) *provider.NetPremTick {
	var latest *provider.NetPremTick
	for i := range ticks {
		if latest == nil || ticks[i].TapeTime.After(latest.TapeTime) {
			latest = &ticks[i]
		}
	}
	return latest
}

func latestVolumeTick(ticks []provider.OptionsVolumeTick) *provider.OptionsVolumeTick {
	var latest *provider.OptionsVolumeTick
	for i := range ticks {
		if latest == nil || ticks[i].Time.After(latest.Time) {
			latest = &ticks[i]
		}
	}
	return latest
}
