package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RIchpenny312/spy-options-api/internal/models"
	"github.com/RIchpenny312/spy-options-api/internal/repository"
)

// RawTrade is a single dark-pool print, already parsed from the provider.
type RawTrade struct {
	Price      decimal.Decimal
	Premium    decimal.Decimal
	Size       int64
	Volume     int64
	ExecutedAt time.Time
}

// TopLevels carries the ranked levels for a day. When the requested day has
// no rows, Day is the nearest prior day with data and FallbackUsed is set.
type TopLevels struct {
	RequestedDay time.Time              `json:"requested_day"`
	Day          time.Time              `json:"day"`
	FallbackUsed bool                   `json:"fallback_used"`
	Levels       []models.DarkPoolLevel `json:"levels"`
}

// LevelConfidence scores one price level over a multi-day window by how many
// distinct days it printed.
type LevelConfidence struct {
	Price        decimal.Decimal `json:"price"`
	AvgSize      float64         `json:"avg_size"`
	TotalPremium decimal.Decimal `json:"total_premium"`
	TotalVolume  int64           `json:"total_volume"`
	DaysAppeared int             `json:"days_appeared"`
	Confidence   string          `json:"confidence"`
}

// DarkPoolAggregator groups prints into per-day price levels and scores them.
type DarkPoolAggregator struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// AggregateDay accumulates trades into (trading_day, price) levels. Prices
// round to cents. A failed level upsert is logged and skipped; the rest of
// the batch proceeds. Returns the number of levels stored.
func (a *DarkPoolAggregator) AggregateDay(ctx context.Context, day time.Time, trades []RawTrade) (int, error) {
	type acc struct {
		premium decimal.Decimal
		volume  int64
		size    int64
		count   int64
	}
	levels := make(map[string]*acc)
	for _, trade := range trades {
		price := trade.Price.Round(2)
		key := price.String()
		entry, ok := levels[key]
		if !ok {
			entry = &acc{}
			levels[key] = entry
		}
		entry.premium = entry.premium.Add(trade.Premium)
		entry.volume += trade.Volume
		entry.size += trade.Size
		entry.count++
	}

	now := time.Now().UTC()
	stored := 0
	for key, entry := range levels {
		price, err := decimal.NewFromString(key)
		if err != nil {
			continue
		}
		level := &models.DarkPoolLevel{
			TradingDay:   day,
			Price:        price,
			TotalPremium: entry.premium,
			TotalVolume:  entry.volume,
			TotalSize:    entry.size,
			TradeCount:   entry.count,
			UpdatedAt:    now,
		}
		if err := a.Repo.AccumulateDarkPoolLevel(ctx, level); err != nil {
			if a.Logger != nil {
				a.Logger.Warn("dark pool level upsert failed, skipping",
					zap.String("price", key),
					zap.Error(err))
			}
			continue
		}
		stored++
	}
	return stored, nil
}

// TopLevelsForDay returns up to limit levels ordered by total premium. Falls
// back to the most recent prior day with data when the requested day is
// empty.
func (a *DarkPoolAggregator) TopLevelsForDay(ctx context.Context, day time.Time, limit int) (*TopLevels, error) {
	result := &TopLevels{RequestedDay: day, Day: day}
	levels, err := a.Repo.ListDarkPoolLevels(ctx, day, limit)
	if err != nil {
		return nil, err
	}
	if len(levels) > 0 {
		result.Levels = levels
		return result, nil
	}
	prior, err := a.Repo.LatestDarkPoolDayBefore(ctx, day)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return result, nil
	}
	levels, err = a.Repo.ListDarkPoolLevels(ctx, *prior, limit)
	if err != nil {
		return nil, err
	}
	result.Day = *prior
	result.FallbackUsed = true
	result.Levels = levels
	return result, nil
}

// ConfidenceSummary aggregates levels over the trailing windowDays ending at
// asOf. Confidence: High when a price printed on 3+ distinct days, Moderate
// on 2, Low otherwise. When proximity is positive, only levels within
// proximity of currentPrice are kept.
func (a *DarkPoolAggregator) ConfidenceSummary(ctx context.Context, asOf time.Time, windowDays int, currentPrice, proximity decimal.Decimal) ([]LevelConfidence, error) {
	if windowDays <= 0 {
		windowDays = 5
	}
	since := asOf.AddDate(0, 0, -(windowDays - 1))
	rows, err := a.Repo.ListDarkPoolLevelsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	type acc struct {
		premium decimal.Decimal
		volume  int64
		size    int64
		count   int64
		days    map[string]struct{}
	}
	byPrice := make(map[string]*acc)
	for _, row := range rows {
		key := row.Price.String()
		entry, ok := byPrice[key]
		if !ok {
			entry = &acc{days: make(map[string]struct{})}
			byPrice[key] = entry
		}
		entry.premium = entry.premium.Add(row.TotalPremium)
		entry.volume += row.TotalVolume
		entry.size += row.TotalSize
		entry.count += row.TradeCount
		entry.days[row.TradingDay.Format("2006-01-02")] = struct{}{}
	}

	out := make([]LevelConfidence, 0, len(byPrice))
	for key, entry := range byPrice {
		price, err := decimal.NewFromString(key)
		if err != nil {
			continue
		}
		if proximity.IsPositive() && currentPrice.IsPositive() {
			if price.Sub(currentPrice).Abs().GreaterThan(proximity) {
				continue
			}
		}
		level := LevelConfidence{
			Price:        price,
			TotalPremium: entry.premium,
			TotalVolume:  entry.volume,
			DaysAppeared: len(entry.days),
		}
		if entry.count > 0 {
			level.AvgSize = float64(entry.size) / float64(entry.count)
		}
		switch {
		case level.DaysAppeared >= 3:
			level.Confidence = models.ConfidenceHigh
		case level.DaysAppeared == 2:
			level.Confidence = models.ConfidenceModerate
		default:
			level.Confidence = models.ConfidenceLow
		}
		out = append(out, level)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TotalPremium.GreaterThan(out[j].TotalPremium)
	})
	return out, nil
}
