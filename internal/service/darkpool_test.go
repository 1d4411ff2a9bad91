package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RIchpenny312/spy-options-api/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func trade(price, premium string, size, volume int64, at time.Time) RawTrade {
	return RawTrade{
		Price:      dec(price),
		Premium:    dec(premium),
		Size:       size,
		Volume:     volume,
		ExecutedAt: at,
	}
}

func TestAggregateDayMergesSamePrice(t *testing.T) {
	repo := newStubRepo()
	agg := &DarkPoolAggregator{Repo: repo}
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	at := day.Add(15 * time.Hour)

	stored, err := agg.AggregateDay(context.Background(), day, []RawTrade{
		trade("500.01", "1000", 10, 10, at),
		trade("500.01", "500", 5, 5, at.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("AggregateDay: %v", err)
	}
	if stored != 1 {
		t.Fatalf("stored = %d, want 1 level", stored)
	}
	level := repo.levels[levelKey(day, "500.01")]
	if !level.TotalPremium.Equal(dec("1500")) {
		t.Fatalf("total_premium = %s, want 1500", level.TotalPremium)
	}
	if level.TradeCount != 2 {
		t.Fatalf("trade_count = %d, want 2", level.TradeCount)
	}
}

func TestAggregateDayAccumulatesAcrossPasses(t *testing.T) {
	repo := newStubRepo()
	agg := &DarkPoolAggregator{Repo: repo}
	ctx := context.Background()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	at := day.Add(15 * time.Hour)

	// Two passes over the same day with disjoint trade subsets must sum.
	if _, err := agg.AggregateDay(ctx, day, []RawTrade{trade("500.01", "1000", 10, 10, at)}); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if _, err := agg.AggregateDay(ctx, day, []RawTrade{trade("500.01", "500", 5, 5, at)}); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	level := repo.levels[levelKey(day, "500.01")]
	if !level.TotalPremium.Equal(dec("1500")) || level.TotalSize != 15 {
		t.Fatalf("accumulated level = %+v, want premium 1500 size 15", level)
	}
}

func TestAggregateDayRoundsToTick(t *testing.T) {
	repo := newStubRepo()
	agg := &DarkPoolAggregator{Repo: repo}
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	at := day.Add(15 * time.Hour)

	stored, err := agg.AggregateDay(context.Background(), day, []RawTrade{
		trade("500.011", "100", 1, 1, at),
		trade("500.014", "200", 2, 2, at),
	})
	if err != nil {
		t.Fatalf("AggregateDay: %v", err)
	}
	if stored != 1 {
		t.Fatalf("stored = %d, want 1 after rounding", stored)
	}
}

func TestTopLevelsOrderAndLimit(t *testing.T) {
	repo := newStubRepo()
	agg := &DarkPoolAggregator{Repo: repo}
	ctx := context.Background()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	at := day.Add(15 * time.Hour)

	trades := []RawTrade{
		trade("500.00", "100", 1, 1, at),
		trade("501.00", "900", 1, 1, at),
		trade("502.00", "500", 1, 1, at),
	}
	if _, err := agg.AggregateDay(ctx, day, trades); err != nil {
		t.Fatalf("AggregateDay: %v", err)
	}
	result, err := agg.TopLevelsForDay(ctx, day, 2)
	if err != nil {
		t.Fatalf("TopLevelsForDay: %v", err)
	}
	if result.FallbackUsed {
		t.Fatalf("fallback should not be used")
	}
	if len(result.Levels) != 2 {
		t.Fatalf("len(levels) = %d, want 2", len(result.Levels))
	}
	if !result.Levels[0].Price.Equal(dec("501")) || !result.Levels[1].Price.Equal(dec("502")) {
		t.Fatalf("levels not ordered by premium: %s then %s",
			result.Levels[0].Price, result.Levels[1].Price)
	}
}

func TestTopLevelsFallsBackToPriorDay(t *testing.T) {
	repo := newStubRepo()
	agg := &DarkPoolAggregator{Repo: repo}
	ctx := context.Background()
	prior := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	requested := prior.AddDate(0, 0, 1)

	if _, err := agg.AggregateDay(ctx, prior, []RawTrade{trade("500.00", "1000", 1, 1, prior.Add(15 * time.Hour))}); err != nil {
		t.Fatalf("AggregateDay: %v", err)
	}
	result, err := agg.TopLevelsForDay(ctx, requested, 10)
	if err != nil {
		t.Fatalf("TopLevelsForDay: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatalf("expected fallback")
	}
	if result.Day.Format("2006-01-02") != prior.Format("2006-01-02") {
		t.Fatalf("fallback day = %v, want %v", result.Day, prior)
	}
	if len(result.Levels) != 1 {
		t.Fatalf("len(levels) = %d, want 1", len(result.Levels))
	}
}

func TestTopLevelsNoDataAnywhere(t *testing.T) {
	agg := &DarkPoolAggregator{Repo: newStubRepo()}
	result, err := agg.TopLevelsForDay(context.Background(), time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatalf("TopLevelsForDay: %v", err)
	}
	if result.FallbackUsed || len(result.Levels) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func seedLevel(repo *stubRepo, day time.Time, price, premium string, size, count int64) {
	key := levelKey(day, price)
	repo.levels[key] = models.DarkPoolLevel{
		TradingDay:   day,
		Price:        dec(price),
		TotalPremium: dec(premium),
		TotalSize:    size,
		TradeCount:   count,
		UpdatedAt:    day,
	}
}

func TestConfidenceTiersByDaysAppeared(t *testing.T) {
	repo := newStubRepo()
	agg := &DarkPoolAggregator{Repo: repo}
	day := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)

	// 500.00 prints on three days, 501.00 on two, 502.00 once.
	for i := 0; i < 3; i++ {
		seedLevel(repo, day.AddDate(0, 0, -i), "500.00", "1000", 10, 2)
	}
	for i := 0; i < 2; i++ {
		seedLevel(repo, day.AddDate(0, 0, -i), "501.00", "500", 4, 1)
	}
	seedLevel(repo, day, "502.00", "100", 1, 1)

	rows, err := agg.ConfidenceSummary(context.Background(), day, 5, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("ConfidenceSummary: %v", err)
	}
	byPrice := map[string]LevelConfidence{}
	for _, row := range rows {
		byPrice[row.Price.String()] = row
	}
	if got := byPrice["500"].Confidence; got != models.ConfidenceHigh {
		t.Fatalf("confidence for 3-day level = %s, want High", got)
	}
	if got := byPrice["501"].Confidence; got != models.ConfidenceModerate {
		t.Fatalf("confidence for 2-day level = %s, want Moderate", got)
	}
	if got := byPrice["502"].Confidence; got != models.ConfidenceLow {
		t.Fatalf("confidence for 1-day level = %s, want Low", got)
	}
	if got := byPrice["500"].DaysAppeared; got != 3 {
		t.Fatalf("days_appeared = %d, want 3", got)
	}
	if got := byPrice["500"].AvgSize; got != 5 {
		t.Fatalf("avg_size = %v, want 5", got)
	}
}

func TestConfidenceProximityFilter(t *testing.T) {
	repo := newStubRepo()
	agg := &DarkPoolAggregator{Repo: repo}
	day := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	seedLevel(repo, day, "500.00", "1000", 10, 2)
	seedLevel(repo, day, "520.00", "2000", 10, 2)

	rows, err := agg.ConfidenceSummary(context.Background(), day, 5, dec("501"), dec("5"))
	if err != nil {
		t.Fatalf("ConfidenceSummary: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 within proximity", len(rows))
	}
	if !rows[0].Price.Equal(dec("500")) {
		t.Fatalf("kept price = %s, want 500", rows[0].Price)
	}
}
