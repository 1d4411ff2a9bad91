package bucket

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimestamp is returned for zero or otherwise un-normalizable
// instants. Callers skip the single record carrying the bad timestamp.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Normalizer floors instants to fixed-width buckets in a local timezone.
// Flooring happens in wall-clock time, so bucket edges stay aligned to
// exchange hours across DST transitions.
type Normalizer struct {
	WidthMinutes int
	Location     *time.Location
}

func NewNormalizer(widthMinutes int, loc *time.Location) *Normalizer {
	if widthMinutes <= 0 {
		widthMinutes = 5
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{WidthMinutes: widthMinutes, Location: loc}
}

// Normalize maps t to the start of its bucket as an absolute instant.
// It is idempotent: normalizing an already-normalized instant is a no-op.
func (n *Normalizer) Normalize(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, ErrInvalidTimestamp
	}
	local := t.In(n.Location)
	floored := local.Minute() - local.Minute()%n.WidthMinutes
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), floored, 0, 0, n.Location), nil
}

// TradingDay returns the local calendar date t falls on, as midnight in the
// normalizer's timezone. Dark-pool levels and delta records group by it.
func (n *Normalizer) TradingDay(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, ErrInvalidTimestamp
	}
	local := t.In(n.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, n.Location), nil
}

// DayBounds returns the [start, end) instants of the trading day containing t.
func (n *Normalizer) DayBounds(t time.Time) (time.Time, time.Time, error) {
	day, err := n.TradingDay(t)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return day, day.AddDate(0, 0, 1), nil
}

// ParseDay parses a YYYY-MM-DD string as a trading day in the normalizer's
// timezone.
func (n *Normalizer) ParseDay(s string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", s, n.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, s)
	}
	return day, nil
}
