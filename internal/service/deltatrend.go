package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/RIchpenny312/spy-options-api/internal/bucket"
	"github.com/RIchpenny312/spy-options-api/internal/models"
	"github.com/RIchpenny312/spy-options-api/internal/repository"
)

// ErrInsufficientData means a trading day has no stored buckets to compare.
// Callers skip the cycle; the next cycle re-derives from persisted history.
var ErrInsufficientData = errors.New("insufficient data")

// DeltaTrendEngine labels each bucket by comparing the two most recent
// same-day flow rows. Upstream premiums are cumulative for the day, so the
// pairwise delta is the per-bucket change; no smoothing is applied.
type DeltaTrendEngine struct {
	Repo    repository.Repository
	Logger  *zap.Logger
	Buckets *bucket.Normalizer

	// NeutralBand is how far delta_call and delta_put must diverge before
	// the sentiment leaves Neutral.
	NeutralBand float64
	// BouncePctFloor is the percent-change above which a premium decline
	// counts as decelerating. The configured value is used verbatim; the
	// -15 default is resolved at config load.
	BouncePctFloor float64
}

// ComputeDay derives and persists the DeltaRecord for the trading day
// containing at. The first bucket of a day gets a zero/neutral placeholder.
func (e *DeltaTrendEngine) ComputeDay(ctx context.Context, symbol string, at time.Time) (*models.DeltaRecord, error) {
	dayStart, dayEnd, err := e.Buckets.DayBounds(at)
	if err != nil {
		return nil, err
	}
	rows, err := e.Repo.ListOptionFlowsBetween(ctx, symbol, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrInsufficientData
	}

	now := time.Now().UTC()
	if len(rows) == 1 {
		rec := &models.DeltaRecord{
			Symbol:      symbol,
			BucketStart: rows[0].BucketStart,
			Sentiment:   models.SentimentNeutral,
			Strength:    models.StrengthModerate,
			RecordedAt:  now,
		}
		if err := e.Repo.UpsertDeltaRecord(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	prev, latest := rows[len(rows)-2], rows[len(rows)-1]
	deltaCall := latest.NetCallPremium - prev.NetCallPremium
	deltaPut := latest.NetPutPremium - prev.NetPutPremium
	pctCall := pctChange(deltaCall, prev.NetCallPremium)
	pctPut := pctChange(deltaPut, prev.NetPutPremium)
	deltaCallVol := latest.CallVolume - prev.CallVolume
	deltaPutVol := latest.PutVolume - prev.PutVolume

	rec := &models.DeltaRecord{
		Symbol:               symbol,
		BucketStart:          latest.BucketStart,
		DeltaCallPremium:     deltaCall,
		DeltaPutPremium:      deltaPut,
		PctChangeCallPremium: pctCall,
		PctChangePutPremium:  pctPut,
		DeltaCallVolume:      deltaCallVol,
		DeltaPutVolume:       deltaPutVol,
		Sentiment:            e.sentiment(deltaCall, deltaPut),
		RecordedAt:           now,
	}

	// Bounce: put premium still negative but its decline is decelerating
	// while put volume holds up.
	rec.Bounce = latest.NetPutPremium < 0 &&
		deltaPut < 0 &&
		pctPut > e.BouncePctFloor &&
		deltaPutVol >= 0
	// Bearish-call: the mirrored read on the call side, with fading volume.
	rec.BearishCall = latest.NetCallPremium < 0 &&
		deltaCall < 0 &&
		pctCall > e.BouncePctFloor &&
		deltaCallVol <= 0

	rec.Strength = models.StrengthModerate
	switch rec.Sentiment {
	case models.SentimentBullish:
		if pctCall > 0 && deltaCallVol >= 0 {
			rec.Strength = models.StrengthStrong
		}
	case models.SentimentBearish:
		if pctPut > 0 && deltaPutVol >= 0 {
			rec.Strength = models.StrengthStrong
		}
	}

	if err := e.Repo.UpsertDeltaRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (e *DeltaTrendEngine) sentiment(deltaCall, deltaPut float64) string {
	band := e.NeutralBand
	switch {
	case deltaCall-deltaPut > band:
		return models.SentimentBullish
	case deltaPut-deltaCall > band:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

// pctChange defines 0% when the baseline is zero.
func pctChange(delta, base float64) float64 {
	if base == 0 {
		return 0
	}
	return delta / math.Abs(base) * 100
}
