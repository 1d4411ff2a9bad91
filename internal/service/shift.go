package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/RIchpenny312/spy-options-api/internal/models"
	"github.com/RIchpenny312/spy-options-api/internal/repository"
)

// ShiftDetector classifies bid-side volume dominance per symbol. It keeps no
// in-process state: the previous side comes from the latest stored signal,
// so a restart continues the sequence where the log left off.
type ShiftDetector struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// Observe appends a ShiftSignal derived from the sample. Append-only on
// purpose: the signal's meaning depends on the ordered history, not on the
// latest value for a bucket. A sample without a normalized bucket time is
// skipped with a warning.
func (d *ShiftDetector) Observe(ctx context.Context, sample *models.BidAskVolume) (*models.ShiftSignal, error) {
	if sample == nil || sample.BucketStart.IsZero() {
		if d.Logger != nil {
			d.Logger.Warn("shift sample missing bucket time, skipping",
				zap.String("symbol", symbolOf(sample)))
		}
		return nil, nil
	}

	dominant := models.SideCall
	if sample.PutBidVolume > sample.CallBidVolume {
		dominant = models.SidePut
	}

	prev, err := d.Repo.LatestShiftSignal(ctx, sample.Symbol)
	if err != nil {
		return nil, err
	}

	signal := &models.ShiftSignal{
		Symbol:       sample.Symbol,
		BucketStart:  sample.BucketStart,
		DominantSide: dominant,
		ShiftType:    models.ShiftNone,
		RecordedAt:   time.Now().UTC(),
	}
	if prev != nil {
		prevSide := prev.DominantSide
		signal.PreviousDominantSide = &prevSide
		if prevSide == dominant {
			signal.Continuation = true
		} else {
			signal.ShiftType = fmt.Sprintf("%s_TO_%s", prevSide, dominant)
		}
	}

	if dominant == models.SidePut {
		signal.DeltaConfirmation = sample.PutBidVolumeDelta > 0
	} else {
		signal.DeltaConfirmation = sample.CallBidVolumeDelta > 0
	}

	switch {
	case signal.ShiftType != models.ShiftNone && signal.DeltaConfirmation:
		signal.Confidence = models.ConfidenceHigh
	case signal.Continuation && signal.DeltaConfirmation:
		signal.Confidence = models.ConfidenceModerate
	default:
		signal.Confidence = models.ConfidenceLow
	}

	payload, err := json.Marshal(map[string]any{
		"call_bid_volume":       sample.CallBidVolume,
		"put_bid_volume":        sample.PutBidVolume,
		"call_bid_volume_delta": sample.CallBidVolumeDelta,
		"put_bid_volume_delta":  sample.PutBidVolumeDelta,
	})
	if err == nil {
		signal.Payload = payload
	}

	if err := d.Repo.InsertShiftSignal(ctx, signal); err != nil {
		return nil, err
	}
	return signal, nil
}

func symbolOf(sample *models.BidAskVolume) string {
	if sample == nil {
		return ""
	}
	return sample.Symbol
}
