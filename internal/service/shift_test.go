package service

import (
	"context"
	"testing"
	"time"

	"github.com/RIchpenny312/spy-options-api/internal/models"
)

func bidAskSample(symbol string, bucketStart time.Time, callBid, putBid, callBidDelta, putBidDelta int64) *models.BidAskVolume {
	return &models.BidAskVolume{
		Symbol:             symbol,
		BucketStart:        bucketStart,
		CallBidVolume:      callBid,
		PutBidVolume:       putBid,
		CallBidVolumeDelta: callBidDelta,
		PutBidVolumeDelta:  putBidDelta,
		RecordedAt:         bucketStart,
	}
}

func TestFirstObservationSeedsState(t *testing.T) {
	repo := newStubRepo()
	detector := &ShiftDetector{Repo: repo}
	b1 := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)

	signal, err := detector.Observe(context.Background(), bidAskSample("SPY", b1, 100, 150, 0, 0))
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if signal.DominantSide != models.SidePut {
		t.Fatalf("dominant = %s, want PUT", signal.DominantSide)
	}
	if signal.PreviousDominantSide != nil {
		t.Fatalf("previous side should be nil on first observation")
	}
	if signal.ShiftType != models.ShiftNone {
		t.Fatalf("shift_type = %s, want NONE", signal.ShiftType)
	}
	if signal.Continuation {
		t.Fatalf("continuation should be false on first observation")
	}
	if signal.Confidence != models.ConfidenceLow {
		t.Fatalf("confidence = %s, want Low", signal.Confidence)
	}
}

func TestPutToCallShift(t *testing.T) {
	repo := newStubRepo()
	detector := &ShiftDetector{Repo: repo}
	ctx := context.Background()
	b1 := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
	b2 := b1.Add(5 * time.Minute)

	if _, err := detector.Observe(ctx, bidAskSample("SPY", b1, 100, 150, 0, 0)); err != nil {
		t.Fatalf("seed observe: %v", err)
	}
	signal, err := detector.Observe(ctx, bidAskSample("SPY", b2, 200, 90, 100, -60))
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if signal.ShiftType != models.ShiftPutToCall {
		t.Fatalf("shift_type = %s, want PUT_TO_CALL", signal.ShiftType)
	}
	if signal.Continuation {
		t.Fatalf("continuation should be false on a flip")
	}
	if signal.PreviousDominantSide == nil || *signal.PreviousDominantSide != models.SidePut {
		t.Fatalf("previous side = %v, want PUT", signal.PreviousDominantSide)
	}
	// Shift with rising call bid volume confirms at High.
	if !signal.DeltaConfirmation || signal.Confidence != models.ConfidenceHigh {
		t.Fatalf("confidence = %s (confirmation %v), want High", signal.Confidence, signal.DeltaConfirmation)
	}
}

func TestContinuationWithConfirmationIsModerate(t *testing.T) {
	repo := newStubRepo()
	detector := &ShiftDetector{Repo: repo}
	ctx := context.Background()
	b1 := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
	b2 := b1.Add(5 * time.Minute)

	if _, err := detector.Observe(ctx, bidAskSample("SPY", b1, 200, 100, 0, 0)); err != nil {
		t.Fatalf("seed observe: %v", err)
	}
	signal, err := detector.Observe(ctx, bidAskSample("SPY", b2, 250, 110, 50, 10))
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !signal.Continuation {
		t.Fatalf("expected continuation")
	}
	if signal.ShiftType != models.ShiftNone {
		t.Fatalf("shift_type = %s, want NONE", signal.ShiftType)
	}
	if signal.Confidence != models.ConfidenceModerate {
		t.Fatalf("confidence = %s, want Moderate", signal.Confidence)
	}
}

func TestContinuationWithoutConfirmationIsLow(t *testing.T) {
	repo := newStubRepo()
	detector := &ShiftDetector{Repo: repo}
	ctx := context.Background()
	b1 := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
	b2 := b1.Add(5 * time.Minute)

	if _, err := detector.Observe(ctx, bidAskSample("SPY", b1, 200, 100, 0, 0)); err != nil {
		t.Fatalf("seed observe: %v", err)
	}
	signal, err := detector.Observe(ctx, bidAskSample("SPY", b2, 180, 100, -20, 0))
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if signal.Confidence != models.ConfidenceLow {
		t.Fatalf("confidence = %s, want Low", signal.Confidence)
	}
}

func TestObserveSkipsSampleWithoutBucket(t *testing.T) {
	repo := newStubRepo()
	detector := &ShiftDetector{Repo: repo}

	signal, err := detector.Observe(context.Background(), bidAskSample("SPY", time.Time{}, 100, 150, 0, 0))
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if signal != nil {
		t.Fatalf("expected nil signal for missing bucket time")
	}
	if len(repo.shifts) != 0 {
		t.Fatalf("no signal should be recorded, got %d", len(repo.shifts))
	}
}

func TestSignalsAreAppendOnly(t *testing.T) {
	repo := newStubRepo()
	detector := &ShiftDetector{Repo: repo}
	ctx := context.Background()
	b1 := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)

	// Same bucket observed twice still appends two rows.
	if _, err := detector.Observe(ctx, bidAskSample("SPY", b1, 100, 150, 0, 0)); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if _, err := detector.Observe(ctx, bidAskSample("SPY", b1, 100, 160, 0, 10)); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if len(repo.shifts) != 2 {
		t.Fatalf("expected 2 appended signals, got %d", len(repo.shifts))
	}
}
