package repository

import (
	"context"
	"time"

	"github.com/RIchpenny312/spy-options-api/internal/models"
)

// ListShiftSignalsParams filters the append-only shift-signal log.
type ListShiftSignalsParams struct {
	Symbol     *string
	Confidence *string
	Since      *time.Time
	Limit      int
	Offset     int
}

// Repository is the storage contract the aggregation engine runs against.
// Every Upsert* keeps at most one live row per unique key; repeated calls
// with the same key overwrite value fields. AccumulateDarkPoolLevel sums
// into the existing row instead, because passes over the same day may carry
// disjoint trade subsets. Insert* methods append.
type Repository interface {
	UpsertOHLC(ctx context.Context, item *models.OHLC) error
	UpsertSpotExposure(ctx context.Context, item *models.SpotExposure) error
	UpsertOptionFlow(ctx context.Context, item *models.OptionFlow) error
	UpsertBidAskVolume(ctx context.Context, item *models.BidAskVolume) error
	UpsertDeltaRecord(ctx context.Context, item *models.DeltaRecord) error
	AccumulateDarkPoolLevel(ctx context.Context, item *models.DarkPoolLevel) error
	InsertShiftSignal(ctx context.Context, item *models.ShiftSignal) error
	InsertRawSnapshot(ctx context.Context, item *models.RawSnapshot) error

	ListOHLC(ctx context.Context, symbol string, limit int) ([]models.OHLC, error)

	ListRecentOptionFlows(ctx context.Context, symbol string, limit int) ([]models.OptionFlow, error)
	LatestOptionFlow(ctx context.Context, symbol string) (*models.OptionFlow, error)
	ListOptionFlowsBetween(ctx context.Context, symbol string, from, to time.Time) ([]models.OptionFlow, error)
	TopOptionFlowsByVolume(ctx context.Context, side string, limit int) ([]models.OptionFlow, error)

	ListRecentSpotExposures(ctx context.Context, symbol string, limit int) ([]models.SpotExposure, error)
	ListRecentBidAskVolumes(ctx context.Context, symbol string, limit int) ([]models.BidAskVolume, error)
	LatestBidAskVolume(ctx context.Context, symbol string) (*models.BidAskVolume, error)

	ListDeltaRecordsBetween(ctx context.Context, symbol string, from, to time.Time) ([]models.DeltaRecord, error)

	LatestShiftSignal(ctx context.Context, symbol string) (*models.ShiftSignal, error)
	ListShiftSignals(ctx context.Context, params ListShiftSignalsParams) ([]models.ShiftSignal, error)

	ListDarkPoolLevels(ctx context.Context, day time.Time, limit int) ([]models.DarkPoolLevel, error)
	LatestDarkPoolDayBefore(ctx context.Context, day time.Time) (*time.Time, error)
	ListDarkPoolLevelsSince(ctx context.Context, since time.Time) ([]models.DarkPoolLevel, error)
}
