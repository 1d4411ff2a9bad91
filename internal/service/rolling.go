package service

import (
	"context"
	"time"

	"github.com/RIchpenny312/spy-options-api/internal/models"
	"github.com/RIchpenny312/spy-options-api/internal/repository"
)

// FlowWindowSnapshot is the trailing-window mean of stored option flows.
// It is recomputed in full from stored rows on every call, never carried
// between cycles.
type FlowWindowSnapshot struct {
	Symbol            string     `json:"symbol"`
	WindowSize        int        `json:"window_size"`
	SampleCount       int        `json:"sample_count"`
	AsOf              *time.Time `json:"as_of,omitempty"`
	AvgNetCallPremium float64    `json:"avg_net_call_premium"`
	AvgNetPutPremium  float64    `json:"avg_net_put_premium"`
	AvgCallVolume     float64    `json:"avg_call_volume"`
	AvgPutVolume      float64    `json:"avg_put_volume"`
}

// RollingAggregator computes trailing-K statistics over stored buckets.
type RollingAggregator struct {
	Repo repository.Repository

	// DefaultWindow is used when the caller passes no window size.
	DefaultWindow int
}

// FlowSnapshot averages up to window most recent flow rows for symbol.
// Fewer than window rows means the mean covers only what exists; missing
// buckets are never counted as zero.
func (a *RollingAggregator) FlowSnapshot(ctx context.Context, symbol string, window int) (*FlowWindowSnapshot, error) {
	if window <= 0 {
		window = a.DefaultWindow
	}
	if window <= 0 {
		window = 12
	}
	rows, err := a.Repo.ListRecentOptionFlows(ctx, symbol, window)
	if err != nil {
		return nil, err
	}
	snap := &FlowWindowSnapshot{
		Symbol:      symbol,
		WindowSize:  window,
		SampleCount: len(rows),
	}
	if len(rows) == 0 {
		return snap, nil
	}
	asOf := rows[0].BucketStart
	snap.AsOf = &asOf
	var callPrem, putPrem, callVol, putVol float64
	for _, row := range rows {
		callPrem += row.NetCallPremium
		putPrem += row.NetPutPremium
		callVol += float64(row.CallVolume)
		putVol += float64(row.PutVolume)
	}
	n := float64(len(rows))
	snap.AvgNetCallPremium = callPrem / n
	snap.AvgNetPutPremium = putPrem / n
	snap.AvgCallVolume = callVol / n
	snap.AvgPutVolume = putVol / n
	return snap, nil
}

// LatestFlow returns the most recent stored flow row for symbol, or nil.
func (a *RollingAggregator) LatestFlow(ctx context.Context, symbol string) (*models.OptionFlow, error) {
	return a.Repo.LatestOptionFlow(ctx, symbol)
}
