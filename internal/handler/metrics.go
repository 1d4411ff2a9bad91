package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RIchpenny312/spy-options-api/internal/bucket"
	"github.com/RIchpenny312/spy-options-api/internal/repository"
	"github.com/RIchpenny312/spy-options-api/internal/service"
)

// MetricsHandler exposes stored and derived time-series rows. Pure
// projections; all computation lives in the services.
type MetricsHandler struct {
	Repo          repository.Repository
	Rolling       *service.RollingAggregator
	Buckets       *bucket.Normalizer
	DefaultSymbol string

	// Configured window sizes, selectable by name on /rolling.
	ShortWindow    int
	LongWindow     int
	IntradayWindow int
}

func (h *MetricsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.GET("/ohlc/latest", h.latestOHLC)
	group.GET("/metrics/:family/recent", h.recentFamily)
	group.GET("/rolling", h.rolling)
	group.GET("/deltas", h.deltas)
	group.GET("/options/top", h.topOptions)
}

func (h *MetricsHandler) symbol(c *gin.Context) string {
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if symbol == "" {
		symbol = h.DefaultSymbol
	}
	return symbol
}

func (h *MetricsHandler) latestOHLC(c *gin.Context) {
	limit := queryInt(c, "limit", 5)
	rows, err := h.Repo.ListOHLC(c.Request.Context(), h.symbol(c), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, nil)
}

func (h *MetricsHandler) recentFamily(c *gin.Context) {
	symbol := h.symbol(c)
	limit := queryInt(c, "limit", 5)
	ctx := c.Request.Context()
	switch c.Param("family") {
	case "flows":
		rows, err := h.Repo.ListRecentOptionFlows(ctx, symbol, limit)
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		Ok(c, rows, nil)
	case "exposures":
		rows, err := h.Repo.ListRecentSpotExposures(ctx, symbol, limit)
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		Ok(c, rows, nil)
	case "bidask":
		rows, err := h.Repo.ListRecentBidAskVolumes(ctx, symbol, limit)
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		Ok(c, rows, nil)
	default:
		Error(c, http.StatusNotFound, "unknown metric family", nil)
	}
}

func (h *MetricsHandler) rolling(c *gin.Context) {
	window := h.resolveWindow(c.Query("window"))
	snap, err := h.Rolling.FlowSnapshot(c.Request.Context(), h.symbol(c), window)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, snap, nil)
}

func (h *MetricsHandler) deltas(c *gin.Context) {
	at := time.Now()
	if day := strings.TrimSpace(c.Query("day")); day != "" {
		parsed, err := h.Buckets.ParseDay(day)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid day, want YYYY-MM-DD", nil)
			return
		}
		at = parsed
	}
	from, to, err := h.Buckets.DayBounds(at)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	rows, err := h.Repo.ListDeltaRecordsBetween(c.Request.Context(), h.symbol(c), from, to)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, Meta{"day": from.Format("2006-01-02")})
}

func (h *MetricsHandler) topOptions(c *gin.Context) {
	limit := queryInt(c, "limit", 3)
	ctx := c.Request.Context()
	calls, err := h.Repo.TopOptionFlowsByVolume(ctx, "call", limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	puts, err := h.Repo.TopOptionFlowsByVolume(ctx, "put", limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"top_calls": calls, "top_puts": puts}, nil)
}

// resolveWindow maps the window query to a bucket count. The named presets
// select the configured short/long/intraday sizes; a positive integer is
// used as-is; anything else falls back to the short window.
func (h *MetricsHandler) resolveWindow(raw string) int {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "short":
		return h.ShortWindow
	case "long":
		return h.LongWindow
	case "intraday":
		return h.IntradayWindow
	}
	if value, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && value > 0 {
		return value
	}
	return h.ShortWindow
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
