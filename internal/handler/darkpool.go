package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/RIchpenny312/spy-options-api/internal/bucket"
	"github.com/RIchpenny312/spy-options-api/internal/service"
)

type DarkPoolHandler struct {
	DarkPool *service.DarkPoolAggregator
	Buckets  *bucket.Normalizer

	DefaultWindowDays int
	DefaultLimit      int
	DefaultProximity  float64
}

func (h *DarkPoolHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/darkpool")
	group.GET("/top", h.top)
	group.GET("/confidence", h.confidence)
}

func (h *DarkPoolHandler) top(c *gin.Context) {
	day := time.Now()
	if raw := strings.TrimSpace(c.Query("day")); raw != "" {
		parsed, err := h.Buckets.ParseDay(raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid day, want YYYY-MM-DD", nil)
			return
		}
		day = parsed
	} else {
		parsed, err := h.Buckets.TradingDay(day)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		day = parsed
	}
	limit := queryInt(c, "limit", h.DefaultLimit)
	result, err := h.DarkPool.TopLevelsForDay(c.Request.Context(), day, limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	meta := DayMeta(result.RequestedDay.Format("2006-01-02"), result.Day.Format("2006-01-02"))
	Ok(c, result.Levels, meta)
}

func (h *DarkPoolHandler) confidence(c *gin.Context) {
	windowDays := queryInt(c, "window_days", h.DefaultWindowDays)

	currentPrice := decimal.Zero
	if raw := strings.TrimSpace(c.Query("price")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid price", nil)
			return
		}
		currentPrice = parsed
	}
	proximity := decimal.NewFromFloat(h.DefaultProximity)
	if raw := strings.TrimSpace(c.Query("proximity")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid proximity", nil)
			return
		}
		proximity = parsed
	}

	asOf, err := h.Buckets.TradingDay(time.Now())
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	rows, err := h.DarkPool.ConfidenceSummary(c.Request.Context(), asOf, windowDays, currentPrice, proximity)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, Meta{"window_days": windowDays})
}
