package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RIchpenny312/spy-options-api/internal/repository"
)

type ShiftHandler struct {
	Repo          repository.Repository
	DefaultSymbol string
}

func (h *ShiftHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/shifts", h.list)
}

func (h *ShiftHandler) list(c *gin.Context) {
	params := repository.ListShiftSignalsParams{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if symbol == "" {
		symbol = h.DefaultSymbol
	}
	if symbol != "" {
		params.Symbol = &symbol
	}
	if confidence := strings.TrimSpace(c.Query("confidence")); confidence != "" {
		params.Confidence = &confidence
	}
	rows, err := h.Repo.ListShiftSignals(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, nil)
}
