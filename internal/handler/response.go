package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Meta carries query-resolution context alongside the data payload, such as
// the trading day a request actually resolved to.
type Meta map[string]any

// DayMeta reports which trading day served a request. When used differs
// from requested, the store fell back to an earlier day with data and the
// meta carries both under requested_day and fallback_date.
func DayMeta(requested, used string) Meta {
	m := Meta{"requested_day": requested}
	if used != "" && used != requested {
		m["fallback_date"] = used
	}
	return m
}

// envelope is the JSON shape of every response: code 0 on success, the
// HTTP status on failure.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    Meta   `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta Meta) {
	c.JSON(http.StatusOK, envelope{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta Meta) {
	c.JSON(status, envelope{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}
