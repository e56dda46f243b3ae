package handler

import (
	"net/http"

	"github.com/keerthana777z/health-risk-demo/internal/history"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler serves platform-wide aggregates over the local
// prediction store.
type AnalyticsHandler struct {
	Store *history.Store
	Log   *logrus.Logger
}

func NewAnalyticsHandler(store *history.Store, log *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Store: store, Log: log}
}

// AverageProbability handles GET /analytics/average_probability.
// The response shape is fixed by consumers: a bare JSON object with an
// average_probability field, zero when there is no data.
func (h *AnalyticsHandler) AverageProbability(c *gin.Context) {
	avg, err := h.Store.AverageProbability()
	if err != nil {
		h.Log.WithError(err).Error("compute average probability")
		avg = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"average_probability": avg,
	})
}
