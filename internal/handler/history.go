package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/keerthana777z/health-risk-demo/internal/charts"
	"github.com/keerthana777z/health-risk-demo/internal/history"
	"github.com/keerthana777z/health-risk-demo/internal/middleware"
	"github.com/keerthana777z/health-risk-demo/internal/models"
	"github.com/keerthana777z/health-risk-demo/internal/predictor"
	"github.com/keerthana777z/health-risk-demo/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HistoryHandler serves assessment history and the dashboard built
// from it.
type HistoryHandler struct {
	DB     *gorm.DB
	Store  *history.Store
	Client *predictor.Client
	Log    *logrus.Logger
}

func NewHistoryHandler(db *gorm.DB, store *history.Store, client *predictor.Client, log *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{DB: db, Store: store, Client: client, Log: log}
}

type predictionResp struct {
	ID          uint            `json:"id"`
	ModelName   string          `json:"model_name"`
	Input       json.RawMessage `json:"input"`
	Prediction  int             `json:"prediction"`
	Probability float64         `json:"probability"`
	Risk        string          `json:"risk"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toPredictionResp(r *models.PredictionRecord) predictionResp {
	label := charts.LabelLowRisk
	if r.Prediction == 1 {
		label = charts.LabelHighRisk
	}
	input := json.RawMessage(r.Input)
	if !json.Valid(input) {
		input = nil
	}
	return predictionResp{
		ID:          r.ID,
		ModelName:   r.ModelName,
		Input:       input,
		Prediction:  r.Prediction,
		Probability: r.Probability,
		Risk:        label,
		CreatedAt:   r.CreatedAt,
	}
}

// ListPredictions returns the user's full assessment history, newest
// first.
func (h *HistoryHandler) ListPredictions(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	records, err := h.Store.FetchHistory(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load history")
		return
	}

	items := make([]predictionResp, 0, len(records))
	for i := range records {
		items = append(items, toPredictionResp(&records[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

// Dashboard returns the outcome distribution and a metric trend derived
// from the user's stored records. The platform-wide average probability
// comes from the remote analytics endpoint and degrades to zero when
// that call fails.
func (h *HistoryHandler) Dashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	metric := c.DefaultQuery("metric", "hgb")
	if !charts.IsMetric(metric) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown metric")
		return
	}

	records, err := h.Store.FetchHistory(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load history")
		return
	}

	var points []models.HealthDataPoint
	if err := h.DB.
		Where("user_id = ?", user.ID).
		Order("recorded_at ASC, id ASC").
		Find(&points).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load health data")
		return
	}

	trend := charts.Trend(points, metric)

	// best effort; the dashboard renders without it, and the call dies
	// with the request instead of outliving a disconnected client
	average, err := h.Client.AverageProbability(c.Request.Context())
	if err != nil {
		h.Log.WithError(err).Debug("platform analytics unavailable")
		average = 0
	}

	util.Success(c, util.Response{
		"summary":          charts.Summarize(records),
		"metric":           metric,
		"trend":            trend,
		"platform_average": average,
	})
}
