package handler

import (
	"fmt"
	"net/http"

	"github.com/keerthana777z/health-risk-demo/internal/assessment"
	"github.com/keerthana777z/health-risk-demo/internal/charts"
	"github.com/keerthana777z/health-risk-demo/internal/history"
	"github.com/keerthana777z/health-risk-demo/internal/middleware"
	"github.com/keerthana777z/health-risk-demo/internal/predictor"
	"github.com/keerthana777z/health-risk-demo/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// predictFailedMsg is the only transport-failure text users ever see.
const predictFailedMsg = "Failed to get prediction. Please try again later."

// PredictHandler runs the assessment flow: collect raw fields, build
// the payload, call the remote model, show the result, and (with a
// session) persist it in the background.
type PredictHandler struct {
	Client  *predictor.Client
	History *history.Store
	Log     *logrus.Logger
}

func NewPredictHandler(client *predictor.Client, store *history.Store, log *logrus.Logger) *PredictHandler {
	return &PredictHandler{Client: client, History: store, Log: log}
}

// Submit handles POST /api/predictions/:kind. The body is a flat map of
// raw form fields; anything beyond presence is judged by the remote
// service.
func (h *PredictHandler) Submit(c *gin.Context) {
	kind, err := assessment.ParseKind(c.Param("kind"))
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "unknown assessment type")
		return
	}

	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	form := assessment.NewForm()
	for name, value := range fields {
		form.SetField(name, value)
	}

	// presence check blocks submission before any network call
	if missing := form.Missing(kind); len(missing) > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			fmt.Sprintf("missing required field: %s", missing[0]))
		return
	}

	payload, err := form.BuildPayload(kind)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	result, err := h.Client.Predict(c.Request.Context(), payload)
	if err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeUpstreamErr, predictFailedMsg)
		return
	}

	// a structurally valid but nonsensical answer is treated like any
	// other remote failure
	if err := util.ValidateOutcome(result.Prediction); err != nil {
		h.Log.WithError(err).WithField("kind", kind).Warn("prediction service returned invalid outcome")
		util.Error(c, http.StatusBadGateway, util.CodeUpstreamErr, predictFailedMsg)
		return
	}
	if err := util.ValidateProbability(result.Probability); err != nil {
		h.Log.WithError(err).WithField("kind", kind).Warn("prediction service returned invalid probability")
		util.Error(c, http.StatusBadGateway, util.CodeUpstreamErr, predictFailedMsg)
		return
	}

	label := charts.LabelLowRisk
	if result.Prediction == 1 {
		label = charts.LabelHighRisk
	}

	// fire-and-forget history write: failure goes to the log sink and
	// never touches the response
	saved := false
	if user := middleware.CurrentUser(c); user != nil {
		saved = true
		userID := user.ID
		go func() {
			if err := h.History.Record(userID, payload, result.Prediction, result.Probability); err != nil {
				h.Log.WithError(err).WithFields(logrus.Fields{
					"user_id": userID,
					"kind":    kind,
				}).Warn("failed to save prediction record")
			}
		}()
	}

	util.Success(c, util.Response{
		"prediction":  result.Prediction,
		"probability": result.Probability,
		"risk":        label,
		"saved":       saved,
	})
}
