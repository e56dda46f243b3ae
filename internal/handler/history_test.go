package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/keerthana777z/health-risk-demo/internal/history"
	"github.com/keerthana777z/health-risk-demo/internal/models"
	"github.com/keerthana777z/health-risk-demo/internal/predictor"
)

func fv(v float64) *float64 { return &v }

func newDashboardRouter(t *testing.T, analyticsURL string, db *gorm.DB, user *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHistoryHandler(db, history.NewStore(db),
		predictor.New(analyticsURL, quietLog()), quietLog())

	r := gin.New()
	r.GET("/api/dashboard", func(c *gin.Context) {
		c.Set("currentUser", user)
		h.Dashboard(c)
	})
	return r
}

func getDashboard(r *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard"+query, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Email: "a@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func analyticsServer(t *testing.T, avg float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{"average_probability": avg})
	}))
}

func TestDashboard(t *testing.T) {
	srv := analyticsServer(t, 0.43)
	defer srv.Close()
	db := newTestDB(t)
	user := seedUser(t, db)

	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		return d
	}
	points := []models.HealthDataPoint{
		{UserID: user.ID, RecordedAt: day("2024-02-01"), HGB: fv(13.8)},
		{UserID: user.ID, RecordedAt: day("2024-01-01"), HGB: fv(13.5)},
	}
	for i := range points {
		if err := db.Create(&points[i]).Error; err != nil {
			t.Fatalf("seed point: %v", err)
		}
	}
	for _, p := range []int{1, 0, 1} {
		rec := models.PredictionRecord{UserID: user.ID, ModelName: "diabetes", Input: "{}", Prediction: p}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	r := newDashboardRouter(t, srv.URL, db, user)
	w := getDashboard(r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Summary []struct {
				Label string `json:"label"`
				Count int    `json:"count"`
			} `json:"summary"`
			Metric string `json:"metric"`
			Trend  []struct {
				Y float64 `json:"y"`
			} `json:"trend"`
			PlatformAverage float64 `json:"platform_average"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Data.Metric != "hgb" {
		t.Errorf("metric = %q, want default hgb", resp.Data.Metric)
	}
	if len(resp.Data.Summary) != 2 || resp.Data.Summary[0].Label != "High Risk" || resp.Data.Summary[0].Count != 2 {
		t.Errorf("summary = %+v, want High Risk 2 first", resp.Data.Summary)
	}
	if len(resp.Data.Trend) != 2 || resp.Data.Trend[0].Y != 13.5 || resp.Data.Trend[1].Y != 13.8 {
		t.Errorf("trend = %+v, want [13.5 13.8]", resp.Data.Trend)
	}
	if resp.Data.PlatformAverage != 0.43 {
		t.Errorf("platform_average = %v, want 0.43", resp.Data.PlatformAverage)
	}
}

// TestDashboard_UnknownMetricRejected checks that a bad metric name is
// rejected up front, including when the user has no health data yet.
func TestDashboard_UnknownMetricRejected(t *testing.T) {
	srv := analyticsServer(t, 0)
	defer srv.Close()
	db := newTestDB(t) // empty store
	user := seedUser(t, db)

	r := newDashboardRouter(t, srv.URL, db, user)
	w := getDashboard(r, "?metric=cholesterol")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "unknown metric") {
		t.Errorf("body %q does not report the unknown metric", w.Body.String())
	}
}

// TestDashboard_AnalyticsUnavailable checks the best-effort degradation
// to a zero platform average.
func TestDashboard_AnalyticsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	db := newTestDB(t)
	user := seedUser(t, db)

	r := newDashboardRouter(t, srv.URL, db, user)
	w := getDashboard(r, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			PlatformAverage float64 `json:"platform_average"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.PlatformAverage != 0 {
		t.Errorf("platform_average = %v, want 0", resp.Data.PlatformAverage)
	}
}
