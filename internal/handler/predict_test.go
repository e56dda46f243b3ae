package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/keerthana777z/health-risk-demo/internal/history"
	"github.com/keerthana777z/health-risk-demo/internal/models"
	"github.com/keerthana777z/health-risk-demo/internal/predictor"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.PredictionRecord{}, &models.HealthDataPoint{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newPredictRouter wires the handler behind a stub auth layer that
// injects user (nil for anonymous requests).
func newPredictRouter(t *testing.T, modelSrv *httptest.Server, db *gorm.DB, user *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewPredictHandler(
		predictor.New(modelSrv.URL, quietLog()),
		history.NewStore(db),
		quietLog(),
	)

	r := gin.New()
	r.POST("/api/predictions/:kind", func(c *gin.Context) {
		if user != nil {
			c.Set("currentUser", user)
		}
		h.Submit(c)
	})
	return r
}

func submit(r *gin.Engine, kind string, fields map[string]string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(fields)
	req := httptest.NewRequest(http.MethodPost, "/api/predictions/"+kind, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validDiabetesFields() map[string]string {
	return map[string]string{
		"age":            "35",
		"bmi":            "24.8",
		"glucose":        "95",
		"insulin":        "8.5",
		"blood_pressure": "120/80",
	}
}

func modelServer(t *testing.T, prediction int, probability float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"prediction":  prediction,
			"probability": probability,
		})
	}))
}

func TestSubmit_Success(t *testing.T) {
	srv := modelServer(t, 1, 0.82)
	defer srv.Close()
	db := newTestDB(t)

	r := newPredictRouter(t, srv, db, nil)
	w := submit(r, "diabetes", validDiabetesFields())

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Prediction  int     `json:"prediction"`
			Probability float64 `json:"probability"`
			Risk        string  `json:"risk"`
			Saved       bool    `json:"saved"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Prediction != 1 || resp.Data.Probability != 0.82 {
		t.Errorf("result = %+v, want prediction 1 probability 0.82", resp.Data)
	}
	if resp.Data.Risk != "High Risk" {
		t.Errorf("risk = %q, want High Risk", resp.Data.Risk)
	}
	if resp.Data.Saved {
		t.Error("saved = true for anonymous request, want false")
	}
}

// TestSubmit_SignedInPersistsRecord checks the background history write.
func TestSubmit_SignedInPersistsRecord(t *testing.T) {
	srv := modelServer(t, 0, 0.12)
	defer srv.Close()
	db := newTestDB(t)

	user := &models.User{Email: "a@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	r := newPredictRouter(t, srv, db, user)
	w := submit(r, "diabetes", validDiabetesFields())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// the write is detached from the response, poll briefly
	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int64
		db.Model(&models.PredictionRecord{}).Where("user_id = ?", user.ID).Count(&count)
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("prediction record never appeared, count = %d", count)
		}
		time.Sleep(10 * time.Millisecond)
	}

	var rec models.PredictionRecord
	db.Where("user_id = ?", user.ID).First(&rec)
	if rec.ModelName != "diabetes" || rec.Prediction != 0 || rec.Probability != 0.12 {
		t.Errorf("record = %+v, want diabetes 0 0.12", rec)
	}
}

func TestSubmit_MissingFieldBlocksBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	db := newTestDB(t)

	fields := validDiabetesFields()
	delete(fields, "glucose")

	r := newPredictRouter(t, srv, db, nil)
	w := submit(r, "diabetes", fields)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "glucose") {
		t.Errorf("body %q does not name the missing field", w.Body.String())
	}
	if called {
		t.Error("remote service was called despite a missing required field")
	}
}

// TestSubmit_RemoteFailureShowsFixedMessage checks that users see one
// generic message and nothing is recorded.
func TestSubmit_RemoteFailureShowsFixedMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"model exploded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()
	db := newTestDB(t)

	user := &models.User{Email: "a@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	r := newPredictRouter(t, srv, db, user)
	w := submit(r, "diabetes", validDiabetesFields())

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), predictFailedMsg) {
		t.Errorf("body %q missing the fixed failure message", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "model exploded") {
		t.Error("remote error detail leaked into the response")
	}

	time.Sleep(50 * time.Millisecond)
	var count int64
	db.Model(&models.PredictionRecord{}).Count(&count)
	if count != 0 {
		t.Errorf("stored %d records after a failed prediction, want 0", count)
	}
}

func TestSubmit_InvalidRemoteAnswerRejected(t *testing.T) {
	srv := modelServer(t, 7, 0.5) // not a binary outcome
	defer srv.Close()
	db := newTestDB(t)

	r := newPredictRouter(t, srv, db, nil)
	w := submit(r, "diabetes", validDiabetesFields())

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), predictFailedMsg) {
		t.Errorf("body %q missing the fixed failure message", w.Body.String())
	}
}

func TestSubmit_UnknownKind(t *testing.T) {
	srv := modelServer(t, 0, 0.1)
	defer srv.Close()
	db := newTestDB(t)

	r := newPredictRouter(t, srv, db, nil)
	w := submit(r, "hypertension", validDiabetesFields())

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
