package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/keerthana777z/health-risk-demo/internal/assessment"
)

// ErrPredictionFailed is the only error callers see for transport or
// remote-service failures. The underlying cause goes to the log, never
// to the user.
var ErrPredictionFailed = errors.New("prediction service request failed")

// Result is the remote model's answer for one submission.
type Result struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
}

type analyticsResponse struct {
	AverageProbability float64 `json:"average_probability"`
}

// Client talks to the remote prediction model service.
//
// The service is treated as an opaque collaborator: no retries, and the
// http.Client carries no timeout, so a hung remote call holds the
// caller's loading state until the context (if any) expires.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

func New(baseURL string, log *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        log,
	}
}

// Predict POSTs the payload to /predict/{kind} and returns the binary
// classification plus probability. Any non-2xx status, network failure
// or unparseable body collapses into ErrPredictionFailed.
func (c *Client) Predict(ctx context.Context, payload assessment.Payload) (*Result, error) {
	body, err := json.Marshal(assessment.Document(payload))
	if err != nil {
		c.log.WithError(err).Error("encode prediction payload")
		return nil, ErrPredictionFailed
	}

	url := fmt.Sprintf("%s/predict/%s", c.baseURL, payload.Kind())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.log.WithError(err).Error("build prediction request")
		return nil, ErrPredictionFailed
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("kind", payload.Kind()).Warn("prediction request failed")
		return nil, ErrPredictionFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// remote detail is diagnostic only, never surfaced
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.WithFields(logrus.Fields{
			"kind":   payload.Kind(),
			"status": resp.StatusCode,
			"body":   string(detail),
		}).Warn("prediction service returned error status")
		return nil, ErrPredictionFailed
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.log.WithError(err).Warn("decode prediction response")
		return nil, ErrPredictionFailed
	}
	return &result, nil
}

// AverageProbability GETs the platform-wide average risk probability.
// A response without the field is tolerated and reported as zero.
func (c *Client) AverageProbability(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/analytics/average_probability", nil)
	if err != nil {
		return 0, fmt.Errorf("build analytics request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("analytics request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("analytics request: status %d", resp.StatusCode)
	}

	var body analyticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode analytics response: %w", err)
	}
	return body.AverageProbability, nil
}
