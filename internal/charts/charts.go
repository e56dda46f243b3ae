// Package charts derives dashboard summaries from already-fetched
// records. All functions are pure: no I/O, inputs are never mutated.
package charts

import (
	"sort"
	"time"

	"github.com/keerthana777z/health-risk-demo/internal/models"
)

// Risk labels shown for binary outcomes.
const (
	LabelHighRisk = "High Risk"
	LabelLowRisk  = "Low Risk"
)

// OutcomeCount is one slice of the prediction pie chart.
type OutcomeCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TrendPoint is one point of a metric line chart.
type TrendPoint struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// Summarize groups predictions by outcome label. The grouping is
// independent of input order; labels are emitted high risk first so the
// chart legend is stable.
func Summarize(records []models.PredictionRecord) []OutcomeCount {
	var high, low int
	for i := range records {
		if records[i].Prediction == 1 {
			high++
		} else {
			low++
		}
	}

	var out []OutcomeCount
	if high > 0 {
		out = append(out, OutcomeCount{Label: LabelHighRisk, Count: high})
	}
	if low > 0 {
		out = append(out, OutcomeCount{Label: LabelLowRisk, Count: low})
	}
	return out
}

// Trend extracts one metric as a time series sorted ascending by
// recording date. Points whose metric is null (malformed import cell)
// are left off the line. Points sharing a date keep their relative
// input order (stable sort). Unknown field names yield nil.
func Trend(points []models.HealthDataPoint, field string) []TrendPoint {
	value := metricSelector(field)
	if value == nil {
		return nil
	}

	out := make([]TrendPoint, 0, len(points))
	for i := range points {
		v := value(&points[i])
		if v == nil {
			continue
		}
		out = append(out, TrendPoint{X: points[i].RecordedAt, Y: *v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].X.Before(out[j].X)
	})
	return out
}

// IsMetric reports whether field names a chartable metric.
func IsMetric(field string) bool {
	return metricSelector(field) != nil
}

func metricSelector(field string) func(*models.HealthDataPoint) *float64 {
	switch field {
	case "wbc":
		return func(p *models.HealthDataPoint) *float64 { return p.WBC }
	case "rbc":
		return func(p *models.HealthDataPoint) *float64 { return p.RBC }
	case "hgb":
		return func(p *models.HealthDataPoint) *float64 { return p.HGB }
	case "hct":
		return func(p *models.HealthDataPoint) *float64 { return p.HCT }
	case "plt":
		return func(p *models.HealthDataPoint) *float64 { return p.PLT }
	}
	return nil
}
