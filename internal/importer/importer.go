package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/keerthana777z/health-risk-demo/internal/models"
)

// requiredHeaders must all appear in the CSV header row, any order.
var requiredHeaders = []string{"date", "wbc", "rbc", "hgb", "hct", "plt"}

// ParseError marks a malformed file (structure or headers), as opposed
// to a failure of the store. Callers show different messages for the two.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse health data file: " + e.Reason
}

// IsParseError reports whether err is file-level, not store-level.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Importer bulk-loads user-supplied CSV health records.
type Importer struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// Import parses r as comma-separated text with a header row and
// persists every data row for the user in a single transaction.
// Returns the number of rows imported; on any failure nothing is
// imported and the count is zero.
func (im *Importer) Import(userID uint, r io.Reader) (int, error) {
	points, err := Parse(userID, r)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}

	// one batch: a failure anywhere rolls the whole import back
	err = im.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&points).Error
	})
	if err != nil {
		return 0, fmt.Errorf("store health data: %w", err)
	}
	return len(points), nil
}

// Parse maps CSV rows 1:1 to HealthDataPoints with userID attached.
// Numeric cells are parsed as floats with no validation; a malformed
// cell becomes a null metric and round-trips as null.
func Parse(userID uint, r io.Reader) ([]models.HealthDataPoint, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Reason: "file is empty"}
	}
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredHeaders {
		if _, ok := cols[name]; !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("missing required header %q", name)}
		}
	}

	var points []models.HealthDataPoint
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: err.Error()}
		}

		points = append(points, models.HealthDataPoint{
			UserID:     userID,
			RecordedAt: parseDate(cell(row, cols["date"])),
			WBC:        parseFloat(cell(row, cols["wbc"])),
			RBC:        parseFloat(cell(row, cols["rbc"])),
			HGB:        parseFloat(cell(row, cols["hgb"])),
			HCT:        parseFloat(cell(row, cols["hct"])),
			PLT:        parseFloat(cell(row, cols["plt"])),
		})
	}
	return points, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDate(s string) time.Time {
	layouts := []string{"2006-01-02", time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
