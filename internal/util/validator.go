package util

import (
	"fmt"
	"time"
)

// ValidateDate validates a date string (must be YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateProbability validates a model probability (must lie in [0, 1]).
func ValidateProbability(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("probability out of range, got %f", p)
	}
	return nil
}

// ValidateOutcome validates a binary classification outcome.
func ValidateOutcome(prediction int) error {
	if prediction != 0 && prediction != 1 {
		return fmt.Errorf("prediction must be 0 or 1, got %d", prediction)
	}
	return nil
}
