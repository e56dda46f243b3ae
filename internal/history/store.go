package history

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/keerthana777z/health-risk-demo/internal/assessment"
	"github.com/keerthana777z/health-risk-demo/internal/models"
)

// Store persists prediction results and serves a user's assessment
// history. No caching: every page view hits the database again.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record appends one prediction row for the user. Records are immutable
// once written.
func (s *Store) Record(userID uint, payload assessment.Payload, prediction int, probability float64) error {
	input, err := json.Marshal(assessment.Document(payload))
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}

	rec := models.PredictionRecord{
		UserID:      userID,
		ModelName:   string(payload.Kind()),
		Input:       string(input),
		Prediction:  prediction,
		Probability: probability,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("save prediction: %w", err)
	}
	return nil
}

// FetchHistory returns all of the user's prediction records, newest
// first. No pagination.
func (s *Store) FetchHistory(userID uint) ([]models.PredictionRecord, error) {
	var records []models.PredictionRecord
	if err := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return records, nil
}

// AverageProbability computes the mean probability over every stored
// prediction, across all users. Zero when there are no rows.
func (s *Store) AverageProbability() (float64, error) {
	var avg *float64
	if err := s.db.Model(&models.PredictionRecord{}).
		Select("AVG(probability)").
		Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("average probability: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
