package repository

import (
	"context"

	"finfluencer-tracker/internal/entity"

	"gorm.io/gorm"
)

type predictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository creates a new GORM-based prediction repository.
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

// GetUnverified returns up to limit unverified predictions, oldest first,
// with their source video loaded for the reference date.
func (r *predictionRepository) GetUnverified(ctx context.Context, limit int) ([]entity.Prediction, error) {
	var predictions []entity.Prediction
	err := r.db.WithContext(ctx).
		Preload("Video").
		Where("verified = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// FindByID retrieves a prediction by its ID. It returns gorm.ErrRecordNotFound
// when no row matches.
func (r *predictionRepository) FindByID(ctx context.Context, id uint) (*entity.Prediction, error) {
	var prediction entity.Prediction
	if err := r.db.WithContext(ctx).Preload("Video").First(&prediction, id).Error; err != nil {
		return nil, err
	}
	return &prediction, nil
}
