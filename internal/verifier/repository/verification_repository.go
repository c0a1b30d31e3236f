package repository

import (
	"context"
	"fmt"

	"finfluencer-tracker/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new GORM-based verification repository.
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

// Upsert writes the verification, replacing any earlier row for the same
// prediction, and flags the prediction as verified in the same transaction.
func (r *verificationRepository) Upsert(ctx context.Context, verification *entity.Verification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "prediction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"actual_outcome",
				"direction_correct",
				"target_accuracy",
				"timing_accuracy",
				"overall_score",
				"explanation",
				"market_data_source",
				"evidence_sources",
				"verified_at",
			}),
		}).Create(verification).Error
		if err != nil {
			return fmt.Errorf("upsert verification: %w", err)
		}

		if err := tx.Model(&entity.Prediction{}).
			Where("id = ?", verification.PredictionID).
			Update("verified", true).Error; err != nil {
			return fmt.Errorf("mark prediction verified: %w", err)
		}
		return nil
	})
}
