package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Verification is the persisted grade of a prediction. There is at most one
// row per prediction; re-verification overwrites it.
type Verification struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	PredictionID     uint           `gorm:"uniqueIndex;not null" json:"prediction_id"`
	ActualOutcome    datatypes.JSON `gorm:"type:jsonb" json:"actual_outcome"`
	DirectionCorrect bool           `gorm:"not null;default:false" json:"direction_correct"`
	TargetAccuracy   float64        `gorm:"not null;default:0" json:"target_accuracy"`
	TimingAccuracy   float64        `gorm:"not null;default:0" json:"timing_accuracy"`
	OverallScore     float64        `gorm:"not null;default:0" json:"overall_score"`
	Explanation      string         `gorm:"type:text" json:"explanation"`
	MarketDataSource string         `gorm:"type:varchar(50)" json:"market_data_source"`
	EvidenceSources  pq.StringArray `gorm:"type:text[]" json:"evidence_sources"`
	VerifiedAt       time.Time      `json:"verified_at"`
}

func (Verification) TableName() string {
	return "verifications"
}
