package repository

import (
	"context"

	"finfluencer-tracker/internal/verifier/dto"

	"gorm.io/gorm"
)

type creatorRepository struct {
	db *gorm.DB
}

// NewCreatorRepository creates a new GORM-based creator repository.
func NewCreatorRepository(db *gorm.DB) CreatorRepository {
	return &creatorRepository{db: db}
}

// recalculateScoresQuery recomputes every creator in one statement. Creators
// without verifications get zero predictions and a NULL score.
const recalculateScoresQuery = `
UPDATE creators
SET total_predictions = COALESCE(s.verified_count, 0),
    accuracy_score = s.avg_score
FROM creators c
LEFT JOIN (
    SELECT vd.creator_id,
           COUNT(ver.id) AS verified_count,
           AVG(ver.overall_score) AS avg_score
    FROM verifications ver
    JOIN predictions p ON p.id = ver.prediction_id
    JOIN videos vd ON vd.id = p.video_id
    GROUP BY vd.creator_id
) s ON s.creator_id = c.id
WHERE creators.id = c.id`

// RecalculateScores refreshes total_predictions and accuracy_score.
func (r *creatorRepository) RecalculateScores(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(recalculateScoresQuery).Error
}

const leaderboardQuery = `
SELECT c.id, c.name, c.slug, c.channel_url, c.description,
       c.total_predictions, c.accuracy_score,
       COUNT(DISTINCT vd.id) AS video_count
FROM creators c
LEFT JOIN videos vd ON vd.creator_id = c.id
GROUP BY c.id
ORDER BY c.accuracy_score DESC NULLS LAST, c.total_predictions DESC, c.name ASC
LIMIT ?`

// GetLeaderboard ranks creators by accuracy, then by number of verified
// predictions.
func (r *creatorRepository) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	var entries []dto.LeaderboardEntry
	if err := r.db.WithContext(ctx).Raw(leaderboardQuery, limit).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
