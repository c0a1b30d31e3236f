package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"finfluencer-tracker/internal/entity"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestPredictionRepository_GetUnverified(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	created := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "predictions" WHERE verified = $1 ORDER BY created_at ASC LIMIT $2`)).
		WithArgs(false, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "video_id", "statement", "asset", "direction", "timeframe", "verified", "created_at"}).
			AddRow(1, 7, "Nifty to 25000", "NIFTY 50", "bullish", "Dec 2023", false, created).
			AddRow(2, 7, "Gold will fall", "GOLD", "bearish", "6 months", false, created))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "videos" WHERE "videos"."id" = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "creator_id", "video_id", "title", "url", "publish_date"}).
			AddRow(7, 3, "abc123", "Market outlook", "https://youtube.com/watch?v=abc123", created))

	predictions, err := repo.GetUnverified(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	assert.Equal(t, entity.DirectionBullish, predictions[0].Direction)
	require.NotNil(t, predictions[0].Video)
	assert.Equal(t, "abc123", predictions[0].Video.YouTubeID)
	require.NotNil(t, predictions[1].Video)
	assert.Equal(t, uint(7), predictions[1].Video.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionRepository_FindByIDLoadsVideo(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	created := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	published := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "predictions" WHERE "predictions"."id" = $1`)).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "video_id", "statement", "asset", "direction", "timeframe", "verified", "created_at"}).
			AddRow(5, 7, "Gold will fall", "GOLD", "bearish", "6 months", false, created))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "videos" WHERE "videos"."id" = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "creator_id", "video_id", "title", "url", "publish_date"}).
			AddRow(7, 3, "abc123", "Market outlook", "https://youtube.com/watch?v=abc123", published))

	p, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, p.Video)
	assert.Equal(t, uint(7), p.Video.ID)
	assert.Equal(t, "abc123", p.Video.YouTubeID)

	ref, ok := p.ReferenceDate()
	require.True(t, ok)
	assert.Equal(t, published, ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionRepository_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "predictions" WHERE "predictions"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), 99)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVerificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "verifications" .* ON CONFLICT \("prediction_id"\) DO UPDATE SET .*"overall_score"="excluded"."overall_score"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "predictions" SET "verified"=$1 WHERE id = $2`)).
		WithArgs(true, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	v := &entity.Verification{
		PredictionID:     5,
		ActualOutcome:    datatypes.JSON(`{"outcome":"verified"}`),
		DirectionCorrect: true,
		TargetAccuracy:   0.61,
		TimingAccuracy:   0.8,
		OverallScore:     0.804,
		Explanation:      "ok",
		MarketDataSource: DataSourceYahooFinance,
		EvidenceSources:  pq.StringArray{},
		VerifiedAt:       time.Now(),
	}
	require.NoError(t, repo.Upsert(context.Background(), v))
	assert.Equal(t, uint(11), v.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_UpsertRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVerificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "verifications"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), &entity.Verification{PredictionID: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatorRepository_RecalculateScores(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreatorRepository(db)

	mock.ExpectExec(`UPDATE creators\s+SET total_predictions = COALESCE\(s.verified_count, 0\)`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.RecalculateScores(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatorRepository_GetLeaderboard(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreatorRepository(db)

	mock.ExpectQuery(`(?s)SELECT c.id, c.name.*ORDER BY c.accuracy_score DESC NULLS LAST`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "channel_url", "description", "total_predictions", "accuracy_score", "video_count"}).
			AddRow(1, "Alpha", "alpha", "https://youtube.com/@alpha", "", 12, 0.81, 30).
			AddRow(2, "Beta", "beta", "https://youtube.com/@beta", "", 0, nil, 4))

	entries, err := repo.GetLeaderboard(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alpha", entries[0].Name)
	require.NotNil(t, entries[0].AccuracyScore)
	assert.Equal(t, 0.81, *entries[0].AccuracyScore)
	assert.Equal(t, 30, entries[0].VideoCount)
	assert.Nil(t, entries[1].AccuracyScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
