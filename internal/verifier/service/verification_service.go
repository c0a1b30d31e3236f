package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/internal/verifier/repository"
	"finfluencer-tracker/internal/verifier/scoring"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/metrics"
	"finfluencer-tracker/pkg/telegram"
	"finfluencer-tracker/pkg/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VerificationService runs the verification pipeline for single predictions
// and batches.
type VerificationService interface {
	// VerifyPrediction grades p without persisting anything.
	VerifyPrediction(ctx context.Context, p entity.Prediction) dto.VerificationResult
	// VerifyByID grades one stored prediction, persists a verified result
	// and refreshes creator scores straight away.
	VerifyByID(ctx context.Context, id uint) (dto.VerificationResult, error)
	// VerifyUnverified grades up to limit unverified predictions in creation
	// order, pausing delay after each, and refreshes creator scores once.
	VerifyUnverified(ctx context.Context, limit int, delay time.Duration) (dto.BatchSummary, error)
}

// Dependencies groups what the verification service needs. Search, Locker,
// Notifier and Metrics are optional.
type Dependencies struct {
	Predictions   repository.PredictionRepository
	Verifications repository.VerificationRepository
	Creators      repository.CreatorRepository
	Outcomes      *OutcomeResolver
	Verifier      *SemanticVerifier
	Search        repository.SearchRepository
	Locker        BatchLocker
	Notifier      telegram.Notifier
	Metrics       *metrics.Registry
	Logger        *logger.Logger
}

type verificationService struct {
	predictions   repository.PredictionRepository
	verifications repository.VerificationRepository
	creators      repository.CreatorRepository
	outcomes      *OutcomeResolver
	verifier      *SemanticVerifier
	search        repository.SearchRepository
	locker        BatchLocker
	notifier      telegram.Notifier
	metrics       *metrics.Registry
	logger        *logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(deps Dependencies) VerificationService {
	return &verificationService{
		predictions:   deps.Predictions,
		verifications: deps.Verifications,
		creators:      deps.Creators,
		outcomes:      deps.Outcomes,
		verifier:      deps.Verifier,
		search:        deps.Search,
		locker:        deps.Locker,
		notifier:      deps.Notifier,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		now:           utils.TimeNowIST,
		sleep:         sleepContext,
	}
}

func (s *verificationService) VerifyPrediction(ctx context.Context, p entity.Prediction) dto.VerificationResult {
	ref, ok := p.ReferenceDate()
	if !ok {
		ref = s.now()
	}
	predictionDate := utils.FormatDate(ref)

	window := scoring.ResolveTimeframe(p.Timeframe, ref)
	outcome := s.outcomes.Resolve(ctx, p.Asset, p.Direction, p.Target, window)

	result := dto.VerificationResult{
		PredictionID:  p.ID,
		MarketOutcome: outcome,
		DataSource:    outcome.DataSource,
	}
	if outcome.Outcome == dto.OutcomePending {
		result.Status = dto.StatusPending
		result.Message = outcome.Note
		return result
	}

	if outcome.NeedsEvidence() && s.search != nil {
		evidence, err := s.search.Search(ctx, p.Statement, p.Asset, p.Timeframe, predictionDate)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to fetch search evidence",
				logger.IntField("prediction_id", int(p.ID)),
				logger.ErrorField(err),
			)
		}
		result.Evidence = evidence
	}

	score := s.verifier.Verify(ctx, p, predictionDate, outcome, result.Evidence)
	score.OverallScore = roundTo(score.OverallScore, 3)

	result.Status = dto.StatusVerified
	result.Score = &score
	return result
}

func (s *verificationService) VerifyByID(ctx context.Context, id uint) (dto.VerificationResult, error) {
	p, err := s.predictions.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.VerificationResult{
			PredictionID: id,
			Status:       dto.StatusError,
			Message:      ErrPredictionNotFound.Error(),
		}, fmt.Errorf("prediction %d: %w", id, ErrPredictionNotFound)
	}
	if err != nil {
		return dto.VerificationResult{PredictionID: id, Status: dto.StatusError, Message: err.Error()},
			fmt.Errorf("failed to load prediction %d: %w", id, err)
	}

	result := s.VerifyPrediction(ctx, *p)
	s.metrics.ObserveVerification(string(result.Status))
	if result.Status != dto.StatusVerified {
		return result, nil
	}

	if err := s.persist(ctx, result); err != nil {
		result.Status = dto.StatusError
		result.Message = err.Error()
		return result, err
	}
	if err := s.creators.RecalculateScores(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to recalculate creator scores", logger.ErrorField(err))
		return result, fmt.Errorf("failed to recalculate creator scores: %w", err)
	}
	return result, nil
}

func (s *verificationService) VerifyUnverified(ctx context.Context, limit int, delay time.Duration) (dto.BatchSummary, error) {
	summary := dto.BatchSummary{RunID: uuid.NewString()}
	ctx = logger.WithContext(ctx, logger.StringField("run_id", summary.RunID))
	started := time.Now()

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx)
		if err != nil {
			return summary, err
		}
		defer release()
	}

	predictions, err := s.predictions.GetUnverified(ctx, limit)
	if err != nil {
		return summary, fmt.Errorf("failed to get unverified predictions: %w", err)
	}
	s.logger.InfoContext(ctx, "Verifying predictions", logger.IntField("count", len(predictions)))

	var totalScore float64
	for _, p := range predictions {
		if ctx.Err() != nil {
			break
		}

		summary.Processed++
		result, err := s.verifyAndPersist(ctx, p)
		switch {
		case err != nil:
			summary.Errors++
			s.logger.ErrorContext(ctx, "Failed to verify prediction",
				logger.IntField("prediction_id", int(p.ID)),
				logger.ErrorField(err),
			)
		case result.Status == dto.StatusPending:
			summary.Pending++
		case result.Status == dto.StatusVerified:
			summary.Verified++
			totalScore += result.Score.OverallScore
			s.logger.DebugContext(ctx, "Prediction verified",
				logger.IntField("prediction_id", int(p.ID)),
				logger.FloatField("overall_score", result.Score.OverallScore),
			)
		default:
			summary.Errors++
		}

		if err := s.sleep(ctx, delay); err != nil {
			break
		}
	}

	if summary.Verified > 0 {
		summary.AverageScore = totalScore / float64(summary.Verified)
	}

	// Verifications already written stay valid after cancellation, so the
	// aggregates are refreshed regardless.
	if err := s.creators.RecalculateScores(context.WithoutCancel(ctx)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to recalculate creator scores", logger.ErrorField(err))
		return summary, fmt.Errorf("failed to recalculate creator scores: %w", err)
	}

	elapsed := time.Since(started)
	s.metrics.ObserveBatch(elapsed)
	s.logger.InfoContext(ctx, "Verification batch finished",
		logger.IntField("processed", summary.Processed),
		logger.IntField("verified", summary.Verified),
		logger.IntField("pending", summary.Pending),
		logger.IntField("errors", summary.Errors),
		logger.FloatField("average_score", summary.AverageScore),
	)
	s.report(ctx, summary, elapsed)
	return summary, ctx.Err()
}

// verifyAndPersist runs one batch item. A panic in any collaborator is
// turned into an error so the batch carries on.
func (s *verificationService) verifyAndPersist(ctx context.Context, p entity.Prediction) (result dto.VerificationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic verifying prediction %d: %v", p.ID, r)
		}
		status := string(result.Status)
		if err != nil {
			status = string(dto.StatusError)
		}
		s.metrics.ObserveVerification(status)
	}()

	result = s.VerifyPrediction(ctx, p)
	if result.Status != dto.StatusVerified {
		return result, nil
	}
	return result, s.persist(ctx, result)
}

func (s *verificationService) persist(ctx context.Context, result dto.VerificationResult) error {
	snapshot, err := json.Marshal(result.MarketOutcome)
	if err != nil {
		return fmt.Errorf("failed to marshal market outcome: %w", err)
	}

	sources := pq.StringArray{}
	if result.Evidence != nil {
		sources = append(sources, result.Evidence.Sources...)
	}

	verification := &entity.Verification{
		PredictionID:     result.PredictionID,
		ActualOutcome:    datatypes.JSON(snapshot),
		DirectionCorrect: result.Score.DirectionCorrect,
		TargetAccuracy:   result.Score.TargetScore,
		TimingAccuracy:   result.Score.TimingScore,
		OverallScore:     result.Score.OverallScore,
		Explanation:      result.Score.Explanation,
		MarketDataSource: result.DataSource,
		EvidenceSources:  sources,
		VerifiedAt:       s.now(),
	}
	if err := s.verifications.Upsert(ctx, verification); err != nil {
		return fmt.Errorf("failed to save verification for prediction %d: %w", result.PredictionID, err)
	}
	return nil
}

func (s *verificationService) report(ctx context.Context, summary dto.BatchSummary, elapsed time.Duration) {
	if s.notifier == nil || summary.Processed == 0 {
		return
	}
	if err := s.notifier.SendMessage(telegram.FormatBatchSummary(summary, elapsed)); err != nil {
		s.logger.WarnContext(ctx, "Failed to send batch summary", logger.ErrorField(err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
