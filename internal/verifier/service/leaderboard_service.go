package service

import (
	"context"
	"fmt"

	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/internal/verifier/repository"
	"finfluencer-tracker/pkg/logger"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 500
)

// LeaderboardService ranks creators by aggregate accuracy.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
}

type leaderboardService struct {
	creators repository.CreatorRepository
	logger   *logger.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(creators repository.CreatorRepository, log *logger.Logger) LeaderboardService {
	return &leaderboardService{creators: creators, logger: log}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	switch {
	case limit <= 0:
		limit = defaultLeaderboardLimit
	case limit > maxLeaderboardLimit:
		limit = maxLeaderboardLimit
	}

	entries, err := s.creators.GetLeaderboard(ctx, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get leaderboard", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	if entries == nil {
		entries = []dto.LeaderboardEntry{}
	}
	return entries, nil
}
