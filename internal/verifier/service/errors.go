package service

import "errors"

var (
	// ErrPredictionNotFound is returned when a prediction id has no row.
	ErrPredictionNotFound = errors.New("prediction not found")
	// ErrBatchAlreadyRunning is returned when another process holds the
	// batch lock.
	ErrBatchAlreadyRunning = errors.New("verification batch already running")
)
