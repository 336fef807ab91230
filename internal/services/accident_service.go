package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/hunt/internal/logger"
	"github.com/stwalsh4118/hunt/internal/models"
	"github.com/stwalsh4118/hunt/internal/repository"
)

// Service-level errors
var (
	ErrAccidentNotFound  = errors.New("accident not found")
	ErrInvalidAccidentID = errors.New("accident id must be a positive integer")
)

// AccidentService defines the read operations over imported accidents.
type AccidentService interface {
	// ListAccidents returns the accidents selected by the given scopes.
	// Returns an empty slice when nothing matches (not an error).
	ListAccidents(ctx context.Context, scopes ...models.Scope) ([]models.Accident, error)

	// GetAccident returns one accident.
	// Returns ErrInvalidAccidentID for ids below 1.
	// Returns ErrAccidentNotFound if it does not exist.
	GetAccident(ctx context.Context, id int64) (*models.Accident, error)
}

// accidentService is the concrete implementation of AccidentService.
type accidentService struct {
	repo repository.AccidentRepository
	log  *logger.Logger
}

// NewAccidentService creates a new instance of AccidentService.
func NewAccidentService(repo repository.AccidentRepository, log *logger.Logger) AccidentService {
	return &accidentService{
		repo: repo,
		log:  log,
	}
}

func (s *accidentService) ListAccidents(ctx context.Context, scopes ...models.Scope) ([]models.Accident, error) {
	q := models.NewQuery(scopes...)
	fields := map[string]interface{}{
		"fatal_only": q.FatalOnly,
		"relations":  q.PartyRelations,
		"order":      q.Order.String(),
	}

	s.log.Debug("Listing accidents", fields)

	accidents, err := s.repo.FindAll(ctx, q)
	if err != nil {
		s.log.Error("Failed to list accidents", err, fields)
		return nil, fmt.Errorf("failed to list accidents: %w", err)
	}

	s.log.Info("Accidents listed", map[string]interface{}{
		"order": q.Order.String(),
		"count": len(accidents),
	})

	return accidents, nil
}

func (s *accidentService) GetAccident(ctx context.Context, id int64) (*models.Accident, error) {
	if id < 1 {
		s.log.Warn("Invalid accident id provided", map[string]interface{}{
			"id": id,
		})
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAccidentID, id)
	}

	accident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query accident", err, map[string]interface{}{
			"id": id,
		})
		return nil, fmt.Errorf("failed to query accident: %w", err)
	}

	// Repository returns nil, nil when nothing matches
	if accident == nil {
		s.log.Debug("Accident not found", map[string]interface{}{
			"id": id,
		})
		return nil, ErrAccidentNotFound
	}

	return accident, nil
}
