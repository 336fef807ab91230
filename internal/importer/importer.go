// Package importer loads historical hunting accidents from a CSV file or an
// .xlsx workbook and replaces the contents of an accident store with them.
//
// Every row is parsed before the store is touched, and the store swaps its
// contents in one transaction, so a bad row leaves the previous data intact.
package importer

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/stwalsh4118/hunt/internal/logger"
	"github.com/stwalsh4118/hunt/internal/models"
	"github.com/stwalsh4118/hunt/internal/repository"
)

// Importer performs full-replace imports into an AccidentRepository.
type Importer struct {
	repo    repository.AccidentRepository
	log     *logger.Logger
	metrics *Metrics
}

// New creates an Importer. metrics may be nil.
func New(repo repository.AccidentRepository, log *logger.Logger, metrics *Metrics) *Importer {
	return &Importer{
		repo:    repo,
		log:     log,
		metrics: metrics,
	}
}

// Import reads path, replaces every stored accident with its rows in file
// order, and returns how many were written. Read and parse failures are
// *ImportError; store failures are returned wrapped as they are.
func (im *Importer) Import(ctx context.Context, path string) (int, error) {
	start := time.Now()

	n, err := im.run(ctx, path)

	status := statusSuccess
	if err != nil {
		status = statusFailed
	}
	im.metrics.observe(status, n, time.Since(start).Seconds())

	if err != nil {
		im.log.Error("Accident import failed", err, map[string]interface{}{
			"path": path,
		})
		return 0, err
	}

	im.log.Info("Accident import finished", map[string]interface{}{
		"path":        path,
		"rows":        n,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return n, nil
}

func (im *Importer) run(ctx context.Context, path string) (int, error) {
	accidents, err := im.Parse(path)
	if err != nil {
		return 0, err
	}

	n, err := im.repo.ReplaceAll(ctx, accidents)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Parse reads and validates the whole file without touching the store.
func (im *Importer) Parse(path string) ([]models.Accident, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}
	defer src.Close()

	im.log.Debug("Reading accident file", map[string]interface{}{
		"path": path,
	})

	headerRow, line, err := src.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ImportError{Path: path, Err: ErrMissingColumn, Column: RequiredColumns[0]}
		}
		return nil, &ImportError{Path: path, Line: line, Err: err}
	}

	h, missing, err := parseHeader(headerRow)
	if err != nil {
		return nil, &ImportError{Path: path, Line: line, Column: missing, Err: err}
	}

	accidents := []models.Accident{}
	for {
		row, line, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ImportError{Path: path, Line: line, Err: err}
		}

		a, column, err := h.buildAccident(row)
		if err != nil {
			return nil, &ImportError{Path: path, Line: line, Column: column, Err: err}
		}
		accidents = append(accidents, a)
	}

	im.log.Debug("Parsed accident file", map[string]interface{}{
		"path": path,
		"rows": len(accidents),
	})

	return accidents, nil
}
