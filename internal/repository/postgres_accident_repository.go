package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/hunt/internal/database"
	"github.com/stwalsh4118/hunt/internal/models"
)

// postgresAccidentRepository stores accidents in PostgreSQL through pgx.
type postgresAccidentRepository struct {
	db *database.Postgres
}

// NewPostgresAccidentRepository creates an AccidentRepository backed by PostgreSQL.
func NewPostgresAccidentRepository(db *database.Postgres) AccidentRepository {
	return &postgresAccidentRepository{
		db: db,
	}
}

func (r *postgresAccidentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, "DELETE FROM accidents"); err != nil {
		return fmt.Errorf("failed to delete accidents: %w", err)
	}
	return nil
}

func (r *postgresAccidentRepository) CreateMany(ctx context.Context, accidents []models.Accident) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n, err := copyAccidents(ctx, tx, accidents)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit accidents: %w", err)
	}
	return n, nil
}

func (r *postgresAccidentRepository) ReplaceAll(ctx context.Context, accidents []models.Accident) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM accidents"); err != nil {
		return 0, fmt.Errorf("failed to delete accidents: %w", err)
	}

	n, err := copyAccidents(ctx, tx, accidents)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit accidents: %w", err)
	}
	return n, nil
}

// copyAccidents bulk-loads with COPY. Rows are streamed in slice order, so
// BIGSERIAL ids follow source order.
func copyAccidents(ctx context.Context, tx pgx.Tx, accidents []models.Accident) (int, error) {
	if len(accidents) == 0 {
		return 0, nil
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{models.Accident{}.TableName()},
		insertColumns,
		pgx.CopyFromSlice(len(accidents), func(i int) ([]any, error) {
			return postgresDialect.accidentValues(&accidents[i]), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy accidents: %w", err)
	}
	return int(n), nil
}

func (r *postgresAccidentRepository) FindAll(ctx context.Context, q models.Query) ([]models.Accident, error) {
	query, args := postgresDialect.selectStatement(q)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accidents: %w", err)
	}
	defer rows.Close()

	accidents := []models.Accident{}
	for rows.Next() {
		a, err := scanPostgresAccident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accident row: %w", err)
		}
		accidents = append(accidents, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accident rows: %w", err)
	}

	return accidents, nil
}

func (r *postgresAccidentRepository) FindByID(ctx context.Context, id int64) (*models.Accident, error) {
	query := "SELECT " + selectColumns + " FROM accidents WHERE id = $1"

	a, err := scanPostgresAccident(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query accident %d: %w", id, err)
	}
	return a, nil
}

func scanPostgresAccident(row pgx.Row) (*models.Accident, error) {
	var (
		a    models.Accident
		year int
	)
	err := row.Scan(
		&a.ID,
		&a.FinalReport,
		&a.Date,
		&year,
		&a.Injury,
		&a.County,
		&a.Fatal,
		&a.PartyRelation,
		&a.Circumstances,
		&a.ShooterAge,
		&a.ShooterGender,
		&a.VictimAge,
		&a.VictimGender,
		&a.Weapon,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
