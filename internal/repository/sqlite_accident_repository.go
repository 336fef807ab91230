package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stwalsh4118/hunt/internal/database"
	"github.com/stwalsh4118/hunt/internal/models"
)

// sqliteAccidentRepository stores accidents in a SQLite file through database/sql.
type sqliteAccidentRepository struct {
	db *database.SQLite
}

// NewSQLiteAccidentRepository creates an AccidentRepository backed by SQLite.
func NewSQLiteAccidentRepository(db *database.SQLite) AccidentRepository {
	return &sqliteAccidentRepository{
		db: db,
	}
}

func (r *sqliteAccidentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.DB.ExecContext(ctx, "DELETE FROM accidents"); err != nil {
		return fmt.Errorf("failed to delete accidents: %w", err)
	}
	return nil
}

func (r *sqliteAccidentRepository) CreateMany(ctx context.Context, accidents []models.Accident) (int, error) {
	return r.inTx(ctx, func(tx *sql.Tx) (int, error) {
		return insertAccidents(ctx, tx, accidents)
	})
}

func (r *sqliteAccidentRepository) ReplaceAll(ctx context.Context, accidents []models.Accident) (int, error) {
	return r.inTx(ctx, func(tx *sql.Tx) (int, error) {
		if _, err := tx.ExecContext(ctx, "DELETE FROM accidents"); err != nil {
			return 0, fmt.Errorf("failed to delete accidents: %w", err)
		}
		return insertAccidents(ctx, tx, accidents)
	})
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (r *sqliteAccidentRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) (int, error)) (int, error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := fn(tx)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit accidents: %w", err)
	}
	return n, nil
}

func insertAccidents(ctx context.Context, tx *sql.Tx, accidents []models.Accident) (int, error) {
	if len(accidents) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, sqliteDialect.insertStatement())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range accidents {
		if _, err := stmt.ExecContext(ctx, sqliteDialect.accidentValues(&accidents[i])...); err != nil {
			return 0, fmt.Errorf("failed to insert accident %d of %d: %w", i+1, len(accidents), err)
		}
	}
	return len(accidents), nil
}

func (r *sqliteAccidentRepository) FindAll(ctx context.Context, q models.Query) ([]models.Accident, error) {
	query, args := sqliteDialect.selectStatement(q)

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accidents: %w", err)
	}
	defer rows.Close()

	accidents := []models.Accident{}
	for rows.Next() {
		a, err := scanSQLiteAccident(rows)
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

func (r *sqliteAccidentRepository) FindByID(ctx context.Context, id int64) (*models.Accident, error) {
	query := "SELECT " + selectColumns + " FROM accidents WHERE id = ?"

	a, err := scanSQLiteAccident(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query accident %d: %w", id, err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSQLiteAccident reads a row where date is stored as YYYY-MM-DD text.
func scanSQLiteAccident(row rowScanner) (*models.Accident, error) {
	var (
		a    models.Accident
		date string
		year int
	)
	err := row.Scan(
		&a.ID,
		&a.FinalReport,
		&date,
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

	a.Date, err = models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q for accident %d: %w", date, a.ID, err)
	}
	return &a, nil
}
