package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwalsh4118/hunt/internal/models"
)

// AccidentRepository defines data access for accidents.
type AccidentRepository interface {
	// DeleteAll removes every accident.
	DeleteAll(ctx context.Context) error

	// CreateMany inserts accidents in slice order and returns how many were
	// written. IDs are assigned by the store in that same order.
	CreateMany(ctx context.Context, accidents []models.Accident) (int, error)

	// ReplaceAll deletes every accident and inserts the new batch as a single
	// unit. On error the previous contents are left in place.
	ReplaceAll(ctx context.Context, accidents []models.Accident) (int, error)

	// FindAll returns the accidents selected by q.
	// Returns an empty slice if nothing matches (not an error).
	FindAll(ctx context.Context, q models.Query) ([]models.Accident, error)

	// FindByID returns the accident with the given ID.
	// Returns nil, nil if it does not exist.
	FindByID(ctx context.Context, id int64) (*models.Accident, error)
}

// insertColumns is the column order used by every insert. The values come
// from accidentValues.
var insertColumns = []string{
	"final_report",
	"date",
	"year",
	"injury",
	"county",
	"fatal",
	"si_sp",
	"circumstances",
	"shooter_age",
	"shooter_gender",
	"victim_age",
	"victim_gender",
	"weapon",
}

var selectColumns = "id, " + strings.Join(insertColumns, ", ")

// dialect captures what differs between the SQL stores.
type dialect struct {
	placeholder func(n int) string
	boolValue   func(b bool) any
	dateValue   func(a *models.Accident) any
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	boolValue:   func(b bool) any { return b },
	dateValue:   func(a *models.Accident) any { return a.Date },
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	boolValue: func(b bool) any {
		if b {
			return 1
		}
		return 0
	},
	dateValue: func(a *models.Accident) any { return a.DateString() },
}

// accidentValues lines up with insertColumns.
func (d dialect) accidentValues(a *models.Accident) []any {
	return []any{
		d.boolValue(a.FinalReport),
		d.dateValue(a),
		a.Year(),
		a.Injury,
		a.County,
		d.boolValue(a.Fatal),
		a.PartyRelation,
		a.Circumstances,
		a.ShooterAge,
		a.ShooterGender,
		a.VictimAge,
		a.VictimGender,
		a.Weapon,
	}
}

func (d dialect) insertStatement() string {
	placeholders := make([]string, len(insertColumns))
	for i := range insertColumns {
		placeholders[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO accidents (%s) VALUES (%s)",
		strings.Join(insertColumns, ", "), strings.Join(placeholders, ", "))
}

// selectStatement translates q into SQL. Filters become ANDed predicates so
// two different party relation codes select nothing.
func (d dialect) selectStatement(q models.Query) (string, []any) {
	var (
		where []string
		args  []any
	)

	if q.FatalOnly {
		args = append(args, d.boolValue(true))
		where = append(where, "fatal = "+d.placeholder(len(args)))
	}
	for _, code := range q.PartyRelations {
		args = append(args, code)
		where = append(where, "si_sp = "+d.placeholder(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectColumns)
	b.WriteString(" FROM accidents")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderClause(q.Order))

	return b.String(), args
}

func orderClause(o models.Order) string {
	switch o {
	case models.OrderDateAsc:
		return "date ASC, id ASC"
	case models.OrderDateDesc:
		return "date DESC, id DESC"
	default:
		return "id ASC"
	}
}
