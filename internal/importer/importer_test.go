package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stwalsh4118/hunt/internal/logger"
	"github.com/stwalsh4118/hunt/internal/models"
	"github.com/stwalsh4118/hunt/internal/repository"
)

const testHeader = "date,final_report,injury,county,fatal,si_sp,circumstances," +
	"shooter_age,shooter_gender,victim_age,victim_gender,firearm_type"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func csvFile(t *testing.T, rows ...string) string {
	t.Helper()
	return writeFile(t, "accidents.csv", strings.Join(append([]string{testHeader}, rows...), "\n")+"\n")
}

func newTestImporter(t *testing.T) (*Importer, *repository.MemoryAccidentRepository, *Metrics) {
	t.Helper()
	repo := repository.NewMemoryAccidentRepository()
	metrics := NewMetrics(prometheus.NewRegistry())
	return New(repo, logger.Nop(), metrics), repo, metrics
}

func all(t *testing.T, repo repository.AccidentRepository) []models.Accident {
	t.Helper()
	got, err := repo.FindAll(context.Background(), models.NewQuery())
	require.NoError(t, err)
	return got
}

func TestImport_Fixture(t *testing.T) {
	im, repo, _ := newTestImporter(t)

	n, err := im.Import(context.Background(), filepath.Join("testdata", "accidents.csv"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got := all(t, repo)
	require.Len(t, got, 3)

	first := got[0]
	assert.Equal(t, "2001-11-20", first.DateString())
	assert.Equal(t, 2001, first.Year())
	assert.True(t, first.FinalReport, "YES is case-insensitive")
	assert.False(t, first.Fatal)
	assert.True(t, first.IsSelfInflicted())
	require.NotNil(t, first.VictimAge)
	assert.Equal(t, "34", *first.VictimAge, "victim age copied from shooter")
	require.NotNil(t, first.VictimGender)
	assert.Equal(t, "M", *first.VictimGender, "victim gender copied from shooter")
	assert.Equal(t, "Shotgun", *first.Weapon)

	second := got[1]
	assert.Equal(t, "1999-11-18", second.DateString())
	assert.True(t, second.Fatal)
	assert.False(t, second.FinalReport)
	assert.True(t, second.IsSameParty())
	assert.Equal(t, "22", *second.VictimAge)
	assert.Equal(t, "F", *second.VictimGender)

	third := got[2]
	assert.Equal(t, "XX", third.PartyRelationCode(), "unknown codes are kept verbatim")
	assert.False(t, third.IsSelfInflicted())
	assert.False(t, third.IsSameParty())
	assert.Nil(t, third.Injury, "empty cells are NULL")
	assert.Nil(t, third.Weapon)
	assert.Nil(t, third.VictimAge)
}

func TestImport_AmbiguousDateIsMonthFirst(t *testing.T) {
	im, repo, _ := newTestImporter(t)

	n, err := im.Import(context.Background(), csvFile(t, "3/4/2010,Yes,Arm,Iron,No,SI,Slipped,34,M,Same,,Rifle"))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got := all(t, repo)
	require.Len(t, got, 1)
	a := got[0]
	assert.Equal(t, "2010-03-04", a.DateString())
	assert.Equal(t, 2010, a.Year())
	assert.True(t, a.FinalReport)
	assert.False(t, a.Fatal)
	assert.True(t, a.IsSelfInflicted())
	require.NotNil(t, a.VictimAge)
	assert.Equal(t, "34", *a.VictimAge)
	require.NotNil(t, a.VictimGender)
	assert.Equal(t, "M", *a.VictimGender)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "3/4/2010", want: "2010-03-04"},
		{in: "11/20/2001", want: "2001-11-20"},
		{in: "10/01/2005", want: "2005-10-01"},
		{in: "2003-09-30", want: "2003-09-30"},
		{in: "March 4, 2010", want: "2010-03-04"},
		{in: "1700000000", wantErr: true},
		{in: "2010", wantErr: true},
		{in: "soon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(models.DateLayout))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestImport_FatalOnlyView(t *testing.T) {
	im, repo, _ := newTestImporter(t)
	path := csvFile(t,
		"11/20/2001,no,,Sauk,no,SI,,30,M,30,M,Rifle",
		"11/21/2001,no,,Sauk,yes,SP,,40,F,41,M,Rifle",
	)

	_, err := im.Import(context.Background(), path)
	require.NoError(t, err)

	fatal, err := repo.FindAll(context.Background(), models.NewQuery(models.Fatal()))
	require.NoError(t, err)
	require.Len(t, fatal, 1)
	assert.Equal(t, "2001-11-21", fatal[0].DateString())
}

func TestImport_IsIdempotent(t *testing.T) {
	im, repo, metrics := newTestImporter(t)
	path := filepath.Join("testdata", "accidents.csv")

	_, err := im.Import(context.Background(), path)
	require.NoError(t, err)
	firstRun := all(t, repo)

	n, err := im.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	secondRun := all(t, repo)

	require.Len(t, secondRun, len(firstRun))
	for i := range firstRun {
		firstRun[i].ID, secondRun[i].ID = 0, 0
	}
	assert.Equal(t, firstRun, secondRun)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ImportsTotal.WithLabelValues(statusSuccess)))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.RowsTotal))
}

func TestImport_HeaderNormalization(t *testing.T) {
	im, repo, _ := newTestImporter(t)
	header := "\ufeff Date ,FINAL_REPORT,Injury,County,Fatal,SI_SP,Circumstances," +
		"Shooter_Age,Shooter_Gender,Victim_Age,Victim_Gender,Firearm_Type,extra"
	path := writeFile(t, "upper.csv", header+"\n11/20/2001,yes,,Sauk,no,SI,,30,M,SAME,,Rifle,ignored\n")

	n, err := im.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got := all(t, repo)
	assert.Equal(t, "30", *got[0].VictimAge, "SAME is case-insensitive")
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       func(t *testing.T) string
		wantErr    error
		wantLine   int
		wantColumn string
	}{
		{
			name:    "file does not exist",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.csv") },
			wantErr: os.ErrNotExist,
		},
		{
			name: "missing column",
			path: func(t *testing.T) string {
				return writeFile(t, "a.csv", strings.Replace(testHeader, ",firearm_type", "", 1)+"\n")
			},
			wantErr:    ErrMissingColumn,
			wantLine:   1,
			wantColumn: "firearm_type",
		},
		{
			name:       "empty file",
			path:       func(t *testing.T) string { return writeFile(t, "empty.csv", "") },
			wantErr:    ErrMissingColumn,
			wantColumn: "date",
		},
		{
			name:       "unparsable date",
			path:       func(t *testing.T) string { return csvFile(t, "11/20/2001,no,,,no,,,,,,,", "not-a-date,no,,,no,,,,,,,") },
			wantErr:    ErrInvalidDate,
			wantLine:   3,
			wantColumn: "date",
		},
		{
			name:       "empty date",
			path:       func(t *testing.T) string { return csvFile(t, ",no,,,no,,,,,,,") },
			wantErr:    ErrInvalidDate,
			wantLine:   2,
			wantColumn: "date",
		},
		{
			name:       "unix seconds",
			path:       func(t *testing.T) string { return csvFile(t, "1700000000,no,,,no,,,,,,,") },
			wantErr:    ErrInvalidDate,
			wantLine:   2,
			wantColumn: "date",
		},
		{
			name:       "bare year",
			path:       func(t *testing.T) string { return csvFile(t, "2010,no,,,no,,,,,,,") },
			wantErr:    ErrInvalidDate,
			wantLine:   2,
			wantColumn: "date",
		},
		{
			name:     "short row",
			path:     func(t *testing.T) string { return csvFile(t, "11/20/2001,no,,,no") },
			wantErr:  ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:     "bad quoting",
			path:     func(t *testing.T) string { return csvFile(t, `11/20/2001,no,"unterminated,,no,,,,,,,`) },
			wantErr:  ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:    "legacy workbook",
			path:    func(t *testing.T) string { return writeFile(t, "old.xls", "binary") },
			wantErr: ErrUnsupportedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im, repo, metrics := newTestImporter(t)

			n, err := im.Import(context.Background(), tt.path(t))
			require.Error(t, err)
			assert.Zero(t, n)
			assert.ErrorIs(t, err, tt.wantErr)

			var importErr *ImportError
			require.True(t, errors.As(err, &importErr), "expected *ImportError, got %T", err)
			assert.Equal(t, tt.wantLine, importErr.Line)
			assert.Equal(t, tt.wantColumn, importErr.Column)

			assert.Empty(t, all(t, repo))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ImportsTotal.WithLabelValues(statusFailed)))
		})
	}
}

func TestImport_BadRowKeepsPreviousContents(t *testing.T) {
	im, repo, _ := newTestImporter(t)

	_, err := im.Import(context.Background(), filepath.Join("testdata", "accidents.csv"))
	require.NoError(t, err)

	_, err = im.Import(context.Background(), csvFile(t, "not-a-date,no,,,no,,,,,,,"))
	require.ErrorIs(t, err, ErrInvalidDate)

	assert.Len(t, all(t, repo), 3)
}

type failingRepo struct {
	repository.AccidentRepository
}

func (failingRepo) ReplaceAll(context.Context, []models.Accident) (int, error) {
	return 0, errors.New("database is locked")
}

func TestImport_StoreError(t *testing.T) {
	im := New(failingRepo{}, logger.Nop(), nil)

	_, err := im.Import(context.Background(), filepath.Join("testdata", "accidents.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")

	var importErr *ImportError
	assert.False(t, errors.As(err, &importErr))
}

func TestImport_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accidents.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		toRow(strings.Split(testHeader, ",")),
		{"11/20/2001", "yes", "Arm", "Sauk", "yes", "SP", "Crossing fence", "51", "M", "same"},
		{},
		{"12/02/1998", "no", "", "Iron", "no", "SI", "", "17", "F", "17", "F", "Muzzleloader"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	im, repo, _ := newTestImporter(t)
	n, err := im.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := all(t, repo)
	require.Len(t, got, 2)
	assert.Equal(t, "2001-11-20", got[0].DateString())
	assert.True(t, got[0].Fatal)
	assert.Equal(t, "51", *got[0].VictimAge)
	assert.Equal(t, "M", *got[0].VictimGender)
	assert.Nil(t, got[0].Weapon, "trailing cells missing from the sheet are NULL")
	assert.Equal(t, "1998-12-02", got[1].DateString())
	assert.Equal(t, "Muzzleloader", *got[1].Weapon)
}

func TestImport_WorkbookBadDateReportsSheetRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accidents.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := toRow(strings.Split(testHeader, ","))
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"sometime", "no"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	im, _, _ := newTestImporter(t)
	_, err := im.Import(context.Background(), path)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, 2, importErr.Line)
}

func TestParse_DoesNotTouchStore(t *testing.T) {
	im, repo, _ := newTestImporter(t)

	accidents, err := im.Parse(filepath.Join("testdata", "accidents.csv"))
	require.NoError(t, err)
	assert.Len(t, accidents, 3)
	assert.Empty(t, all(t, repo))
}

func TestImportError_Message(t *testing.T) {
	err := &ImportError{Path: "setup/squirrel.csv", Line: 7, Column: "date", Err: ErrInvalidDate}
	assert.Equal(t, `import setup/squirrel.csv:7: column "date": invalid date`, err.Error())

	err = &ImportError{Path: "x.csv", Err: ErrMissingColumn}
	assert.Equal(t, "import x.csv: missing required column", err.Error())
}

func toRow(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
