package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// rowSource yields header-first rows together with their source line.
type rowSource interface {
	// Next returns the next row, or io.EOF after the last one.
	Next() (row []string, line int, err error)
	Close() error
}

// openSource picks a reader from the file extension. Anything that is not a
// workbook is read as CSV.
func openSource(path string) (rowSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openWorkbook(path)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not readable, save as .xlsx or .csv", ErrUnsupportedFile)
	default:
		return openCSV(path)
	}
}

type csvSource struct {
	f *os.File
	r *csv.Reader
}

func openCSV(path string) (*csvSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	// FieldsPerRecord stays 0 so every row must be as wide as the header.
	r := csv.NewReader(f)

	return &csvSource{f: f, r: r}, nil
}

// Next relies on encoding/csv skipping empty lines.
func (s *csvSource) Next() ([]string, int, error) {
	rec, err := s.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, parseErr.StartLine, fmt.Errorf("%w: %v", ErrMalformedRow, parseErr.Err)
		}
		return nil, 0, err
	}

	line, _ := s.r.FieldPos(0)
	return rec, line, nil
}

func (s *csvSource) Close() error {
	return s.f.Close()
}

// workbookSource reads the first sheet of an .xlsx file. Rows with no
// values are skipped, matching how empty CSV lines are treated.
type workbookSource struct {
	f    *excelize.File
	rows *excelize.Rows
	line int
}

func openWorkbook(path string) (*workbookSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}

	sheet := f.GetSheetName(0)
	if sheet == "" {
		f.Close()
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedRow)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return &workbookSource{f: f, rows: rows}, nil
}

func (s *workbookSource) Next() ([]string, int, error) {
	for s.rows.Next() {
		s.line++
		row, err := s.rows.Columns()
		if err != nil {
			return nil, s.line, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		if isBlank(row) {
			continue
		}
		return row, s.line, nil
	}
	if err := s.rows.Error(); err != nil {
		return nil, s.line, err
	}
	return nil, 0, io.EOF
}

func (s *workbookSource) Close() error {
	if err := s.rows.Close(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
