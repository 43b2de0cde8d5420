// Package roster reads student rosters from Excel workbooks.
package roster

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spcet/lostfound/internal/model"
)

// Column headers, matched case-insensitively.
const (
	ColRollNumber  = "roll number"
	ColFullName    = "full name"
	ColDepartment  = "department"
	ColYear        = "year"
	ColDOB         = "dob"
	ColEmail       = "email"
	ColPhoneNumber = "phone number"
)

var required = []string{ColRollNumber, ColFullName, ColDOB}

// ErrNoRows is returned for a workbook without data rows.
var ErrNoRows = errors.New("roster has no student rows")

// Result is a parsed roster. Skipped lists rows that could not be used.
type Result struct {
	Students []model.Student
	Skipped  []string
}

// Parse reads the first sheet of an .xlsx workbook. The first row must be
// the header.
func Parse(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	res := &Result{}
	for n, row := range rows[1:] {
		line := n + 2
		s := model.Student{
			RollNumber:  strings.ToUpper(cell(row, ColRollNumber)),
			FullName:    cell(row, ColFullName),
			Department:  cell(row, ColDepartment),
			Year:        cell(row, ColYear),
			Email:       cell(row, ColEmail),
			PhoneNumber: cell(row, ColPhoneNumber),
		}
		rawDOB := cell(row, ColDOB)
		if s.RollNumber == "" && s.FullName == "" && rawDOB == "" {
			continue
		}
		if s.RollNumber == "" || s.FullName == "" || rawDOB == "" {
			res.Skipped = append(res.Skipped, fmt.Sprintf("row %d: roll number, full name and DOB are required", line))
			continue
		}

		dob, err := NormalizeDOB(rawDOB)
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		s.DOB = dob
		res.Students = append(res.Students, s)
	}

	if len(res.Students) == 0 && len(res.Skipped) == 0 {
		return nil, ErrNoRows
	}
	return res, nil
}

var dobLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2/1/2006", "2006/01/02"}

// NormalizeDOB converts a date of birth cell to YYYY-MM-DD. It accepts
// YYYY-MM-DD, DD-MM-YYYY, DD/MM/YYYY and Excel serial dates.
func NormalizeDOB(v string) (string, error) {
	v = strings.TrimSpace(v)
	// Timestamps such as "2003-04-12 00:00:00".
	if i := strings.IndexByte(v, ' '); i > 0 {
		v = v[:i]
	}

	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date of birth %q", v)
}
