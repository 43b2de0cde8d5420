package roster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Full Name", "ROLL NUMBER", "Department", "Year", "DOB", "Email", "Phone Number"},
		{"Asha Rao", "21cs001", "CSE", "3", "2003-04-12", "asha@example.edu", "9876543210"},
		{"Bala K", "21CS002", "CSE", "3", "05/11/2003", "", ""},
		{"", "", "", "", "", "", ""},
		{"No Roll", "", "ECE", "2", "2004-01-01", "", ""},
		{"Bad Date", "21CS003", "CSE", "3", "sometime", "", ""},
		{"Serial Date", "21CS004", "MECH", "1", 37723, "", ""},
	})

	res, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, res.Students, 3)

	asha := res.Students[0]
	assert.Equal(t, "21CS001", asha.RollNumber)
	assert.Equal(t, "Asha Rao", asha.FullName)
	assert.Equal(t, "2003-04-12", asha.DOB)
	assert.Equal(t, "asha@example.edu", asha.Email)

	assert.Equal(t, "2003-11-05", res.Students[1].DOB)
	assert.Equal(t, "2003-04-12", res.Students[2].DOB)

	require.Len(t, res.Skipped, 2)
	assert.Contains(t, res.Skipped[0], "row 5")
	assert.Contains(t, res.Skipped[1], "row 6")
}

func TestParseMissingColumn(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Roll Number", "Full Name"},
		{"21CS001", "Asha"},
	})
	_, err := Parse(buf)
	assert.ErrorContains(t, err, "dob")
}

func TestParseEmpty(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Roll Number", "Full Name", "DOB"},
	})
	_, err := Parse(buf)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestParseNotAWorkbook(t *testing.T) {
	_, err := Parse(bytes.NewBufferString("roll,name,dob\n"))
	assert.Error(t, err)
}

func TestNormalizeDOB(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2003-04-12", "2003-04-12"},
		{"12-04-2003", "2003-04-12"},
		{"12/04/2003", "2003-04-12"},
		{"2003-04-12 00:00:00", "2003-04-12"},
		{"37723", "2003-04-12"},
	}
	for _, tt := range tests {
		got, err := NormalizeDOB(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := NormalizeDOB("12th April")
	assert.Error(t, err)
}
