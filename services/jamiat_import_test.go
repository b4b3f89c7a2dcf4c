package services

import (
	"bytes"
	"fmt"
	"testing"

	"case-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, headers []string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportJamiatWorkbook(t *testing.T) {
	db := setupTestDB(t)
	buf := buildWorkbook(t, jamiatSheetHeaders, [][]interface{}{
		{101, "Mumbai", 1, "Saifee Mahal"},
		{101, "Mumbai", 2, "Bhendi Bazaar"},
		{102, "Pune", "", ""}, // jamiat-only row
	})

	result, err := ImportJamiatWorkbook(db, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Empty(t, result.Errors)

	var jamiatCount, jamaatCount int64
	require.NoError(t, db.Model(&models.Jamiat{}).Count(&jamiatCount).Error)
	require.NoError(t, db.Model(&models.Jamaat{}).Count(&jamaatCount).Error)
	assert.Equal(t, int64(2), jamiatCount)
	assert.Equal(t, int64(2), jamaatCount)

	var jamaat models.Jamaat
	require.NoError(t, db.Where("external_code = ?", 2).First(&jamaat).Error)
	assert.Equal(t, "Bhendi Bazaar", jamaat.JamaatName)
}

func TestImportJamiatWorkbookIsUpsert(t *testing.T) {
	db := setupTestDB(t)

	first := buildWorkbook(t, jamiatSheetHeaders, [][]interface{}{
		{101, "Mumbai", 1, "Old Name"},
	})
	_, err := ImportJamiatWorkbook(db, first)
	require.NoError(t, err)

	second := buildWorkbook(t, jamiatSheetHeaders, [][]interface{}{
		{101, "Mumbai Renamed", 1, "New Name"},
	})
	result, err := ImportJamiatWorkbook(db, second)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)

	var jamiatCount, jamaatCount int64
	require.NoError(t, db.Model(&models.Jamiat{}).Count(&jamiatCount).Error)
	require.NoError(t, db.Model(&models.Jamaat{}).Count(&jamaatCount).Error)
	assert.Equal(t, int64(1), jamiatCount)
	assert.Equal(t, int64(1), jamaatCount)

	var jamiat models.Jamiat
	require.NoError(t, db.Where("external_code = ?", 101).First(&jamiat).Error)
	assert.Equal(t, "Mumbai Renamed", jamiat.JamiatName)

	var jamaat models.Jamaat
	require.NoError(t, db.Where("external_code = ? AND jamiat_id = ?", 1, jamiat.JamiatID).First(&jamaat).Error)
	assert.Equal(t, "New Name", jamaat.JamaatName)
}

func TestImportJamiatWorkbookContinuesPastBadRows(t *testing.T) {
	db := setupTestDB(t)
	buf := buildWorkbook(t, jamiatSheetHeaders, [][]interface{}{
		{"not-a-number", "Broken", "", ""},
		{101, "", 1, "No Jamiat Name"},
		{102, "Pune", "bad-code", "Kondhwa"},
		{103, "Nagpur", 1, ""},
		{104, "Indore", 7, "Valid Jamaat"},
	})

	result, err := ImportJamiatWorkbook(db, buf)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 4, result.FailedCount)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "row 2")

	var jamiatCount int64
	require.NoError(t, db.Model(&models.Jamiat{}).Count(&jamiatCount).Error)
	assert.Equal(t, int64(1), jamiatCount)
}

func TestImportJamiatWorkbookCapsReportedErrors(t *testing.T) {
	db := setupTestDB(t)
	rows := make([][]interface{}, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, []interface{}{fmt.Sprintf("bad-%d", i), "x", "", ""})
	}
	buf := buildWorkbook(t, jamiatSheetHeaders, rows)

	result, err := ImportJamiatWorkbook(db, buf)
	require.NoError(t, err)
	assert.Equal(t, 15, result.FailedCount)
	assert.Len(t, result.Errors, maxReportedRowErrors)
}

func TestImportJamiatWorkbookRejectsMissingColumns(t *testing.T) {
	db := setupTestDB(t)
	buf := buildWorkbook(t, []string{"jamiat_code", "jamiat_name"}, [][]interface{}{
		{101, "Mumbai"},
	})

	_, err := ImportJamiatWorkbook(db, buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jamaat_code")
}

func TestExportJamiatWorkbookRoundTrips(t *testing.T) {
	source := setupTestDB(t)
	seed := buildWorkbook(t, jamiatSheetHeaders, [][]interface{}{
		{101, "Mumbai", 1, "Saifee Mahal"},
		{101, "Mumbai", 2, "Bhendi Bazaar"},
		{102, "Pune", "", ""},
	})
	_, err := ImportJamiatWorkbook(source, seed)
	require.NoError(t, err)

	exported, err := ExportJamiatWorkbook(source)
	require.NoError(t, err)

	target := setupTestDB(t)
	result, err := ImportJamiatWorkbook(target, bytes.NewReader(exported.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, result.TotalProcessed, result.SuccessCount)

	type catalogRow struct {
		JamiatCode int    `gorm:"column:jamiat_code"`
		JamiatName string `gorm:"column:jamiat_name"`
		JamaatCode int    `gorm:"column:jamaat_code"`
		JamaatName string `gorm:"column:jamaat_name"`
	}
	var sourceRows, targetRows []catalogRow
	query := `SELECT j.external_code AS jamiat_code, j.jamiat_name, COALESCE(ja.external_code, 0) AS jamaat_code, COALESCE(ja.jamaat_name, '') AS jamaat_name
FROM jamiats j LEFT JOIN jamaats ja ON ja.jamiat_id = j.jamiat_id
ORDER BY j.external_code, jamaat_code`
	require.NoError(t, source.Raw(query).Scan(&sourceRows).Error)
	require.NoError(t, target.Raw(query).Scan(&targetRows).Error)
	assert.Equal(t, sourceRows, targetRows)
	assert.Len(t, targetRows, 3)
}
