package services

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"case-management-api/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// maxReportedRowErrors caps the per-row error list returned to the client.
const maxReportedRowErrors = 10

var jamiatSheetHeaders = []string{"jamiat_code", "jamiat_name", "jamaat_code", "jamaat_name"}

// JamiatImportResult summarizes a workbook import.
type JamiatImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	SuccessCount   int      `json:"success_count"`
	FailedCount    int      `json:"failed_count"`
	Errors         []string `json:"errors,omitempty"`
}

func (r *JamiatImportResult) addError(row int, err error) {
	r.FailedCount++
	if len(r.Errors) < maxReportedRowErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("row %d: %v", row, err))
	}
}

// ImportJamiatWorkbook upserts jamiat/jamaat rows from an Excel workbook.
// A bad row is recorded and skipped; the rest of the batch continues.
func ImportJamiatWorkbook(db *gorm.DB, r io.Reader) (*JamiatImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range jamiatSheetHeaders {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	result := &JamiatImportResult{}
	for i, row := range rows[1:] {
		rowNumber := i + 2 // 1-based, after the header
		result.TotalProcessed++

		if err := importJamiatRow(db, row, columns); err != nil {
			result.addError(rowNumber, err)
			continue
		}
		result.SuccessCount++
	}

	return result, nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func importJamiatRow(db *gorm.DB, row []string, columns map[string]int) error {
	jamiatCodeRaw := cellAt(row, columns["jamiat_code"])
	jamiatName := cellAt(row, columns["jamiat_name"])
	jamaatCodeRaw := cellAt(row, columns["jamaat_code"])
	jamaatName := cellAt(row, columns["jamaat_name"])

	jamiatCode, err := strconv.Atoi(jamiatCodeRaw)
	if err != nil {
		return fmt.Errorf("invalid jamiat_code %q", jamiatCodeRaw)
	}
	if jamiatName == "" {
		return fmt.Errorf("jamiat_name is required")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var jamiat models.Jamiat
		err := tx.Where("external_code = ?", jamiatCode).First(&jamiat).Error
		switch {
		case err == nil:
			if jamiat.JamiatName != jamiatName {
				if err := tx.Model(&jamiat).Updates(map[string]interface{}{
					"jamiat_name": jamiatName,
					"update_at":   now,
				}).Error; err != nil {
					return err
				}
			}
		case err == gorm.ErrRecordNotFound:
			jamiat = models.Jamiat{
				ExternalCode: jamiatCode,
				JamiatName:   jamiatName,
				CreateAt:     &now,
				UpdateAt:     &now,
			}
			if err := tx.Create(&jamiat).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// Jamiat-only rows are legal; a jamaat needs both code and name.
		if jamaatCodeRaw == "" && jamaatName == "" {
			return nil
		}

		jamaatCode, err := strconv.Atoi(jamaatCodeRaw)
		if err != nil {
			return fmt.Errorf("invalid jamaat_code %q", jamaatCodeRaw)
		}
		if jamaatName == "" {
			return fmt.Errorf("jamaat_name is required")
		}

		var jamaat models.Jamaat
		err = tx.Where("external_code = ? AND jamiat_id = ?", jamaatCode, jamiat.JamiatID).First(&jamaat).Error
		switch {
		case err == nil:
			if jamaat.JamaatName != jamaatName {
				return tx.Model(&jamaat).Updates(map[string]interface{}{
					"jamaat_name": jamaatName,
					"update_at":   now,
				}).Error
			}
			return nil
		case err == gorm.ErrRecordNotFound:
			jamaat = models.Jamaat{
				JamiatID:     jamiat.JamiatID,
				ExternalCode: jamaatCode,
				JamaatName:   jamaatName,
				CreateAt:     &now,
				UpdateAt:     &now,
			}
			return tx.Create(&jamaat).Error
		default:
			return err
		}
	})
}

// ExportJamiatWorkbook writes the jamiat/jamaat catalog to an Excel workbook
// whose layout matches what ImportJamiatWorkbook accepts, so an export can be
// re-imported unchanged.
func ExportJamiatWorkbook(db *gorm.DB) (*bytes.Buffer, error) {
	var jamiats []models.Jamiat
	if err := db.Order("external_code ASC").Find(&jamiats).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, header := range jamiatSheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	rowNumber := 2
	writeRow := func(jamiatCode int, jamiatName, jamaatCode, jamaatName string) {
		values := []interface{}{jamiatCode, jamiatName, jamaatCode, jamaatName}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNumber)
			f.SetCellValue(sheet, cell, v)
		}
		rowNumber++
	}

	for _, jamiat := range jamiats {
		var jamaats []models.Jamaat
		if err := db.Where("jamiat_id = ?", jamiat.JamiatID).
			Order("external_code ASC").
			Find(&jamaats).Error; err != nil {
			return nil, err
		}

		if len(jamaats) == 0 {
			writeRow(jamiat.ExternalCode, jamiat.JamiatName, "", "")
			continue
		}
		for _, jamaat := range jamaats {
			writeRow(jamiat.ExternalCode, jamiat.JamiatName, strconv.Itoa(jamaat.ExternalCode), jamaat.JamaatName)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
