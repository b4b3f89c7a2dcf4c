package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"case-management-api/config"
	"case-management-api/models"
	"case-management-api/services"

	"github.com/gin-gonic/gin"
)

func GetJamiats(c *gin.Context) {
	var jamiats []models.Jamiat
	if err := config.DB.Order("external_code ASC").Find(&jamiats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load jamiats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jamiats": jamiats})
}

func GetJamaats(c *gin.Context) {
	query := config.DB.Model(&models.Jamaat{})
	if jamiat := c.Query("jamiat_id"); jamiat != "" {
		query = query.Where("jamiat_id = ?", jamiat)
	}

	var jamaats []models.Jamaat
	if err := query.Order("external_code ASC").Find(&jamaats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load jamaats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jamaats": jamaats})
}

// ImportJamiats ingests an .xlsx catalog upload. Row failures are collected
// (capped) instead of aborting the batch.
func ImportJamiats(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type, use .xlsx or .xls"})
		return
	}

	result, err := services.ImportJamiatWorkbook(config.DB, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Import completed", "result": result})
}

// ExportJamiats streams the catalog as an .xlsx workbook in the same layout
// the importer accepts.
func ExportJamiats(c *gin.Context) {
	buf, err := services.ExportJamiatWorkbook(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export catalog"})
		return
	}

	filename := fmt.Sprintf("jamiat-catalog-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
