package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"case-management-api/config"
	"case-management-api/models"
	"case-management-api/services"

	"github.com/gin-gonic/gin"
)

var (
	gatewayOnce sync.Once
	gateway     *services.ITSGateway
)

// itsGateway returns the process-wide gateway so the rate-limit window is
// shared across requests.
func itsGateway() *services.ITSGateway {
	gatewayOnce.Do(func() {
		gateway = services.NewITSGateway(
			config.DB,
			nil,
			os.Getenv("ITS_API_URL"),
			os.Getenv("ITS_PHOTO_API_URL"),
			os.Getenv("ITS_API_TOKEN"),
		)
	})
	return gateway
}

type CreateApplicantBody struct {
	ITSNumber string  `json:"its_number" binding:"required"`
	FullName  string  `json:"full_name"`
	Phone     *string `json:"phone"`
	Gender    *string `json:"gender"`
	JamiatID  *int    `json:"jamiat_id"`
	JamaatID  *int    `json:"jamaat_id"`
}

func CreateApplicant(c *gin.Context) {
	var body CreateApplicantBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !services.ValidateITSNumber(body.ITSNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ITS number must be 8 digits"})
		return
	}

	var existing models.Applicant
	if err := config.DB.Where("its_number = ? AND delete_at IS NULL", body.ITSNumber).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An applicant with this ITS number already exists"})
		return
	}

	now := time.Now()
	applicant := models.Applicant{
		ITSNumber:      body.ITSNumber,
		FullName:       body.FullName,
		Phone:          body.Phone,
		Gender:         body.Gender,
		JamiatID:       body.JamiatID,
		JamaatID:       body.JamaatID,
		APIFetchStatus: models.ApplicantFetchPending,
		CreateAt:       &now,
		UpdateAt:       &now,
	}
	if err := config.DB.Create(&applicant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create applicant"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Applicant created successfully", "applicant": applicant})
}

func GetApplicants(c *gin.Context) {
	page, limit := parsePage(c)

	query := config.DB.Model(&models.Applicant{}).Where("delete_at IS NULL")
	if its := strings.TrimSpace(c.Query("its_number")); its != "" {
		query = query.Where("its_number = ?", its)
	}
	if jamiat := c.Query("jamiat_id"); jamiat != "" {
		query = query.Where("jamiat_id = ?", jamiat)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count applicants"})
		return
	}

	var applicants []models.Applicant
	if err := query.Order("applicant_id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&applicants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load applicants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applicants": applicants, "total": total, "page": page, "limit": limit})
}

func GetApplicant(c *gin.Context) {
	applicantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var applicant models.Applicant
	if err := config.DB.Where("applicant_id = ? AND delete_at IS NULL", applicantID).First(&applicant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Applicant not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applicant": applicant})
}

// DeleteApplicant removes an applicant; blocked while any case references it.
func DeleteApplicant(c *gin.Context) {
	applicantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var applicant models.Applicant
	if err := config.DB.Where("applicant_id = ? AND delete_at IS NULL", applicantID).First(&applicant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Applicant not found"})
		return
	}

	var caseCount int64
	if err := config.DB.Model(&models.Case{}).
		Where("applicant_id = ? AND delete_at IS NULL", applicantID).
		Count(&caseCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check cases"})
		return
	}
	if caseCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Applicant has cases and cannot be deleted"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&applicant).Update("delete_at", now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete applicant"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Applicant deleted successfully"})
}

// RefreshApplicant re-fetches demographics and photo from the ITS directory.
func RefreshApplicant(c *gin.Context) {
	applicantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var applicant models.Applicant
	if err := config.DB.Where("applicant_id = ? AND delete_at IS NULL", applicantID).First(&applicant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Applicant not found"})
		return
	}
	if applicant.APIFetchStatus == models.ApplicantFetchNotFound {
		c.JSON(http.StatusConflict, gin.H{"error": "Applicant is marked not found in the ITS directory"})
		return
	}

	if err := refreshFromITS(c, &applicant); err != nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Applicant refreshed successfully", "applicant": applicant})
}

// refreshFromITS performs the fetch and persists the mapped fields. On error
// it writes the HTTP response and returns a non-nil error.
func refreshFromITS(c *gin.Context, applicant *models.Applicant) error {
	data, err := itsGateway().FetchApplicant(c.Request.Context(), applicant.ITSNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrITSNotFound):
			// Permanent: flag the record so the number is not retried.
			config.DB.Model(applicant).Update("api_fetch_status", models.ApplicantFetchNotFound)
			c.JSON(http.StatusNotFound, gin.H{"error": "ITS record not found"})
		case errors.Is(err, services.ErrITSUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ITS directory is temporarily unavailable"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return err
	}

	updates := map[string]interface{}{
		"api_fetch_status": models.ApplicantFetchFetched,
		"update_at":        time.Now(),
	}
	if data.FullName != "" {
		updates["full_name"] = data.FullName
	}
	if data.Phone != nil {
		updates["phone"] = *data.Phone
	}
	if data.Gender != nil {
		updates["gender"] = *data.Gender
	}
	if data.JamiatID != nil {
		updates["jamiat_id"] = *data.JamiatID
	}
	if data.JamaatID != nil {
		updates["jamaat_id"] = *data.JamaatID
	}
	if len(data.Photo) > 0 {
		if photoPath, err := savePhoto(applicant.ITSNumber, data.Photo); err == nil {
			updates["photo_path"] = photoPath
		}
	}

	if err := config.DB.Model(applicant).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save applicant data"})
		return err
	}

	return config.DB.Where("applicant_id = ?", applicant.ApplicantID).First(applicant).Error
}

func savePhoto(itsNumber string, photo []byte) (string, error) {
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	relative := filepath.Join("applicants", itsNumber+".jpg")
	full := filepath.Join(uploadPath, relative)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, photo, 0o644); err != nil {
		return "", err
	}
	return relative, nil
}

type BulkFetchBody struct {
	ITSNumbers []string `json:"its_numbers" binding:"required,min=1"`
}

// BulkFetchApplicants fetches a batch of ITS numbers, continuing past
// per-row failures. At most 10 row errors are reported back.
func BulkFetchApplicants(c *gin.Context) {
	var body BulkFetchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	const maxReportedErrors = 10
	fetched := 0
	var rowErrors []string

	for _, its := range body.ITSNumbers {
		its = strings.TrimSpace(its)
		if !services.ValidateITSNumber(its) {
			if len(rowErrors) < maxReportedErrors {
				rowErrors = append(rowErrors, fmt.Sprintf("%s: invalid ITS number", its))
			}
			continue
		}

		data, err := itsGateway().FetchApplicant(c.Request.Context(), its)
		if err != nil {
			if errors.Is(err, services.ErrITSNotFound) {
				config.DB.Model(&models.Applicant{}).
					Where("its_number = ?", its).
					Update("api_fetch_status", models.ApplicantFetchNotFound)
			}
			if len(rowErrors) < maxReportedErrors {
				rowErrors = append(rowErrors, fmt.Sprintf("%s: %v", its, err))
			}
			continue
		}

		if err := upsertFetchedApplicant(its, data); err != nil {
			if len(rowErrors) < maxReportedErrors {
				rowErrors = append(rowErrors, fmt.Sprintf("%s: %v", its, err))
			}
			continue
		}
		fetched++
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bulk fetch completed",
		"fetched": fetched,
		"failed":  len(body.ITSNumbers) - fetched,
		"errors":  rowErrors,
	})
}

func upsertFetchedApplicant(its string, data *services.ApplicantData) error {
	now := time.Now()

	var applicant models.Applicant
	err := config.DB.Where("its_number = ? AND delete_at IS NULL", its).First(&applicant).Error
	if err != nil {
		applicant = models.Applicant{
			ITSNumber:      its,
			FullName:       data.FullName,
			Phone:          data.Phone,
			Gender:         data.Gender,
			JamiatID:       data.JamiatID,
			JamaatID:       data.JamaatID,
			APIFetchStatus: models.ApplicantFetchFetched,
			CreateAt:       &now,
			UpdateAt:       &now,
		}
		return config.DB.Create(&applicant).Error
	}

	updates := map[string]interface{}{
		"api_fetch_status": models.ApplicantFetchFetched,
		"update_at":        now,
	}
	if data.FullName != "" {
		updates["full_name"] = data.FullName
	}
	if data.Phone != nil {
		updates["phone"] = *data.Phone
	}
	if data.Gender != nil {
		updates["gender"] = *data.Gender
	}
	if data.JamiatID != nil {
		updates["jamiat_id"] = *data.JamiatID
	}
	if data.JamaatID != nil {
		updates["jamaat_id"] = *data.JamaatID
	}
	return config.DB.Model(&applicant).Updates(updates).Error
}
