package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"case-management-api/config"
	"case-management-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxImageSize    = 5 * 1024 * 1024
	maxPDFSize      = 10 * 1024 * 1024
	maxDocumentSize = 5 * 1024 * 1024
)

func uploadRoot() string {
	if path := os.Getenv("UPLOAD_PATH"); path != "" {
		return path
	}
	return "./uploads"
}

// maxSizeFor returns the per-type upload cap; MAX_FILE_SIZE (bytes) lowers
// all caps when set.
func maxSizeFor(mimeType string) int64 {
	var limit int64
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		limit = maxImageSize
	case mimeType == "application/pdf":
		limit = maxPDFSize
	default:
		limit = maxDocumentSize
	}
	if env := os.Getenv("MAX_FILE_SIZE"); env != "" {
		if override, err := strconv.ParseInt(env, 10, 64); err == nil && override > 0 && override < limit {
			limit = override
		}
	}
	return limit
}

// UploadAttachment stores a file under the case's per-stage directory and
// records the relative path.
func UploadAttachment(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	var kase models.Case
	if err := config.DB.Where("case_id = ? AND delete_at IS NULL", caseID).First(&kase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	file.Close()

	mimeType := header.Header.Get("Content-Type")
	if limit := maxSizeFor(mimeType); header.Size > limit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("File exceeds the %dMB limit for its type", limit/(1024*1024)),
		})
		return
	}

	var stageID *int
	if raw := c.PostForm("stage_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage_id"})
			return
		}
		stageID = &parsed
	} else if kase.CurrentWorkflowStageID != nil {
		stageID = kase.CurrentWorkflowStageID
	}

	stageDir := "stage_0"
	if stageID != nil {
		stageDir = fmt.Sprintf("stage_%d", *stageID)
	}
	relativeDir := filepath.Join("cases", strconv.Itoa(caseID), stageDir)
	if err := os.MkdirAll(filepath.Join(uploadRoot(), relativeDir), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory"})
		return
	}

	storedName := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	relativePath := filepath.Join(relativeDir, storedName)
	if err := c.SaveUploadedFile(header, filepath.Join(uploadRoot(), relativePath)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	attachment := models.CaseAttachment{
		CaseID:       caseID,
		StageID:      stageID,
		OriginalName: header.Filename,
		StoredPath:   relativePath,
		MimeType:     mimeType,
		FileSize:     header.Size,
		UploadedBy:   userID,
		UploadedAt:   time.Now(),
	}
	if err := config.DB.Create(&attachment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attachment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "File uploaded successfully", "attachment": attachment})
}

func GetAttachments(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var attachments []models.CaseAttachment
	if err := config.DB.Where("case_id = ? AND delete_at IS NULL", caseID).
		Order("attachment_id ASC").
		Find(&attachments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attachments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

func DownloadAttachment(c *gin.Context) {
	attachmentID, ok := parseIDParam(c, "attachment_id")
	if !ok {
		return
	}

	var attachment models.CaseAttachment
	if err := config.DB.Where("attachment_id = ? AND delete_at IS NULL", attachmentID).First(&attachment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	fullPath := filepath.Join(uploadRoot(), attachment.StoredPath)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File is missing from storage"})
		return
	}

	c.FileAttachment(fullPath, attachment.OriginalName)
}

func DeleteAttachment(c *gin.Context) {
	attachmentID, ok := parseIDParam(c, "attachment_id")
	if !ok {
		return
	}

	var attachment models.CaseAttachment
	if err := config.DB.Where("attachment_id = ? AND delete_at IS NULL", attachmentID).First(&attachment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&attachment).Update("delete_at", now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted successfully"})
}
