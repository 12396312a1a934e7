package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"research-incentive-api/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxDocumentSize = 10 << 20 // 10 MB

func uploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	return dir
}

// UploadDocument stores a supporting document under an opaque uuid key and
// records the metadata row. Optionally attached to a contribution.
func UploadDocument(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "file is required"})
		return
	}
	if fileHeader.Size > maxDocumentSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File exceeds the 10MB limit"})
		return
	}

	upload := models.FileUpload{
		OriginalName: fileHeader.Filename,
		FileSize:     fileHeader.Size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		UploadedBy:   userID,
		UploadedAt:   time.Now(),
	}
	if !upload.IsValidDocumentType() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Only PDF, Word and image documents are accepted"})
		return
	}

	if raw := c.PostForm("contribution_id"); raw != "" {
		contributionID, err := strconv.Atoi(raw)
		if err != nil || contributionID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution_id"})
			return
		}
		var contribution models.Contribution
		if err := config.DB.Where("contribution_id = ? AND delete_at IS NULL", contributionID).
			First(&contribution).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Contribution not found"})
			return
		}
		if contribution.ApplicantID != userID {
			handleServiceError(c, &services.PermissionError{Message: "only the applicant may attach documents"})
			return
		}
		upload.ContributionID = &contributionID
	}

	if err := os.MkdirAll(uploadDir(), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store file"})
		return
	}

	storedName := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(fileHeader.Filename))
	storedPath := filepath.Join(uploadDir(), storedName)
	if err := c.SaveUploadedFile(fileHeader, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store file"})
		return
	}
	upload.StoredPath = storedPath

	if err := config.DB.Create(&upload).Error; err != nil {
		os.Remove(storedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record upload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "File uploaded successfully",
		"data":    upload,
	})
}

// DownloadDocument streams a stored document to its uploader or a reviewer.
func DownloadDocument(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)
	roleName, _ := c.Get("roleName")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid file ID"})
		return
	}

	var upload models.FileUpload
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", id).First(&upload).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "File not found"})
		return
	}

	if upload.UploadedBy != userID && !hasReviewAccess(roleName) {
		handleServiceError(c, &services.PermissionError{Message: "not allowed to download this file"})
		return
	}

	if _, err := os.Stat(upload.StoredPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Stored file is missing"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", upload.OriginalName))
	c.Header("Content-Type", upload.MimeType)
	c.File(upload.StoredPath)
}

// DeleteDocument soft-deletes an upload owned by the caller.
func DeleteDocument(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid file ID"})
		return
	}

	var upload models.FileUpload
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", id).First(&upload).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "File not found"})
		return
	}
	if upload.UploadedBy != userID {
		handleServiceError(c, &services.PermissionError{Message: "only the uploader may delete the file"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&upload).Update("delete_at", &now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted"})
}

func hasReviewAccess(roleName interface{}) bool {
	role, ok := roleName.(string)
	if !ok {
		return false
	}
	switch role {
	case "drd_member", "drd_head", "admin", "finance", "mentor":
		return true
	}
	return false
}
