package controllers

import (
	"encoding/json"
	"net/http"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"research-incentive-api/services"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type CreateTrackerRequest struct {
	Title           string                 `json:"title" binding:"required"`
	PublicationType string                 `json:"publication_type" binding:"required"`
	StatusData      map[string]interface{} `json:"status_data"`
}

// CreateTracker starts a manuscript tracker in the writing stage.
func CreateTracker(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	var req CreateTrackerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "title and publication_type are required"})
		return
	}
	if !models.IsAllowedValue("publication_type", req.PublicationType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid publication_type"})
		return
	}

	statusData := "{}"
	if len(req.StatusData) > 0 {
		raw, err := json.Marshal(req.StatusData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status_data"})
			return
		}
		statusData = string(raw)
	}

	now := time.Now()
	tracker := models.ProgressTracker{
		OwnerID:         userID,
		Title:           strings.TrimSpace(req.Title),
		PublicationType: req.PublicationType,
		Status:          models.TrackerWriting,
		StatusData:      statusData,
		CreateAt:        now,
		UpdateAt:        now,
	}
	if err := config.DB.Create(&tracker).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create tracker"})
		return
	}

	history := models.TrackerStatusHistory{
		TrackerID: tracker.TrackerID,
		ToStatus:  models.TrackerWriting,
		ChangedBy: userID,
		CreatedAt: now,
	}
	if err := config.DB.Create(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to log tracker history"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Tracker created",
		"data":    tracker,
	})
}

// GetTrackers lists the caller's trackers, optionally filtered by status.
func GetTrackers(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	query := config.DB.Where("owner_id = ? AND delete_at IS NULL", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var trackers []models.ProgressTracker
	if err := query.Order("update_at DESC").Find(&trackers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch trackers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": trackers, "total": len(trackers)})
}

// GetTracker returns one tracker with its transition history.
func GetTracker(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid tracker ID"})
		return
	}

	var tracker models.ProgressTracker
	if err := config.DB.Where("tracker_id = ? AND delete_at IS NULL", id).First(&tracker).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Tracker not found"})
		return
	}
	if tracker.OwnerID != userID {
		handleServiceError(c, &services.PermissionError{Message: "only the owner may view the tracker"})
		return
	}

	var history []models.TrackerStatusHistory
	if err := config.DB.Where("tracker_id = ?", id).Order("created_at ASC").Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch tracker history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"tracker": tracker,
			"history": history,
		},
	})
}

type TrackerTransitionRequest struct {
	Status     string                 `json:"status" binding:"required"`
	StatusData map[string]interface{} `json:"status_data"`
}

// TransitionTracker moves a tracker to the next manuscript stage.
func TransitionTracker(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid tracker ID"})
		return
	}

	var req TrackerTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "status is required"})
		return
	}

	tracker, err := services.TransitionTracker(userID, id, req.Status, req.StatusData)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tracker updated",
		"data":    tracker,
	})
}

type LinkTrackerRequest struct {
	ContributionID int `json:"contribution_id" binding:"required"`
}

// LinkTracker ties a published tracker to its formal contribution.
func LinkTracker(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid tracker ID"})
		return
	}

	var req LinkTrackerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ContributionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "contribution_id is required"})
		return
	}

	tracker, err := services.LinkTrackerToContribution(userID, id, req.ContributionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tracker linked to contribution",
		"data":    tracker,
	})
}

// DeleteTracker soft-deletes a tracker owned by the caller.
func DeleteTracker(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid tracker ID"})
		return
	}

	var tracker models.ProgressTracker
	if err := config.DB.Where("tracker_id = ? AND delete_at IS NULL", id).First(&tracker).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Tracker not found"})
		return
	}
	if tracker.OwnerID != userID {
		handleServiceError(c, &services.PermissionError{Message: "only the owner may delete the tracker"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&tracker).Update("delete_at", &now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete tracker"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Tracker deleted"})
}
