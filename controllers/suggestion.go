package controllers

import (
	"net/http"
	"research-incentive-api/config"
	"research-incentive-api/middleware"
	"research-incentive-api/models"
	"research-incentive-api/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CreateSuggestionRequest struct {
	FieldName      string  `json:"field_name" binding:"required"`
	SuggestedValue string  `json:"suggested_value" binding:"required"`
	Note           *string `json:"note"`
}

// CreateSuggestion lets a reviewer or mentor propose a field change on a
// contribution under their review. The origin is derived from the caller's
// role, never from the payload.
func CreateSuggestion(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}
	roleName, _ := c.Get("roleName")

	contributionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || contributionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return
	}

	var req CreateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "field_name and suggested_value are required"})
		return
	}

	origin := models.SuggestionOriginReviewer
	if roleName.(string) == "mentor" {
		origin = models.SuggestionOriginMentor
	}

	suggestion, err := services.CreateSuggestion(user.UserID, origin, contributionID, req.FieldName, req.SuggestedValue, req.Note)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Suggestion created",
		"data":    suggestion,
	})
}

// GetSuggestions lists the suggestions on one contribution, newest first.
func GetSuggestions(c *gin.Context) {
	contributionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || contributionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return
	}

	query := config.DB.Preload("Proposer").Where("contribution_id = ?", contributionID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var suggestions []models.EditSuggestion
	if err := query.Order("create_at DESC").Find(&suggestions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch suggestions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": suggestions, "total": len(suggestions)})
}

type RespondSuggestionRequest struct {
	Accept   *bool   `json:"accept" binding:"required"`
	Response *string `json:"response"`
}

// RespondToSuggestion is the applicant's accept/reject verdict on one
// suggestion.
func RespondToSuggestion(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	suggestionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || suggestionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid suggestion ID"})
		return
	}

	var req RespondSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Accept == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "accept is required"})
		return
	}

	suggestion, err := services.RespondToSuggestion(userID, suggestionID, *req.Accept, req.Response)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Suggestion " + suggestion.Status,
		"data":    suggestion,
	})
}
