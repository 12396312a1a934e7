package controllers

import (
	"net/http"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"research-incentive-api/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetPolicies lists policy rows with their rates, optionally filtered.
func GetPolicies(c *gin.Context) {
	query := config.DB.Preload("Rates", "delete_at IS NULL").Where("delete_at IS NULL")
	if pubType := c.Query("publication_type"); pubType != "" {
		query = query.Where("publication_type = ?", pubType)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var policies []models.IncentivePolicy
	if err := query.Order("publication_type ASC, effective_from DESC").Find(&policies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch policies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": policies, "total": len(policies)})
}

type PolicyRateRequest struct {
	RateKind string   `json:"rate_kind" binding:"required"`
	MatchKey string   `json:"match_key"`
	MinValue *float64 `json:"min_value"`
	MaxValue *float64 `json:"max_value"`
	Amount   int64    `json:"amount"`
	Points   int64    `json:"points"`
}

type CreatePolicyRequest struct {
	PublicationType          string              `json:"publication_type" binding:"required"`
	SubType                  *string             `json:"sub_type"`
	DistributionMethod       string              `json:"distribution_method" binding:"required"`
	FirstAuthorPct           *float64            `json:"first_author_pct"`
	CorrespondingAuthorPct   *float64            `json:"corresponding_author_pct"`
	InternationalBonusAmount int64               `json:"international_bonus_amount"`
	InternationalBonusPoints int64               `json:"international_bonus_points"`
	BestPaperBonusAmount     int64               `json:"best_paper_bonus_amount"`
	BestPaperBonusPoints     int64               `json:"best_paper_bonus_points"`
	FlatAmount               int64               `json:"flat_amount"`
	FlatPoints               int64               `json:"flat_points"`
	EffectiveFrom            string              `json:"effective_from" binding:"required"` // 2006-01-02
	EffectiveTo              *string             `json:"effective_to"`
	Rates                    []PolicyRateRequest `json:"rates"`
}

// CreatePolicy inserts a new policy version. Existing versions are never
// edited; superseding happens through a later effective_from.
func CreatePolicy(c *gin.Context) {
	var req CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if !models.IsAllowedValue("publication_type", req.PublicationType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid publication_type"})
		return
	}
	if req.DistributionMethod != models.DistributionRoleBased && req.DistributionMethod != models.DistributionPositionBased {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "distribution_method must be role_based or position_based"})
		return
	}

	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "effective_from must be YYYY-MM-DD"})
		return
	}
	var effectiveTo *time.Time
	if req.EffectiveTo != nil {
		t, err := time.Parse("2006-01-02", *req.EffectiveTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "effective_to must be YYYY-MM-DD"})
			return
		}
		if !t.After(effectiveFrom) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "effective_to must be after effective_from"})
			return
		}
		effectiveTo = &t
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()
	policy := models.IncentivePolicy{
		PublicationType:          req.PublicationType,
		SubType:                  req.SubType,
		DistributionMethod:       req.DistributionMethod,
		FirstAuthorPct:           req.FirstAuthorPct,
		CorrespondingAuthorPct:   req.CorrespondingAuthorPct,
		InternationalBonusAmount: req.InternationalBonusAmount,
		InternationalBonusPoints: req.InternationalBonusPoints,
		BestPaperBonusAmount:     req.BestPaperBonusAmount,
		BestPaperBonusPoints:     req.BestPaperBonusPoints,
		FlatAmount:               req.FlatAmount,
		FlatPoints:               req.FlatPoints,
		EffectiveFrom:            effectiveFrom,
		EffectiveTo:              effectiveTo,
		IsActive:                 true,
		CreateAt:                 &now,
		UpdateAt:                 &now,
	}
	if err := tx.Create(&policy).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create policy"})
		return
	}

	for _, r := range req.Rates {
		rate := models.PolicyRate{
			PolicyID: policy.PolicyID,
			RateKind: r.RateKind,
			MatchKey: r.MatchKey,
			MinValue: r.MinValue,
			MaxValue: r.MaxValue,
			Amount:   r.Amount,
			Points:   r.Points,
			CreateAt: &now,
		}
		if err := tx.Create(&rate).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create policy rates"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create policy"})
		return
	}

	// New versions must be visible to the next calculation.
	services.ClearPolicyCache()

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Policy created",
		"data":    policy,
	})
}

type TogglePolicyRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// TogglePolicy activates or deactivates one policy version.
func TogglePolicy(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid policy ID"})
		return
	}

	var req TogglePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "is_active is required"})
		return
	}

	var policy models.IncentivePolicy
	if err := config.DB.Where("policy_id = ? AND delete_at IS NULL", id).First(&policy).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Policy not found"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&policy).Updates(map[string]interface{}{
		"is_active": *req.IsActive,
		"update_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update policy"})
		return
	}

	services.ClearPolicyCache()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Policy updated"})
}

// DeletePolicy soft-deletes a policy version that was never referenced.
func DeletePolicy(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid policy ID"})
		return
	}

	var policy models.IncentivePolicy
	if err := config.DB.Where("policy_id = ? AND delete_at IS NULL", id).First(&policy).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Policy not found"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&policy).Update("delete_at", &now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete policy"})
		return
	}

	services.ClearPolicyCache()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Policy deleted"})
}
