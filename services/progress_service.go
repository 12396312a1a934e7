package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"time"

	"gorm.io/gorm"
)

// trackerTransitions is the pre-submission manuscript state machine. Rejected
// manuscripts may restart anywhere before acceptance; nothing else moves
// backwards.
var trackerTransitions = map[string][]string{
	models.TrackerWriting:      {models.TrackerCommunicated},
	models.TrackerCommunicated: {models.TrackerWriting, models.TrackerSubmitted, models.TrackerRejected},
	models.TrackerSubmitted:    {models.TrackerAccepted, models.TrackerRejected},
	models.TrackerAccepted:     {models.TrackerPublished},
	models.TrackerRejected:     {models.TrackerWriting, models.TrackerCommunicated, models.TrackerSubmitted},
}

// CanTrackerTransition reports whether from→to is a listed tracker edge.
func CanTrackerTransition(from, to string) bool {
	for _, next := range trackerTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MergeStatusData shallow-merges the caller's payload into the stored JSON
// document. Existing keys not present in the update survive; colliding keys
// take the new value.
func MergeStatusData(stored string, update map[string]interface{}) (string, error) {
	merged := map[string]interface{}{}
	if stored != "" {
		if err := json.Unmarshal([]byte(stored), &merged); err != nil {
			return "", &ValidationError{Field: "status_data", Message: "stored payload is not valid JSON"}
		}
	}
	for k, v := range update {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("failed to encode status data: %w", err)
	}
	return string(out), nil
}

// TransitionTracker moves a tracker along a guarded edge, merging the
// caller's status payload and appending a history row in one transaction.
func TransitionTracker(ownerID, trackerID int, toStatus string, statusData map[string]interface{}) (*models.ProgressTracker, error) {
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var tracker models.ProgressTracker
	if err := tx.Where("tracker_id = ? AND delete_at IS NULL", trackerID).First(&tracker).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "progress tracker"}
		}
		return nil, fmt.Errorf("failed to load tracker: %w", err)
	}

	if tracker.OwnerID != ownerID {
		tx.Rollback()
		return nil, &PermissionError{Message: "only the owner may update the tracker"}
	}

	if !CanTrackerTransition(tracker.Status, toStatus) {
		tx.Rollback()
		return nil, &StateError{From: tracker.Status, Action: "transition to " + toStatus}
	}

	merged, err := MergeStatusData(tracker.StatusData, statusData)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	from := tracker.Status
	if err := tx.Model(&models.ProgressTracker{}).
		Where("tracker_id = ?", tracker.TrackerID).
		Updates(map[string]interface{}{
			"status":      toStatus,
			"status_data": merged,
			"update_at":   now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update tracker: %w", err)
	}

	var payload *string
	if len(statusData) > 0 {
		if raw, err := json.Marshal(statusData); err == nil {
			s := string(raw)
			payload = &s
		}
	}
	history := models.TrackerStatusHistory{
		TrackerID:  tracker.TrackerID,
		FromStatus: &from,
		ToStatus:   toStatus,
		ChangedBy:  ownerID,
		StatusData: payload,
		CreatedAt:  now,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to log tracker history: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit tracker transition: %w", err)
	}

	tracker.Status = toStatus
	tracker.StatusData = merged
	tracker.UpdateAt = now
	return &tracker, nil
}

// LinkTrackerToContribution ties a published tracker 1:1 to a finalized
// contribution. Allowed only from published, only once, only by the owner.
func LinkTrackerToContribution(ownerID, trackerID, contributionID int) (*models.ProgressTracker, error) {
	var tracker models.ProgressTracker
	if err := config.DB.Where("tracker_id = ? AND delete_at IS NULL", trackerID).First(&tracker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "progress tracker"}
		}
		return nil, fmt.Errorf("failed to load tracker: %w", err)
	}

	if tracker.OwnerID != ownerID {
		return nil, &PermissionError{Message: "only the owner may link the tracker"}
	}
	if tracker.Status != models.TrackerPublished {
		return nil, &StateError{From: tracker.Status, Action: "link to contribution"}
	}
	if tracker.ContributionID != nil {
		return nil, &StateError{From: tracker.Status, Action: "link an already-linked tracker"}
	}

	var contribution models.Contribution
	if err := config.DB.Where("contribution_id = ? AND delete_at IS NULL", contributionID).
		First(&contribution).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "contribution"}
		}
		return nil, fmt.Errorf("failed to load contribution: %w", err)
	}

	now := time.Now()
	if err := config.DB.Model(&models.ProgressTracker{}).
		Where("tracker_id = ?", tracker.TrackerID).
		Updates(map[string]interface{}{
			"contribution_id": contributionID,
			"update_at":       now,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to link tracker: %w", err)
	}

	tracker.ContributionID = &contributionID
	tracker.UpdateAt = now
	return &tracker, nil
}
