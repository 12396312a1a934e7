package services

import (
	"research-incentive-api/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_StandardChain(t *testing.T) {
	legal := [][2]string{
		{models.StatusDraft, models.StatusSubmitted},
		{models.StatusDraft, models.StatusPendingMentorApproval},
		{models.StatusPendingMentorApproval, models.StatusSubmitted},
		{models.StatusSubmitted, models.StatusUnderReview},
		{models.StatusUnderReview, models.StatusUnderReview}, // repeated recommendations
		{models.StatusUnderReview, models.StatusChangesRequired},
		{models.StatusChangesRequired, models.StatusResubmitted},
		{models.StatusResubmitted, models.StatusApproved},
		{models.StatusApproved, models.StatusCompleted},
	}
	for _, edge := range legal {
		assert.True(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestCanTransition_IPRChain(t *testing.T) {
	legal := [][2]string{
		{models.StatusSubmitted, models.StatusUnderDRDReview},
		{models.StatusUnderDRDReview, models.StatusRecommendedToHead},
		{models.StatusRecommendedToHead, models.StatusDRDHeadApproved},
		{models.StatusDRDHeadApproved, models.StatusSubmittedToGovt},
		{models.StatusSubmittedToGovt, models.StatusGovtApplicationFiled},
		{models.StatusGovtApplicationFiled, models.StatusPublished},
		{models.StatusPublished, models.StatusCompleted},
	}
	for _, edge := range legal {
		assert.True(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestCanTransition_IllegalEdges(t *testing.T) {
	illegal := [][2]string{
		{models.StatusDraft, models.StatusApproved},
		{models.StatusDraft, models.StatusCompleted},
		{models.StatusRejected, models.StatusSubmitted},
		{models.StatusCompleted, models.StatusDraft},
		{models.StatusApproved, models.StatusDraft},
		{models.StatusSubmittedToGovt, models.StatusPublished}, // must pass through the filed status
		{models.StatusDRDRejected, models.StatusUnderDRDReview},
	}
	for _, edge := range illegal {
		assert.False(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestIsEditableStatus(t *testing.T) {
	assert.True(t, IsEditableStatus(models.StatusDraft))
	assert.True(t, IsEditableStatus(models.StatusChangesRequired))
	assert.True(t, IsEditableStatus(models.StatusResubmitted))
	assert.False(t, IsEditableStatus(models.StatusSubmitted))
	assert.False(t, IsEditableStatus(models.StatusApproved))
	assert.False(t, IsEditableStatus(models.StatusCompleted))
}

func TestIsPoolAffectingField(t *testing.T) {
	assert.True(t, IsPoolAffectingField("quartile"))
	assert.True(t, IsPoolAffectingField("sjr"))
	assert.True(t, IsPoolAffectingField("book_type"))
	assert.False(t, IsPoolAffectingField("title"))
	assert.False(t, IsPoolAffectingField("journal_name"))
}

func TestSubmitTargetStatus(t *testing.T) {
	mentorID := 7

	student := &models.User{Category: models.CategoryInternalStudent, MentorID: &mentorID}
	assert.Equal(t, models.StatusPendingMentorApproval, SubmitTargetStatus(student))

	// A student without an assigned mentor goes straight to review.
	orphan := &models.User{Category: models.CategoryInternalStudent}
	assert.Equal(t, models.StatusSubmitted, SubmitTargetStatus(orphan))

	faculty := &models.User{Category: models.CategoryInternalFaculty, MentorID: &mentorID}
	assert.Equal(t, models.StatusSubmitted, SubmitTargetStatus(faculty))
}

func TestReentryStatusAfterSuggestions(t *testing.T) {
	assert.Equal(t, models.StatusPendingMentorApproval, ReentryStatusAfterSuggestions(true))
	assert.Equal(t, models.StatusResubmitted, ReentryStatusAfterSuggestions(false))
}
