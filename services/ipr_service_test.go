package services

import (
	"research-incentive-api/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsDRDPickup(t *testing.T) {
	assert.True(t, NeedsDRDPickup(models.StatusSubmitted))
	assert.True(t, NeedsDRDPickup(models.StatusResubmitted))
	assert.False(t, NeedsDRDPickup(models.StatusUnderDRDReview))
	assert.False(t, NeedsDRDPickup(models.StatusRecommendedToHead))
	assert.False(t, NeedsDRDPickup(models.StatusDraft))
}

func TestDRDChainReachableFromSubmission(t *testing.T) {
	// A fresh filing sits in submitted; the member's recommend verdict is not
	// a legal edge from there, so the pickup step must bridge it.
	assert.False(t, CanTransition(models.StatusSubmitted, models.StatusRecommendedToHead))
	require.True(t, CanTransition(models.StatusSubmitted, models.StatusUnderDRDReview))
	require.True(t, CanTransition(models.StatusResubmitted, models.StatusUnderDRDReview))

	// With the pickup applied, the full chain walks through to completion.
	chain := []string{
		models.StatusUnderDRDReview,
		models.StatusRecommendedToHead,
		models.StatusDRDHeadApproved,
		models.StatusSubmittedToGovt,
		models.StatusGovtApplicationFiled,
		models.StatusPublished,
		models.StatusCompleted,
	}
	from := models.StatusSubmitted
	for _, next := range chain {
		require.True(t, CanTransition(from, next), "%s -> %s", from, next)
		from = next
	}
}

func TestDRDMemberVerdictsLegalAfterPickup(t *testing.T) {
	for _, verdict := range []string{
		models.StatusRecommendedToHead,
		models.StatusChangesRequired,
		models.StatusDRDRejected,
	} {
		assert.True(t, CanTransition(models.StatusUnderDRDReview, verdict), verdict)
	}
}

func TestEqualSplitShare(t *testing.T) {
	// Floor division: the remainder stays in the pool, it is never paid out.
	assert.Equal(t, int64(8333), EqualSplitShare(25000, 3))
	assert.Equal(t, int64(12500), EqualSplitShare(25000, 2))
	assert.Equal(t, int64(25000), EqualSplitShare(25000, 1))
	assert.Zero(t, EqualSplitShare(25000, 0))
	assert.Zero(t, EqualSplitShare(0, 3))
	assert.Zero(t, EqualSplitShare(-100, 3))
}
