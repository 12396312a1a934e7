package services

import (
	"research-incentive-api/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The validation branches all return before the transaction is touched, so a
// nil tx proves the bad value never reaches the store.

func TestApplySuggestedField_RejectsInvalidEnumValue(t *testing.T) {
	quartile := "Q2"
	contribution := models.Contribution{ContributionID: 1, Quartile: &quartile}

	err := applySuggestedField(nil, &contribution, "quartile", "Q9")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// The in-memory record is untouched; the caller rolls back and the
	// suggestion stays pending.
	assert.Equal(t, "Q2", *contribution.Quartile)
}

func TestApplySuggestedField_RejectsUnknownField(t *testing.T) {
	contribution := models.Contribution{ContributionID: 1}

	err := applySuggestedField(nil, &contribution, "applicant_id", "42")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestApplySuggestedField_NaasRatingRange(t *testing.T) {
	contribution := models.Contribution{ContributionID: 1}

	for _, value := range []string{"5.9", "10.1", "abc", ""} {
		err := applySuggestedField(nil, &contribution, "naas_rating", value)
		require.Error(t, err, "value %q", value)
		assert.True(t, IsValidation(err), "value %q", value)
	}
	assert.Nil(t, contribution.NaasRating)
}

func TestApplySuggestedField_SubsidiaryImpactMustExceedTwenty(t *testing.T) {
	contribution := models.Contribution{ContributionID: 1}

	for _, value := range []string{"20", "19.5", "x"} {
		err := applySuggestedField(nil, &contribution, "subsidiary_impact_factor", value)
		require.Error(t, err, "value %q", value)
		assert.True(t, IsValidation(err), "value %q", value)
	}
}

func TestApplySuggestedField_NegativeNumericsRejected(t *testing.T) {
	contribution := models.Contribution{ContributionID: 1}

	for _, field := range []string{"sjr", "impact_factor"} {
		err := applySuggestedField(nil, &contribution, field, "-1.5")
		require.Error(t, err, field)
		assert.True(t, IsValidation(err), field)
	}
}

func TestApplyFieldLocally_MirrorsAcceptedValues(t *testing.T) {
	contribution := models.Contribution{ContributionID: 1}

	applyFieldLocally(&contribution, "quartile", "Q1")
	require.NotNil(t, contribution.Quartile)
	assert.Equal(t, "Q1", *contribution.Quartile)

	applyFieldLocally(&contribution, "sjr", "1.25")
	require.NotNil(t, contribution.SJR)
	assert.Equal(t, 1.25, *contribution.SJR)

	applyFieldLocally(&contribution, "title", "Corrected title")
	assert.Equal(t, "Corrected title", contribution.Title)
}
