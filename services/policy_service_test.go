package services

import (
	"research-incentive-api/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSelectActivePolicy_LatestEffectiveWins(t *testing.T) {
	rows := []models.IncentivePolicy{
		{PolicyID: 1, PublicationType: models.PubTypeResearchPaper, IsActive: true, EffectiveFrom: date(2024, 1, 1)},
		{PolicyID: 2, PublicationType: models.PubTypeResearchPaper, IsActive: true, EffectiveFrom: date(2025, 1, 1)},
		{PolicyID: 3, PublicationType: models.PubTypeResearchPaper, IsActive: true, EffectiveFrom: date(2027, 1, 1)},
	}

	best := SelectActivePolicy(rows, models.PubTypeResearchPaper, "", date(2026, 6, 1))
	require.NotNil(t, best)
	assert.Equal(t, 2, best.PolicyID)
}

func TestSelectActivePolicy_ExpiredWindowExcluded(t *testing.T) {
	to := date(2025, 12, 31)
	rows := []models.IncentivePolicy{
		{PolicyID: 1, PublicationType: models.PubTypeResearchPaper, IsActive: true, EffectiveFrom: date(2024, 1, 1), EffectiveTo: &to},
	}

	assert.Nil(t, SelectActivePolicy(rows, models.PubTypeResearchPaper, "", date(2026, 6, 1)))
	assert.NotNil(t, SelectActivePolicy(rows, models.PubTypeResearchPaper, "", date(2025, 6, 1)))
}

func TestSelectActivePolicy_InactiveAndDeletedSkipped(t *testing.T) {
	now := time.Now()
	rows := []models.IncentivePolicy{
		{PolicyID: 1, PublicationType: models.PubTypeResearchPaper, IsActive: false, EffectiveFrom: date(2024, 1, 1)},
		{PolicyID: 2, PublicationType: models.PubTypeResearchPaper, IsActive: true, EffectiveFrom: date(2024, 1, 1), DeleteAt: &now},
	}

	assert.Nil(t, SelectActivePolicy(rows, models.PubTypeResearchPaper, "", date(2026, 6, 1)))
}

func TestSelectActivePolicy_SubTypeMustMatch(t *testing.T) {
	scopus := models.ConferencePaperScopus
	rows := []models.IncentivePolicy{
		{PolicyID: 1, PublicationType: models.PubTypeConferencePaper, SubType: &scopus, IsActive: true, EffectiveFrom: date(2024, 1, 1)},
	}

	assert.Nil(t, SelectActivePolicy(rows, models.PubTypeConferencePaper, "", date(2026, 1, 1)))
	found := SelectActivePolicy(rows, models.PubTypeConferencePaper, scopus, date(2026, 1, 1))
	require.NotNil(t, found)
	assert.Equal(t, 1, found.PolicyID)
}

func TestBuildPolicyView_MapsRateKinds(t *testing.T) {
	first := 40.0
	corresponding := 25.0
	min := 0.5
	max := 1.0
	naasMin := 6.0
	naasMax := 8.0

	row := &models.IncentivePolicy{
		PolicyID:               1,
		PublicationType:        models.PubTypeResearchPaper,
		DistributionMethod:     models.DistributionRoleBased,
		FirstAuthorPct:         &first,
		CorrespondingAuthorPct: &corresponding,
		FlatAmount:             25000,
		FlatPoints:             25,
		Rates: []models.PolicyRate{
			{RateKind: models.RateKindQuartile, MatchKey: "Q1", Amount: 50000, Points: 50},
			{RateKind: models.RateKindSJRRange, MinValue: &min, MaxValue: &max, Amount: 30000, Points: 30},
			{RateKind: models.RateKindNAASBand, MinValue: &naasMin, MaxValue: &naasMax, Amount: 12000, Points: 12},
			{RateKind: models.RateKindFlatCategory, MatchKey: models.IndexUGCCare, Amount: 8000, Points: 8},
			{RateKind: models.RateKindPosition, MatchKey: "1", Amount: 40},
			{RateKind: models.RateKindBookBase, MatchKey: models.BookAuthored, Amount: 20000, Points: 20},
			{RateKind: models.RateKindConferenceFlat, MatchKey: models.ConferenceKeynote + ":international", Amount: 20000, Points: 20},
		},
	}

	view := BuildPolicyView(row)

	assert.Equal(t, Rate{Amount: 50000, Points: 50}, view.QuartileRates["Q1"])
	require.Len(t, view.SJRRanges, 1)
	assert.Equal(t, 0.5, view.SJRRanges[0].Min)
	require.Len(t, view.NAASBands, 1)
	assert.Equal(t, Rate{Amount: 12000, Points: 12}, view.NAASBands[0].Rate)
	assert.Equal(t, Rate{Amount: 8000, Points: 8}, view.CategoryRates[models.IndexUGCCare])
	assert.Equal(t, float64(40), view.PositionPct[1])
	assert.Equal(t, Rate{Amount: 20000, Points: 20}, view.BookBase[models.BookAuthored])
	assert.Equal(t, Rate{Amount: 20000, Points: 20}, view.ConferenceFlat[models.ConferenceKeynote+":international"])
	assert.Equal(t, Rate{Amount: 25000, Points: 25}, view.Flat)
}

func TestBuildPolicyView_SkipsDeletedRates(t *testing.T) {
	now := time.Now()
	row := &models.IncentivePolicy{
		PublicationType: models.PubTypeResearchPaper,
		Rates: []models.PolicyRate{
			{RateKind: models.RateKindQuartile, MatchKey: "Q1", Amount: 50000, Points: 50, DeleteAt: &now},
		},
	}

	view := BuildPolicyView(row)
	assert.Empty(t, view.QuartileRates)
}

func TestRequireRolePercentages(t *testing.T) {
	first := 40.0
	corresponding := 25.0

	view := &PolicyView{PublicationType: models.PubTypeResearchPaper, FirstAuthorPct: &first, CorrespondingAuthorPct: &corresponding}
	f, c, err := view.RequireRolePercentages()
	require.NoError(t, err)
	assert.Equal(t, 40.0, f)
	assert.Equal(t, 25.0, c)

	missing := &PolicyView{PublicationType: models.PubTypeResearchPaper, FirstAuthorPct: &first}
	_, _, err = missing.RequireRolePercentages()
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}
