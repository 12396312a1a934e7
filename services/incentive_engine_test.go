package services

import (
	"research-incentive-api/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func rolePolicy(first, corresponding float64) *PolicyView {
	return &PolicyView{
		PublicationType:        models.PubTypeResearchPaper,
		DistributionMethod:     models.DistributionRoleBased,
		FirstAuthorPct:         floatPtr(first),
		CorrespondingAuthorPct: floatPtr(corresponding),
	}
}

func TestCalculateIncentive_ScopusQ1FirstAuthor(t *testing.T) {
	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q1",
		IndexingCategories: []string{models.IndexScopus},
		Policy:             rolePolicy(40, 25),
		AuthorRole:         models.AuthorFirst,
		IsInternal:         true,
		Composition:        AuthorComposition{TotalAuthors: 3, InternalCoAuthorCount: 1, CoAuthorCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), result.TotalPoolAmount)
	assert.Equal(t, int64(50), result.TotalPoolPoints)
	assert.Equal(t, int64(20000), result.IncentiveAmount)
	assert.Equal(t, int64(20), result.Points)
}

func TestCalculateIncentive_SharesSumToPool(t *testing.T) {
	// first 40%, corresponding 25%, one internal co-author takes the
	// remaining 35%: the three slices must reconstruct the pool exactly.
	comp := AuthorComposition{
		TotalAuthors:                  3,
		InternalCount:                 3,
		CoAuthorCount:                 1,
		InternalCoAuthorCount:         1,
		InternalEmployeeCoAuthorCount: 1,
	}
	base := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q2",
		IndexingCategories: []string{models.IndexScopus},
		Policy:             rolePolicy(40, 25),
		IsInternal:         true,
		Composition:        comp,
	}

	var totalAmount, totalPoints int64
	for _, role := range []string{models.AuthorFirst, models.AuthorCorresponding, models.AuthorCo} {
		in := base
		in.AuthorRole = role
		result, err := CalculateIncentive(in)
		require.NoError(t, err)
		totalAmount += result.IncentiveAmount
		totalPoints += result.Points
	}

	assert.Equal(t, int64(40000), totalAmount)
	assert.Equal(t, int64(40), totalPoints)
}

func TestCalculateIncentive_ExternalAuthorGetsZeroShare(t *testing.T) {
	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q1",
		IndexingCategories: []string{models.IndexScopus},
		Policy:             rolePolicy(40, 25),
		AuthorRole:         models.AuthorCo,
		IsInternal:         false,
		Composition:        AuthorComposition{TotalAuthors: 3},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	// Pool totals still reflect the category value.
	assert.Equal(t, int64(50000), result.TotalPoolAmount)
	assert.Zero(t, result.IncentiveAmount)
	assert.Zero(t, result.Points)
}

func TestCalculateIncentive_StudentKeepsAmountForfeitsPoints(t *testing.T) {
	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q1",
		IndexingCategories: []string{models.IndexScopus},
		Policy:             rolePolicy(40, 25),
		AuthorRole:         models.AuthorFirst,
		IsInternal:         true,
		IsStudent:          true,
		Composition:        AuthorComposition{TotalAuthors: 3, CoAuthorCount: 1, InternalCoAuthorCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), result.IncentiveAmount)
	assert.Zero(t, result.Points)
}

func TestCalculateIncentive_SoleAuthorTakesEverything(t *testing.T) {
	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q3",
		IndexingCategories: []string{models.IndexScopus},
		Policy:             rolePolicy(40, 25),
		AuthorRole:         models.AuthorFirstCorresponding,
		IsInternal:         true,
		Composition:        AuthorComposition{TotalAuthors: 1, InternalCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), result.IncentiveAmount)
	assert.Equal(t, int64(25), result.Points)
}

func TestCalculateIncentive_TwoAuthorsSplitEvenly(t *testing.T) {
	// Two non-co-authors always split 50/50, even though 40+25 != 100.
	comp := AuthorComposition{TotalAuthors: 2, InternalCount: 2}
	for _, role := range []string{models.AuthorFirst, models.AuthorCorresponding} {
		in := CalculationInput{
			PublicationType:    models.PubTypeResearchPaper,
			Quartile:           "Q1",
			IndexingCategories: []string{models.IndexScopus},
			Policy:             rolePolicy(40, 25),
			AuthorRole:         role,
			IsInternal:         true,
			Composition:        comp,
		}
		result, err := CalculateIncentive(in)
		require.NoError(t, err)
		assert.Equal(t, int64(25000), result.IncentiveAmount, "role %s", role)
		assert.Equal(t, int64(25), result.Points, "role %s", role)
	}
}

func TestCalculateIncentive_HighestCategoryWins(t *testing.T) {
	// Scopus Q2 (40000) beats the flat category (10000); they are never summed.
	policy := rolePolicy(40, 25)
	policy.CategoryRates = map[string]Rate{models.IndexUGCCare: {Amount: 10000, Points: 10}}

	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q2",
		IndexingCategories: []string{models.IndexUGCCare, models.IndexScopus},
		Policy:             policy,
		AuthorRole:         models.AuthorFirstCorresponding,
		IsInternal:         true,
		Composition:        AuthorComposition{TotalAuthors: 1, InternalCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), result.TotalPoolAmount)
	assert.Equal(t, int64(40000), result.IncentiveAmount)
}

func TestCalculateIncentive_NaasRatingBelowSixNotCreditable(t *testing.T) {
	policy := rolePolicy(40, 25)
	policy.NAASBands = []RatingBand{{Min: 6, Max: 10, Rate: Rate{Amount: 12000, Points: 12}}}

	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		NaasRating:         floatPtr(5.9),
		IndexingCategories: []string{models.IndexNAAS},
		Policy:             policy,
		AuthorRole:         models.AuthorFirst,
		IsInternal:         true,
		Composition:        AuthorComposition{TotalAuthors: 1, InternalCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Zero(t, result.TotalPoolAmount)
	assert.Zero(t, result.IncentiveAmount)
}

func TestCalculateIncentive_SubsidiaryRequiresImpactAboveTwenty(t *testing.T) {
	policy := rolePolicy(40, 25)
	policy.CategoryRates = map[string]Rate{models.IndexSubsidiary: {Amount: 15000, Points: 15}}

	in := CalculationInput{
		PublicationType:        models.PubTypeResearchPaper,
		SubsidiaryImpactFactor: floatPtr(18),
		IndexingCategories:     []string{models.IndexSubsidiary},
		Policy:                 policy,
		AuthorRole:             models.AuthorFirst,
		IsInternal:             true,
		Composition:            AuthorComposition{TotalAuthors: 1, InternalCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Zero(t, result.TotalPoolAmount)

	in.SubsidiaryImpactFactor = floatPtr(24.5)
	result, err = CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), result.TotalPoolAmount)
}

func TestCalculateIncentive_MissingRolePercentagesBlocks(t *testing.T) {
	policy := &PolicyView{
		PublicationType:    models.PubTypeResearchPaper,
		DistributionMethod: models.DistributionRoleBased,
		// First/corresponding percentages deliberately absent.
	}

	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q1",
		IndexingCategories: []string{models.IndexScopus},
		Policy:             policy,
		AuthorRole:         models.AuthorFirst,
		IsInternal:         true,
		Composition:        AuthorComposition{TotalAuthors: 2, InternalCount: 2, CoAuthorCount: 1, InternalCoAuthorCount: 1},
	}

	_, err := CalculateIncentive(in)
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}

func TestCalculateIncentive_PositionBasedShares(t *testing.T) {
	policy := &PolicyView{
		PublicationType:    models.PubTypeResearchPaper,
		DistributionMethod: models.DistributionPositionBased,
	}

	expected := map[int]int64{1: 20000, 2: 12500, 3: 7500, 4: 6000, 5: 4000, 6: 0, 7: 0}
	for position, want := range expected {
		in := CalculationInput{
			PublicationType:    models.PubTypeResearchPaper,
			Quartile:           "Q1",
			IndexingCategories: []string{models.IndexScopus},
			Policy:             policy,
			AuthorRole:         models.AuthorCo,
			AuthorPosition:     intPtr(position),
			IsInternal:         true,
			Composition:        AuthorComposition{TotalAuthors: 7},
		}
		result, err := CalculateIncentive(in)
		require.NoError(t, err)
		assert.Equal(t, want, result.IncentiveAmount, "position %d", position)
	}
}

func TestCalculateIncentive_BookEqualSplit(t *testing.T) {
	// Authored (20000) + scopus indexing (10000) split across three authors.
	in := CalculationInput{
		PublicationType: models.PubTypeBook,
		BookType:        models.BookAuthored,
		BookIndexing:    models.BookIndexScopus,
		IsInternal:      true,
		Composition:     AuthorComposition{TotalAuthors: 3, InternalCount: 2, ExternalCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), result.TotalPoolAmount)
	assert.Equal(t, int64(10000), result.IncentiveAmount)
	assert.Equal(t, int64(10), result.Points)
}

func TestCalculateIncentive_BookStudentNoPoints(t *testing.T) {
	in := CalculationInput{
		PublicationType: models.PubTypeBookChapter,
		BookType:        models.BookEdited,
		BookIndexing:    models.BookIndexNone,
		IsInternal:      true,
		IsStudent:       true,
		Composition:     AuthorComposition{TotalAuthors: 2, InternalCount: 2},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.IncentiveAmount)
	assert.Zero(t, result.Points)
}

func TestCalculateIncentive_KeynoteFullAmountToPresenter(t *testing.T) {
	in := CalculationInput{
		PublicationType:      models.PubTypeConferencePaper,
		SubType:              models.ConferenceKeynote,
		IsInternationalEvent: true,
		IsInternal:           true,
		Composition:          AuthorComposition{TotalAuthors: 1, InternalCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), result.TotalPoolAmount)
	assert.Equal(t, int64(20000), result.IncentiveAmount)
	assert.Equal(t, int64(20), result.Points)
}

func TestCalculateIncentive_NonIndexedPaperSplitsEqually(t *testing.T) {
	in := CalculationInput{
		PublicationType: models.PubTypeConferencePaper,
		SubType:         models.ConferencePaperNotIndex,
		IsInternal:      true,
		Composition:     AuthorComposition{TotalAuthors: 4, InternalCount: 4},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.TotalPoolAmount)
	assert.Equal(t, int64(1250), result.IncentiveAmount)
}

func TestCalculateIncentive_ScopusConferenceBonuses(t *testing.T) {
	policy := &PolicyView{
		PublicationType:        models.PubTypeConferencePaper,
		SubType:                models.ConferencePaperScopus,
		DistributionMethod:     models.DistributionRoleBased,
		FirstAuthorPct:         floatPtr(40),
		CorrespondingAuthorPct: floatPtr(25),
		BestPaperBonus:         Rate{Amount: 3000, Points: 3},
	}

	in := CalculationInput{
		PublicationType:      models.PubTypeConferencePaper,
		SubType:              models.ConferencePaperScopus,
		ProceedingsQuartile:  "Q1",
		IsInternationalEvent: true,
		BestPaperAward:       "yes",
		Policy:               policy,
		AuthorRole:           models.AuthorFirstCorresponding,
		IsInternal:           true,
		Composition:          AuthorComposition{TotalAuthors: 1, InternalCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	// 25000 quartile + 5000 international + 3000 best paper
	assert.Equal(t, int64(33000), result.TotalPoolAmount)
	assert.Equal(t, int64(33000), result.IncentiveAmount)
}

func TestCalculateIncentive_ZeroPoolReturnsAllZeros(t *testing.T) {
	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		IndexingCategories: []string{models.IndexSCIE}, // needs SJR ranges, none configured
		Policy:             rolePolicy(40, 25),
		SJR:                floatPtr(1.2),
		AuthorRole:         models.AuthorFirst,
		IsInternal:         true,
		Composition:        AuthorComposition{TotalAuthors: 1, InternalCount: 1},
	}

	result, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, CalculationResult{}, result)
}

func TestCalculateIncentive_Idempotent(t *testing.T) {
	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q4",
		IndexingCategories: []string{models.IndexScopus},
		Policy:             rolePolicy(40, 25),
		AuthorRole:         models.AuthorCorresponding,
		IsInternal:         true,
		Composition:        AuthorComposition{TotalAuthors: 3, CoAuthorCount: 1, InternalCoAuthorCount: 1},
	}

	first, err := CalculateIncentive(in)
	require.NoError(t, err)
	second, err := CalculateIncentive(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculateOrZero_ConfigurationErrorPropagates(t *testing.T) {
	in := CalculationInput{
		PublicationType:    models.PubTypeResearchPaper,
		Quartile:           "Q1",
		IndexingCategories: []string{models.IndexScopus},
		Policy: &PolicyView{
			PublicationType:    models.PubTypeResearchPaper,
			DistributionMethod: models.DistributionRoleBased,
		},
		AuthorRole:  models.AuthorFirst,
		IsInternal:  true,
		Composition: AuthorComposition{TotalAuthors: 3, CoAuthorCount: 1, InternalCoAuthorCount: 1},
	}

	_, err := CalculateOrZero(in)
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}

func TestApplyPercent_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, int64(13), applyPercent(50, 25))  // 12.5 rounds up
	assert.Equal(t, int64(33), applyPercent(100, 33)) // 33.0 exact
	assert.Zero(t, applyPercent(100, 0))
	assert.Zero(t, applyPercent(0, 40))
}

func TestDivideRound_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, int64(33), divideRound(100, 3))
	assert.Equal(t, int64(13), divideRound(25, 2)) // 12.5 rounds up
	assert.Zero(t, divideRound(100, 0))
}
