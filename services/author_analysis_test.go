package services

import (
	"research-incentive-api/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeAuthors_Counts(t *testing.T) {
	authors := []AuthorFacts{
		{AuthorType: models.AuthorFirst, Category: models.CategoryInternalFaculty},
		{AuthorType: models.AuthorCorresponding, Category: models.CategoryInternalFaculty},
		{AuthorType: models.AuthorCo, Category: models.CategoryInternalStudent},
		{AuthorType: models.AuthorCo, Category: models.CategoryInternalFaculty},
		{AuthorType: models.AuthorCo, Category: models.CategoryExternalAcademic},
	}

	comp := AnalyzeAuthors(authors, 40, 25)

	assert.Equal(t, 5, comp.TotalAuthors)
	assert.Equal(t, 4, comp.InternalCount)
	assert.Equal(t, 1, comp.ExternalCount)
	assert.Equal(t, 3, comp.CoAuthorCount)
	assert.Equal(t, 2, comp.InternalCoAuthorCount)
	// Student co-authors stay in the amount denominator but leave the
	// points denominator.
	assert.Equal(t, 1, comp.InternalEmployeeCoAuthorCount)
	assert.Zero(t, comp.ExternalFirstCorrespondingPct)
}

func TestAnalyzeAuthors_ExternalFirstAuthorForfeitsShare(t *testing.T) {
	authors := []AuthorFacts{
		{AuthorType: models.AuthorFirst, Category: models.CategoryExternalIndustry},
		{AuthorType: models.AuthorCorresponding, Category: models.CategoryInternalFaculty},
	}

	comp := AnalyzeAuthors(authors, 40, 25)
	assert.Equal(t, float64(40), comp.ExternalFirstCorrespondingPct)
}

func TestAnalyzeAuthors_ExternalFirstAndCorrespondingForfeitsBoth(t *testing.T) {
	authors := []AuthorFacts{
		{AuthorType: models.AuthorFirstCorresponding, Category: models.CategoryExternalOther},
		{AuthorType: models.AuthorCo, Category: models.CategoryInternalFaculty},
	}

	comp := AnalyzeAuthors(authors, 40, 25)
	assert.Equal(t, float64(65), comp.ExternalFirstCorrespondingPct)
}

func TestAnalyzeAuthors_ExternalCoAuthorForfeitsNothing(t *testing.T) {
	authors := []AuthorFacts{
		{AuthorType: models.AuthorFirst, Category: models.CategoryInternalFaculty},
		{AuthorType: models.AuthorCo, Category: models.CategoryExternalAcademic},
	}

	comp := AnalyzeAuthors(authors, 40, 25)
	assert.Zero(t, comp.ExternalFirstCorrespondingPct)
	assert.Equal(t, 1, comp.CoAuthorCount)
	assert.Zero(t, comp.InternalCoAuthorCount)
}

func TestAnalyzeAuthors_Empty(t *testing.T) {
	comp := AnalyzeAuthors(nil, 40, 25)
	assert.Zero(t, comp.TotalAuthors)
}
