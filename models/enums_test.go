package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedValue(t *testing.T) {
	assert.True(t, IsAllowedValue("quartile", "Q1"))
	assert.False(t, IsAllowedValue("quartile", "Q9"))
	assert.True(t, IsAllowedValue("author_type", AuthorFirstCorresponding))
	assert.False(t, IsAllowedValue("author_type", "ghost_author"))

	// Fields outside the registry carry no enum constraint.
	assert.True(t, IsAllowedValue("title", "anything"))
}

func TestIsEnumField(t *testing.T) {
	assert.True(t, IsEnumField("quartile"))
	assert.True(t, IsEnumField("ipr_type"))
	assert.False(t, IsEnumField("title"))
	assert.False(t, IsEnumField("sjr"))
}

func TestCategoryClassification(t *testing.T) {
	assert.True(t, IsInternalCategory(CategoryInternalFaculty))
	assert.True(t, IsInternalCategory(CategoryInternalStudent))
	assert.False(t, IsInternalCategory(CategoryExternalAcademic))
	assert.False(t, IsInternalCategory(""))

	assert.True(t, IsStudentCategory(CategoryInternalStudent))
	assert.False(t, IsStudentCategory(CategoryInternalFaculty))
}

func TestContributionIsTerminal(t *testing.T) {
	for _, status := range []string{StatusCompleted, StatusRejected, StatusDRDRejected, StatusGovtRejected} {
		c := Contribution{Status: status}
		assert.True(t, c.IsTerminal(), status)
	}
	for _, status := range []string{StatusDraft, StatusSubmitted, StatusApproved, StatusPublished} {
		c := Contribution{Status: status}
		assert.False(t, c.IsTerminal(), status)
	}
}

func TestIndexingCategoryList(t *testing.T) {
	c := Contribution{IndexingCategories: "scopus, scie ,,wos"}
	assert.Equal(t, []string{"scopus", "scie", "wos"}, c.IndexingCategoryList())

	empty := Contribution{IndexingCategories: "  "}
	assert.Nil(t, empty.IndexingCategoryList())
}
