package services

import (
	"research-incentive-api/models"
)

// AuthorFacts is the minimal descriptor the analyzer needs per contributor.
// The applicant is folded in as a regular entry by the caller.
type AuthorFacts struct {
	AuthorType string
	Category   string
}

// AuthorComposition carries the aggregate counts the split math needs.
// ExternalFirstCorrespondingPct is the sum of role percentages forfeited
// because an external author holds first/corresponding/both; that amount is
// redistributed among internal co-authors, not paid out.
type AuthorComposition struct {
	TotalAuthors                  int
	InternalCount                 int
	ExternalCount                 int
	CoAuthorCount                 int
	InternalCoAuthorCount         int
	InternalEmployeeCoAuthorCount int
	ExternalFirstCorrespondingPct float64
}

// AnalyzeAuthors classifies every contributor and accumulates the counts and
// forfeited percentages used by the incentive split. firstPct/correspondingPct
// are the policy role percentages; they only matter when an external author
// holds a first/corresponding role.
//
// External co-author shares are not forfeited: redistribution counts only
// internal co-authors as recipients, so the external slice folds back into the
// internal co-author pool. The asymmetry with first/corresponding forfeiture
// is deliberate institutional policy.
func AnalyzeAuthors(authors []AuthorFacts, firstPct, correspondingPct float64) AuthorComposition {
	comp := AuthorComposition{TotalAuthors: len(authors)}

	for _, a := range authors {
		internal := models.IsInternalCategory(a.Category)
		student := models.IsStudentCategory(a.Category)

		if internal {
			comp.InternalCount++
		} else {
			comp.ExternalCount++
		}

		switch a.AuthorType {
		case models.AuthorCo:
			comp.CoAuthorCount++
			if internal {
				comp.InternalCoAuthorCount++
				if !student {
					comp.InternalEmployeeCoAuthorCount++
				}
			}
		case models.AuthorFirst:
			if !internal {
				comp.ExternalFirstCorrespondingPct += firstPct
			}
		case models.AuthorCorresponding:
			if !internal {
				comp.ExternalFirstCorrespondingPct += correspondingPct
			}
		case models.AuthorFirstCorresponding:
			if !internal {
				comp.ExternalFirstCorrespondingPct += firstPct + correspondingPct
			}
		}
	}

	return comp
}
