package models

// Central enum registry. Both request validation and the incentive engine
// resolve allowed values from here so the two can never drift apart.

// Publication types
const (
	PubTypeResearchPaper   = "research_paper"
	PubTypeBook            = "book"
	PubTypeBookChapter     = "book_chapter"
	PubTypeConferencePaper = "conference_paper"
	PubTypeGrantProposal   = "grant_proposal"
	PubTypeIPR             = "ipr"
)

// Contribution statuses
const (
	StatusDraft                 = "draft"
	StatusPendingMentorApproval = "pending_mentor_approval"
	StatusSubmitted             = "submitted"
	StatusUnderReview           = "under_review"
	StatusChangesRequired       = "changes_required"
	StatusResubmitted           = "resubmitted"
	StatusApproved              = "approved"
	StatusCompleted             = "completed"
	StatusRejected              = "rejected"
	StatusDeanRejected          = "dean_rejected" // legacy branch, kept for old rows

	// IPR chain
	StatusUnderDRDReview       = "under_drd_review"
	StatusRecommendedToHead    = "recommended_to_head"
	StatusDRDHeadApproved      = "drd_head_approved"
	StatusSubmittedToGovt      = "submitted_to_govt"
	StatusGovtApplicationFiled = "govt_application_filed"
	StatusPublished            = "published"
	StatusDRDRejected          = "drd_rejected"
	StatusGovtRejected         = "govt_rejected"
)

// Author roles
const (
	AuthorFirst              = "first_author"
	AuthorCorresponding      = "corresponding_author"
	AuthorFirstCorresponding = "first_and_corresponding_author"
	AuthorCo                 = "co_author"
)

// Author categories. Internal affiliation is derived from the prefix.
const (
	CategoryInternalFaculty  = "internal_faculty"
	CategoryInternalStudent  = "internal_student"
	CategoryExternalAcademic = "external_academic"
	CategoryExternalIndustry = "external_industry"
	CategoryExternalOther    = "external_other"
)

// Conference sub-types
const (
	ConferencePaperScopus   = "paper_indexed_scopus"
	ConferencePaperNotIndex = "paper_not_indexed"
	ConferenceKeynote       = "keynote_speaker_invited_talks"
	ConferenceOrganizer     = "organizer_coordinator_member"
)

// Book types
const (
	BookAuthored = "authored"
	BookEdited   = "edited"
)

// Book indexing
const (
	BookIndexScopus  = "scopus"
	BookIndexNone    = "non_indexed"
	BookIndexInHouse = "in_house"
)

// Indexing categories for research papers
const (
	IndexScopus     = "scopus"
	IndexSCIE       = "scie"
	IndexWOS        = "wos"
	IndexNAAS       = "naas"
	IndexSubsidiary = "subsidiary_journal"
	IndexESCI       = "esci"
	IndexUGCCare    = "ugc_care"
)

// Policy distribution methods
const (
	DistributionRoleBased     = "role_based"
	DistributionPositionBased = "position_based"
)

// Edit suggestion statuses and origins
const (
	SuggestionPending  = "pending"
	SuggestionAccepted = "accepted"
	SuggestionRejected = "rejected"

	SuggestionOriginReviewer = "reviewer"
	SuggestionOriginMentor   = "mentor"
)

// Review decisions
const (
	DecisionApproved        = "approved"
	DecisionRejected        = "rejected"
	DecisionChangesRequired = "changes_required"
	DecisionRecommended     = "recommended"
)

// Progress tracker statuses
const (
	TrackerWriting      = "writing"
	TrackerCommunicated = "communicated"
	TrackerSubmitted    = "submitted"
	TrackerAccepted     = "accepted"
	TrackerRejected     = "rejected"
	TrackerPublished    = "published"
)

// IPR types
const (
	IPRPatent    = "patent"
	IPRDesign    = "design"
	IPRCopyright = "copyright"
	IPRTrademark = "trademark"
)

// AllowedValues maps enum-constrained field names to their permitted values.
// Edit-suggestion acceptance validates against this table before applying a
// field change; contribution create/update uses the same table.
var AllowedValues = map[string][]string{
	"publication_type":     {PubTypeResearchPaper, PubTypeBook, PubTypeBookChapter, PubTypeConferencePaper, PubTypeGrantProposal, PubTypeIPR},
	"quartile":             {"Q1", "Q2", "Q3", "Q4"},
	"author_type":          {AuthorFirst, AuthorCorresponding, AuthorFirstCorresponding, AuthorCo},
	"author_category":      {CategoryInternalFaculty, CategoryInternalStudent, CategoryExternalAcademic, CategoryExternalIndustry, CategoryExternalOther},
	"conference_subtype":   {ConferencePaperScopus, ConferencePaperNotIndex, ConferenceKeynote, ConferenceOrganizer},
	"book_type":            {BookAuthored, BookEdited},
	"book_indexing":        {BookIndexScopus, BookIndexNone, BookIndexInHouse},
	"indexing_category":    {IndexScopus, IndexSCIE, IndexWOS, IndexNAAS, IndexSubsidiary, IndexESCI, IndexUGCCare},
	"ipr_type":             {IPRPatent, IPRDesign, IPRCopyright, IPRTrademark},
	"filing_type":          {"provisional", "complete", "pct"},
	"project_type":         {"internal", "sponsored", "consultancy"},
	"proceedings_quartile": {"Q1", "Q2", "Q3", "Q4"},
}

// IsAllowedValue reports whether value is permitted for the given enum field.
// Fields absent from the registry are not enum-constrained.
func IsAllowedValue(field, value string) bool {
	allowed, ok := AllowedValues[field]
	if !ok {
		return true
	}
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

// IsEnumField reports whether the field carries an enum constraint.
func IsEnumField(field string) bool {
	_, ok := AllowedValues[field]
	return ok
}

// IsInternalCategory reports institutional affiliation from the category prefix.
func IsInternalCategory(category string) bool {
	return len(category) >= 9 && category[:9] == "internal_"
}

// IsStudentCategory reports whether the category is the internal student one.
func IsStudentCategory(category string) bool {
	return category == CategoryInternalStudent
}
