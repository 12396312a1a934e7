package services

import (
	"research-incentive-api/models"

	"github.com/shopspring/decimal"
)

// CalculationInput carries everything the engine needs, already resolved.
// The engine is pure: no store lookups, no clock, no hidden state.
type CalculationInput struct {
	PublicationType string
	SubType         string // conference sub-type

	// Research paper metadata
	Quartile               string
	SJR                    *float64
	NaasRating             *float64
	SubsidiaryImpactFactor *float64
	IndexingCategories     []string

	// Book metadata
	BookType     string
	BookIndexing string

	// Conference metadata
	ProceedingsQuartile  string
	IsInternationalEvent bool
	BestPaperAward       string // bonus applies only on the explicit "yes"

	Policy *PolicyView // nil falls back to the documented default tables

	// This author
	AuthorRole     string
	AuthorPosition *int
	IsInternal     bool
	IsStudent      bool

	Composition AuthorComposition
}

// CalculationResult holds the pool totals and this author's personal slice.
// Pool totals always reflect the category's full value even when the personal
// share is zeroed (external author, position cutoff).
type CalculationResult struct {
	TotalPoolAmount int64 `json:"total_pool_amount"`
	TotalPoolPoints int64 `json:"total_pool_points"`
	IncentiveAmount int64 `json:"incentive_amount"`
	Points          int64 `json:"points"`
}

// Documented default tables, used when no policy row covers the publication
// date. Role percentages have no defaults on purpose: their absence is a
// configuration error.
var (
	defaultQuartileRates = map[string]Rate{
		"Q1": {Amount: 50000, Points: 50},
		"Q2": {Amount: 40000, Points: 40},
		"Q3": {Amount: 25000, Points: 25},
		"Q4": {Amount: 15000, Points: 15},
	}

	defaultConferenceQuartileRates = map[string]Rate{
		"Q1": {Amount: 25000, Points: 25},
		"Q2": {Amount: 20000, Points: 20},
		"Q3": {Amount: 12000, Points: 12},
		"Q4": {Amount: 8000, Points: 8},
	}

	defaultBookBase = map[string]Rate{
		models.BookAuthored: {Amount: 20000, Points: 20},
		models.BookEdited:   {Amount: 10000, Points: 10},
	}

	defaultBookIndexing = map[string]Rate{
		models.BookIndexScopus:  {Amount: 10000, Points: 10},
		models.BookIndexInHouse: {Amount: 2000, Points: 2},
		models.BookIndexNone:    {Amount: 0, Points: 0},
	}

	defaultConferenceFlat = map[string]Rate{
		models.ConferencePaperNotIndex + ":national":      {Amount: 5000, Points: 5},
		models.ConferencePaperNotIndex + ":international": {Amount: 10000, Points: 10},
		models.ConferenceKeynote + ":national":            {Amount: 10000, Points: 10},
		models.ConferenceKeynote + ":international":       {Amount: 20000, Points: 20},
		models.ConferenceOrganizer + ":national":          {Amount: 3000, Points: 3},
		models.ConferenceOrganizer + ":international":     {Amount: 6000, Points: 6},
	}

	defaultInternationalBonus = Rate{Amount: 5000, Points: 5}

	defaultPositionPct = map[int]float64{1: 40, 2: 25, 3: 15, 4: 12, 5: 8}
)

// CalculateIncentive computes the total pool for the contribution category and
// this author's personal share of it. A *ConfigurationError propagates and must
// block the business flow; any other failure is the caller's to absorb.
func CalculateIncentive(in CalculationInput) (CalculationResult, error) {
	switch in.PublicationType {
	case models.PubTypeBook, models.PubTypeBookChapter:
		return calculateBook(in), nil
	case models.PubTypeConferencePaper:
		if in.SubType == models.ConferencePaperScopus {
			return calculateConferenceScopus(in)
		}
		return calculateConferenceFlatSubtype(in), nil
	default:
		// research_paper, grant_proposal and anything category-driven
		return calculateResearchPaper(in)
	}
}

// calculateBook derives the pool from the authored/edited base plus indexing
// and international bonuses, split equally across all authors.
func calculateBook(in CalculationInput) CalculationResult {
	base := lookupRate(policyBookBase(in.Policy), defaultBookBase, in.BookType)
	bonus := lookupRate(policyBookIndexing(in.Policy), defaultBookIndexing, in.BookIndexing)

	pool := addRates(base, bonus)
	if in.IsInternationalEvent {
		pool = addRates(pool, internationalBonus(in.Policy))
	}

	result := CalculationResult{TotalPoolAmount: pool.Amount, TotalPoolPoints: pool.Points}
	if !in.IsInternal {
		return result
	}

	total := in.Composition.TotalAuthors
	if total < 1 {
		total = 1
	}
	result.IncentiveAmount = divideRound(pool.Amount, total)
	if !in.IsStudent {
		result.Points = divideRound(pool.Points, total)
	}
	return result
}

// calculateConferenceScopus handles Scopus-indexed proceedings: quartile pool
// with bonuses, role-weighted split. Role percentages must exist in the policy.
func calculateConferenceScopus(in CalculationInput) (CalculationResult, error) {
	quartiles := defaultConferenceQuartileRates
	if in.Policy != nil && len(in.Policy.QuartileRates) > 0 {
		quartiles = in.Policy.QuartileRates
	}
	pool := quartiles[in.ProceedingsQuartile]

	if in.IsInternationalEvent {
		pool = addRates(pool, internationalBonus(in.Policy))
	}
	if in.BestPaperAward == "yes" {
		pool = addRates(pool, bestPaperBonus(in.Policy))
	}

	result := CalculationResult{TotalPoolAmount: pool.Amount, TotalPoolPoints: pool.Points}
	if pool.Amount == 0 && pool.Points == 0 {
		return result, nil
	}
	if !in.IsInternal {
		return result, nil
	}

	if in.Policy == nil {
		return CalculationResult{}, &ConfigurationError{Message: "no conference policy configured for scopus-indexed proceedings"}
	}
	first, corresponding, err := in.Policy.RequireRolePercentages()
	if err != nil {
		return CalculationResult{}, err
	}

	amountPct, pointsPct := roleSharePercent(in, first, corresponding)
	result.IncentiveAmount = applyPercent(pool.Amount, amountPct)
	if !in.IsStudent {
		result.Points = applyPercent(pool.Points, pointsPct)
	}
	return result, nil
}

// calculateConferenceFlatSubtype handles the non-indexed sub-types. Keynote
// and organizer credit the full amount to the single presenter; non-indexed
// papers split equally across all authors.
func calculateConferenceFlatSubtype(in CalculationInput) CalculationResult {
	scope := "national"
	if in.IsInternationalEvent {
		scope = "international"
	}
	key := in.SubType + ":" + scope

	flats := defaultConferenceFlat
	if in.Policy != nil && len(in.Policy.ConferenceFlat) > 0 {
		flats = in.Policy.ConferenceFlat
	}
	pool := flats[key]
	if in.BestPaperAward == "yes" {
		pool = addRates(pool, bestPaperBonus(in.Policy))
	}

	result := CalculationResult{TotalPoolAmount: pool.Amount, TotalPoolPoints: pool.Points}
	if !in.IsInternal {
		return result
	}

	switch in.SubType {
	case models.ConferenceKeynote, models.ConferenceOrganizer:
		// Single presenter takes the full amount, no division.
		result.IncentiveAmount = pool.Amount
		if !in.IsStudent {
			result.Points = pool.Points
		}
	default:
		total := in.Composition.TotalAuthors
		if total < 1 {
			total = 1
		}
		result.IncentiveAmount = divideRound(pool.Amount, total)
		if !in.IsStudent {
			result.Points = divideRound(pool.Points, total)
		}
	}
	return result
}

// calculateResearchPaper evaluates every selected indexing category
// independently and keeps only the single highest-value one; categories are
// never summed. A zero pool returns all zeros early.
func calculateResearchPaper(in CalculationInput) (CalculationResult, error) {
	pool := highestCategoryRate(in)

	result := CalculationResult{TotalPoolAmount: pool.Amount, TotalPoolPoints: pool.Points}
	if pool.Amount == 0 && pool.Points == 0 {
		return CalculationResult{}, nil
	}
	if !in.IsInternal {
		return result, nil
	}

	if in.Policy != nil && in.Policy.DistributionMethod == models.DistributionPositionBased {
		amountPct := positionSharePercent(in)
		result.IncentiveAmount = applyPercent(pool.Amount, amountPct)
		if !in.IsStudent {
			result.Points = applyPercent(pool.Points, amountPct)
		}
		return result, nil
	}

	if in.Policy == nil {
		return CalculationResult{}, &ConfigurationError{Message: "no research paper policy configured for the publication date"}
	}
	first, corresponding, err := in.Policy.RequireRolePercentages()
	if err != nil {
		return CalculationResult{}, err
	}

	amountPct, pointsPct := roleSharePercent(in, first, corresponding)
	result.IncentiveAmount = applyPercent(pool.Amount, amountPct)
	if !in.IsStudent {
		result.Points = applyPercent(pool.Points, pointsPct)
	}
	return result, nil
}

// highestCategoryRate scores each indexing category and returns the best one.
func highestCategoryRate(in CalculationInput) Rate {
	var best Rate
	for _, category := range in.IndexingCategories {
		candidate := categoryRate(in, category)
		if candidate.Amount > best.Amount {
			best = candidate
		}
	}
	return best
}

func categoryRate(in CalculationInput, category string) Rate {
	switch category {
	case models.IndexScopus:
		quartiles := defaultQuartileRates
		if in.Policy != nil && len(in.Policy.QuartileRates) > 0 {
			quartiles = in.Policy.QuartileRates
		}
		return quartiles[in.Quartile]

	case models.IndexSCIE, models.IndexWOS:
		if in.Policy == nil || in.SJR == nil {
			return Rate{}
		}
		for _, r := range in.Policy.SJRRanges {
			if *in.SJR >= r.Min && (r.Max == nil || *in.SJR <= *r.Max) {
				return r.Rate
			}
		}
		return Rate{}

	case models.IndexNAAS:
		// Ratings below 6 are not creditable.
		if in.Policy == nil || in.NaasRating == nil || *in.NaasRating < 6 {
			return Rate{}
		}
		for _, band := range in.Policy.NAASBands {
			if *in.NaasRating >= band.Min && *in.NaasRating <= band.Max {
				return band.Rate
			}
		}
		return Rate{}

	case models.IndexSubsidiary:
		if in.Policy == nil || in.SubsidiaryImpactFactor == nil || *in.SubsidiaryImpactFactor <= 20 {
			return Rate{}
		}
		return in.Policy.CategoryRates[category]

	default:
		if in.Policy == nil {
			return Rate{}
		}
		return in.Policy.CategoryRates[category]
	}
}

// roleSharePercent resolves the percentage of the pool this author receives
// under role-based distribution. The points percentage differs only for
// co-authors, where students drop out of the denominator.
func roleSharePercent(in CalculationInput, first, corresponding float64) (amountPct, pointsPct float64) {
	comp := in.Composition

	switch {
	case comp.TotalAuthors == 1:
		pct := 100 - comp.ExternalFirstCorrespondingPct
		return pct, pct

	case comp.TotalAuthors == 2 && comp.InternalCoAuthorCount == 0 && comp.CoAuthorCount == 0:
		// Hard-coded parity: two non-co-authors always split 50/50
		// regardless of the configured percentages.
		return 50, 50
	}

	switch in.AuthorRole {
	case models.AuthorFirstCorresponding:
		pct := first + corresponding
		return pct, pct
	case models.AuthorFirst:
		return first, first
	case models.AuthorCorresponding:
		return corresponding, corresponding
	case models.AuthorCo:
		remainder := 100 - first - corresponding
		amountDiv := comp.InternalCoAuthorCount
		if amountDiv < 1 {
			amountDiv = 1
		}
		pointsDiv := comp.InternalEmployeeCoAuthorCount
		if pointsDiv < 1 {
			pointsDiv = 1
		}
		return remainder / float64(amountDiv), remainder / float64(pointsDiv)
	}
	return 0, 0
}

// positionSharePercent resolves the percentage under position-based
// distribution. Positions beyond 5, or a missing position, earn nothing.
func positionSharePercent(in CalculationInput) float64 {
	if in.AuthorPosition == nil || *in.AuthorPosition >= 6 || *in.AuthorPosition < 1 {
		return 0
	}
	table := defaultPositionPct
	if in.Policy != nil && len(in.Policy.PositionPct) > 0 {
		table = in.Policy.PositionPct
	}
	return table[*in.AuthorPosition]
}

func policyBookBase(p *PolicyView) map[string]Rate {
	if p == nil {
		return nil
	}
	return p.BookBase
}

func policyBookIndexing(p *PolicyView) map[string]Rate {
	if p == nil {
		return nil
	}
	return p.BookIndexing
}

func internationalBonus(p *PolicyView) Rate {
	if p == nil || (p.InternationalBonus.Amount == 0 && p.InternationalBonus.Points == 0) {
		return defaultInternationalBonus
	}
	return p.InternationalBonus
}

func bestPaperBonus(p *PolicyView) Rate {
	if p == nil {
		return Rate{}
	}
	return p.BestPaperBonus
}

func lookupRate(primary, fallback map[string]Rate, key string) Rate {
	if primary != nil {
		if rate, ok := primary[key]; ok {
			return rate
		}
	}
	return fallback[key]
}

func addRates(a, b Rate) Rate {
	return Rate{Amount: a.Amount + b.Amount, Points: a.Points + b.Points}
}

// applyPercent computes round-half-up(value * pct / 100) in integer units.
func applyPercent(value int64, pct float64) int64 {
	if pct <= 0 || value == 0 {
		return 0
	}
	return decimal.NewFromInt(value).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// divideRound computes round-half-up(value / n) for equal splits.
func divideRound(value int64, n int) int64 {
	if n <= 0 || value == 0 {
		return 0
	}
	return decimal.NewFromInt(value).
		Div(decimal.NewFromInt(int64(n))).
		Round(0).
		IntPart()
}
