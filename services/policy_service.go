package services

import (
	"fmt"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"strconv"
	"sync"
	"time"
)

var (
	policyCacheMu sync.RWMutex
	policyCache   *policyCacheEntry
	policyTTL     = 5 * time.Minute
)

type policyCacheEntry struct {
	policies  []models.IncentivePolicy
	fetchedAt time.Time
}

// Rate pairs a currency amount with its academic points.
type Rate struct {
	Amount int64
	Points int64
}

// SJRRange matches an SJR value into an amount/points pair. A nil Max means
// the range is open-ended.
type SJRRange struct {
	Min  float64
	Max  *float64
	Rate Rate
}

// RatingBand matches a NAAS rating into an amount/points pair.
type RatingBand struct {
	Min  float64
	Max  float64
	Rate Rate
}

// PolicyView is the resolved, immutable policy value object the incentive
// engine consumes. The engine never touches the store; the lookup happens
// here, before calculation.
type PolicyView struct {
	PublicationType        string
	SubType                string
	DistributionMethod     string
	FirstAuthorPct         *float64
	CorrespondingAuthorPct *float64
	PositionPct            map[int]float64
	QuartileRates          map[string]Rate
	SJRRanges              []SJRRange
	NAASBands              []RatingBand
	CategoryRates          map[string]Rate
	BookBase               map[string]Rate
	BookIndexing           map[string]Rate
	ConferenceFlat         map[string]Rate
	InternationalBonus     Rate
	BestPaperBonus         Rate
	Flat                   Rate
}

func loadPolicies(force bool) (*policyCacheEntry, error) {
	policyCacheMu.RLock()
	cached := policyCache
	policyCacheMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < policyTTL {
		return cached, nil
	}

	policyCacheMu.Lock()
	defer policyCacheMu.Unlock()

	if policyCache != nil && !force && time.Since(policyCache.fetchedAt) < policyTTL {
		return policyCache, nil
	}

	var rows []models.IncentivePolicy
	if err := config.DB.Preload("Rates", "delete_at IS NULL").
		Where("delete_at IS NULL AND is_active = ?", true).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load incentive policies: %w", err)
	}

	entry := &policyCacheEntry{policies: rows, fetchedAt: time.Now()}
	policyCache = entry
	return entry, nil
}

// ClearPolicyCache invalidates the in-memory policy cache. Admin policy
// mutations call this so new versions take effect immediately.
func ClearPolicyCache() {
	policyCacheMu.Lock()
	defer policyCacheMu.Unlock()
	policyCache = nil
}

// SelectActivePolicy picks, from candidate rows, the single policy whose
// effective_from is the latest one not after asOf while the validity window
// still covers asOf. Returns nil when nothing matches; the caller decides
// between documented defaults and a hard error.
func SelectActivePolicy(rows []models.IncentivePolicy, pubType, subType string, asOf time.Time) *models.IncentivePolicy {
	var best *models.IncentivePolicy
	for i := range rows {
		row := &rows[i]
		if row.PublicationType != pubType || !row.IsActive || row.DeleteAt != nil {
			continue
		}
		rowSub := ""
		if row.SubType != nil {
			rowSub = *row.SubType
		}
		if rowSub != subType {
			continue
		}
		if row.EffectiveFrom.After(asOf) {
			continue
		}
		if row.EffectiveTo != nil && row.EffectiveTo.Before(asOf) {
			continue
		}
		if best == nil || row.EffectiveFrom.After(best.EffectiveFrom) {
			best = row
		}
	}
	return best
}

// FindActivePolicy resolves the active policy for a publication type/sub-type
// as of the given date and builds the immutable view the engine consumes.
// Returns (nil, nil) when no policy row matches.
func FindActivePolicy(pubType, subType string, asOf time.Time) (*PolicyView, error) {
	entry, err := loadPolicies(false)
	if err != nil {
		return nil, err
	}

	row := SelectActivePolicy(entry.policies, pubType, subType, asOf)
	if row == nil {
		// Refresh once in case a newly inserted policy has not hit the cache.
		entry, err = loadPolicies(true)
		if err != nil {
			return nil, err
		}
		row = SelectActivePolicy(entry.policies, pubType, subType, asOf)
	}
	if row == nil {
		return nil, nil
	}

	view := BuildPolicyView(row)
	return view, nil
}

// BuildPolicyView flattens a policy row and its rates into a PolicyView.
func BuildPolicyView(p *models.IncentivePolicy) *PolicyView {
	view := &PolicyView{
		PublicationType:        p.PublicationType,
		DistributionMethod:     p.DistributionMethod,
		FirstAuthorPct:         p.FirstAuthorPct,
		CorrespondingAuthorPct: p.CorrespondingAuthorPct,
		PositionPct:            make(map[int]float64),
		QuartileRates:          make(map[string]Rate),
		CategoryRates:          make(map[string]Rate),
		BookBase:               make(map[string]Rate),
		BookIndexing:           make(map[string]Rate),
		ConferenceFlat:         make(map[string]Rate),
		InternationalBonus:     Rate{Amount: p.InternationalBonusAmount, Points: p.InternationalBonusPoints},
		BestPaperBonus:         Rate{Amount: p.BestPaperBonusAmount, Points: p.BestPaperBonusPoints},
		Flat:                   Rate{Amount: p.FlatAmount, Points: p.FlatPoints},
	}
	if p.SubType != nil {
		view.SubType = *p.SubType
	}

	for _, rate := range p.Rates {
		if rate.DeleteAt != nil {
			continue
		}
		pair := Rate{Amount: rate.Amount, Points: rate.Points}
		switch rate.RateKind {
		case models.RateKindQuartile:
			view.QuartileRates[rate.MatchKey] = pair
		case models.RateKindSJRRange:
			r := SJRRange{Rate: pair, Max: rate.MaxValue}
			if rate.MinValue != nil {
				r.Min = *rate.MinValue
			}
			view.SJRRanges = append(view.SJRRanges, r)
		case models.RateKindNAASBand:
			band := RatingBand{Rate: pair}
			if rate.MinValue != nil {
				band.Min = *rate.MinValue
			}
			if rate.MaxValue != nil {
				band.Max = *rate.MaxValue
			}
			view.NAASBands = append(view.NAASBands, band)
		case models.RateKindFlatCategory:
			view.CategoryRates[rate.MatchKey] = pair
		case models.RateKindPosition:
			if pos, err := strconv.Atoi(rate.MatchKey); err == nil {
				view.PositionPct[pos] = float64(rate.Amount)
			}
		case models.RateKindBookBase:
			view.BookBase[rate.MatchKey] = pair
		case models.RateKindBookIndexing:
			view.BookIndexing[rate.MatchKey] = pair
		case models.RateKindConferenceFlat:
			view.ConferenceFlat[rate.MatchKey] = pair
		}
	}
	return view
}

// RequireRolePercentages enforces the mandatory first/corresponding
// percentages for research-paper (and conference-Scopus) policies. Absence is
// a configuration error, never a silent default.
func (v *PolicyView) RequireRolePercentages() (first, corresponding float64, err error) {
	if v.FirstAuthorPct == nil || v.CorrespondingAuthorPct == nil {
		return 0, 0, &ConfigurationError{
			Message: fmt.Sprintf("policy for %s is missing first/corresponding author percentages", v.PublicationType),
		}
	}
	return *v.FirstAuthorPct, *v.CorrespondingAuthorPct, nil
}
