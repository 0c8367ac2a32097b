package coeagg

import (
	"sort"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
	"github.com/fabriziosalmi/repolizer/internal/engine"
)

// AggregateCategory normalizes every outcome in cat and computes the
// category's weighted-mean score. W is the sum of weights over checks
// whose normalized score is non-null. When W is zero (every check is
// not_applicable), or when every check with a score failed or timed out,
// the category is degraded and scores 0.
func AggregateCategory(cat engine.CategoryOutcome) CategoryReport {
	checks := make(map[string]coecore.CanonicalResult, len(cat.Checks))

	var weightedSum, totalWeight float64
	allFailedOrTimedOut := true
	for _, outcome := range cat.Checks {
		normalized := Normalize(outcome)
		checks[outcome.ID] = normalized

		if normalized.Score == nil {
			continue // not_applicable: excluded from aggregation
		}
		if normalized.Status != coecore.StatusFailed && normalized.Status != coecore.StatusTimeout {
			allFailedOrTimedOut = false
		}
		weightedSum += *normalized.Score * outcome.Weight
		totalWeight += outcome.Weight
	}

	if totalWeight == 0 || allFailedOrTimedOut {
		return CategoryReport{Score: 0, Degraded: true, Checks: checks}
	}

	return CategoryReport{Score: round1(weightedSum / totalWeight), Degraded: false, Checks: checks}
}

// Options configures overall-score aggregation.
type Options struct {
	// StrictZeroInclusion, when true, includes degraded (score=0)
	// categories in the overall-score denominator. The default is false:
	// degraded categories are excluded so an uninformative zero does not
	// drag down the overall score.
	StrictZeroInclusion bool
	// CategoryWeights optionally overrides the default weight of 1 per
	// category; resolved via internal/config's weight overlay.
	CategoryWeights map[string]float64
}

// weightFor returns the configured weight for category, defaulting to 1.
func (o Options) weightFor(category string) float64 {
	if w, ok := o.CategoryWeights[category]; ok && w > 0 {
		return w
	}
	return 1
}

// BuildReport assembles the final RepoReport for one repository's engine
// outcome. timestamp should be supplied by the caller (e.g. a batch-wide
// monotonic clock) so a fixed clock produces deterministic ordering in
// tests.
func BuildReport(identity RepoIdentity, timestamp time.Time, outcome engine.RepositoryOutcome, opts Options) RepoReport {
	categories := make(map[string]CategoryReport, len(outcome.Categories))

	var weightedSum, totalWeight float64
	for _, cat := range outcome.Categories {
		report := AggregateCategory(cat)
		categories[cat.Category] = report

		if report.Degraded && !opts.StrictZeroInclusion {
			continue
		}
		w := opts.weightFor(cat.Category)
		weightedSum += report.Score * w
		totalWeight += w
	}

	overall := 0.0
	if totalWeight > 0 {
		overall = round1(weightedSum / totalWeight)
	}

	return RepoReport{
		Repository:   identity,
		Timestamp:    timestamp,
		OverallScore: overall,
		Categories:   categories,
	}
}

// SortedCategoryNames returns the categories of r in alphabetical order,
// for stable key ordering on serialization.
func SortedCategoryNames(r RepoReport) []string {
	names := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedCheckIDs returns the check ids of a category in sorted order.
func SortedCheckIDs(c CategoryReport) []string {
	ids := make([]string, 0, len(c.Checks))
	for id := range c.Checks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
