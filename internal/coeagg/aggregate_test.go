package coeagg

import (
	"testing"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
	"github.com/fabriziosalmi/repolizer/internal/engine"
)

func scorePtr(v float64) *float64 { return &v }

func TestNormalize_MinimumScoreOfOneForCompleted(t *testing.T) {
	out := engine.Outcome{ID: "a", Raw: coecore.RawResult{Status: coecore.StatusCompleted, Score: scorePtr(0)}}
	n := Normalize(out)
	if n.Score == nil || *n.Score != 1 {
		t.Errorf("score = %v, want 1 (minimum-of-1 rule)", n.Score)
	}
}

func TestNormalize_FailedSkippedTimeoutScoreZero(t *testing.T) {
	for _, status := range []coecore.Status{coecore.StatusFailed, coecore.StatusSkipped, coecore.StatusTimeout} {
		out := engine.Outcome{ID: "a", Raw: coecore.RawResult{Status: status}}
		n := Normalize(out)
		if n.Score == nil || *n.Score != 0 {
			t.Errorf("status %s: score = %v, want 0", status, n.Score)
		}
	}
}

func TestNormalize_NotApplicableScoreNull(t *testing.T) {
	out := engine.Outcome{ID: "a", Raw: coecore.RawResult{Status: coecore.StatusNotApplicable}}
	n := Normalize(out)
	if n.Score != nil {
		t.Errorf("score = %v, want nil for not_applicable", *n.Score)
	}
}

func TestNormalize_ScoreClampedAndRounded(t *testing.T) {
	out := engine.Outcome{ID: "a", Raw: coecore.RawResult{Status: coecore.StatusCompleted, Score: scorePtr(123.456)}}
	n := Normalize(out)
	if n.Score == nil || *n.Score != 100 {
		t.Errorf("score = %v, want 100 (clamped)", n.Score)
	}
}

func TestNormalize_UnknownStatusBecomesFailed(t *testing.T) {
	out := engine.Outcome{ID: "a", Raw: coecore.RawResult{Status: "bogus"}}
	n := Normalize(out)
	if n.Status != coecore.StatusFailed {
		t.Errorf("status = %s, want failed for an unrecognized raw status", n.Status)
	}
}

func TestNormalize_ResultNeverNull(t *testing.T) {
	out := engine.Outcome{ID: "a", Raw: coecore.RawResult{Status: coecore.StatusSkipped}}
	n := Normalize(out)
	if n.Result == nil {
		t.Error("Result must never be nil")
	}
}

// Three checks with (weight,score) = (1,80), (2,50), (1,null) -> category
// score = round1((1*80 + 2*50) / (1+2)) = 60.0.
func TestAggregateCategory_S4AggregationMath(t *testing.T) {
	cat := engine.CategoryOutcome{
		Category: "security",
		Checks: []engine.Outcome{
			{ID: "a", Category: "security", Weight: 1, Raw: coecore.RawResult{Status: coecore.StatusCompleted, Score: scorePtr(80)}},
			{ID: "b", Category: "security", Weight: 2, Raw: coecore.RawResult{Status: coecore.StatusCompleted, Score: scorePtr(50)}},
			{ID: "c", Category: "security", Weight: 1, Raw: coecore.RawResult{Status: coecore.StatusNotApplicable}},
		},
	}

	report := AggregateCategory(cat)
	if report.Score != 60.0 {
		t.Errorf("Score = %v, want 60.0", report.Score)
	}
	if report.Degraded {
		t.Error("expected Degraded = false")
	}
}

func TestAggregateCategory_AllExcludedIsDegraded(t *testing.T) {
	cat := engine.CategoryOutcome{
		Category: "security",
		Checks: []engine.Outcome{
			{ID: "a", Category: "security", Weight: 1, Raw: coecore.RawResult{Status: coecore.StatusFailed}},
			{ID: "b", Category: "security", Weight: 1, Raw: coecore.RawResult{Status: coecore.StatusTimeout}},
		},
	}

	report := AggregateCategory(cat)
	if !report.Degraded {
		t.Error("expected Degraded = true when every check scores 0/failed/timeout")
	}
	// Note: failed/timeout normalize to score=0, non-null, so they DO
	// contribute weight; only not_applicable (null score) is excluded.
	// Here W=2 and weightedSum=0: the category is degraded because every
	// check in it failed or timed out, not because W=0.
	if report.Score != 0 {
		t.Errorf("Score = %v, want 0", report.Score)
	}
}

func TestAggregateCategory_AllNotApplicableIsDegradedByZeroWeight(t *testing.T) {
	cat := engine.CategoryOutcome{
		Category: "security",
		Checks: []engine.Outcome{
			{ID: "a", Category: "security", Weight: 1, Raw: coecore.RawResult{Status: coecore.StatusNotApplicable}},
		},
	}

	report := AggregateCategory(cat)
	if !report.Degraded {
		t.Error("expected Degraded = true when W=0 (all checks not_applicable)")
	}
	if report.Score != 0 {
		t.Errorf("Score = %v, want 0", report.Score)
	}
}

func TestBuildReport_StrictZeroInclusionTogglesDenominator(t *testing.T) {
	outcome := engine.RepositoryOutcome{
		Categories: []engine.CategoryOutcome{
			{Category: "security", Checks: []engine.Outcome{
				{ID: "a", Category: "security", Weight: 1, Raw: coecore.RawResult{Status: coecore.StatusCompleted, Score: scorePtr(80)}},
			}},
			{Category: "testing", Checks: []engine.Outcome{
				{ID: "b", Category: "testing", Weight: 1, Raw: coecore.RawResult{Status: coecore.StatusNotApplicable}},
			}},
		},
	}

	excluded := BuildReport(RepoIdentity{ID: "1"}, time.Unix(0, 0), outcome, Options{StrictZeroInclusion: false})
	if excluded.OverallScore != 80 {
		t.Errorf("excluded overall = %v, want 80 (degraded testing category excluded)", excluded.OverallScore)
	}

	included := BuildReport(RepoIdentity{ID: "1"}, time.Unix(0, 0), outcome, Options{StrictZeroInclusion: true})
	if included.OverallScore != 40 {
		t.Errorf("included overall = %v, want 40 ((80+0)/2)", included.OverallScore)
	}
}

func TestSortedCategoryNamesAndCheckIDs(t *testing.T) {
	r := RepoReport{Categories: map[string]CategoryReport{
		"testing":  {Checks: map[string]coecore.CanonicalResult{"zeta": {}, "alpha": {}}},
		"security": {},
	}}

	cats := SortedCategoryNames(r)
	if len(cats) != 2 || cats[0] != "security" || cats[1] != "testing" {
		t.Errorf("SortedCategoryNames = %v, want [security testing]", cats)
	}

	ids := SortedCheckIDs(r.Categories["testing"])
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "zeta" {
		t.Errorf("SortedCheckIDs = %v, want [alpha zeta]", ids)
	}
}
