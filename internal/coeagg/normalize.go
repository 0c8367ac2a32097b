package coeagg

import (
	"math"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
	"github.com/fabriziosalmi/repolizer/internal/engine"
)

// Normalize converts an engine.Outcome into the canonical CheckResult shape.
// It is the single place the minimum-score-of-1 rule for completed checks
// is applied, uniformly, regardless of what any individual check's raw
// result did.
func Normalize(o engine.Outcome) coecore.CanonicalResult {
	status := o.Raw.Status
	if !status.Terminal() {
		status = coecore.StatusFailed
	}

	result := o.Raw.Result
	if result == nil {
		result = map[string]any{}
	}

	var errs *string
	if o.Raw.Errors != "" {
		e := o.Raw.Errors
		errs = &e
	}

	canonical := coecore.CanonicalResult{
		Status:     status,
		Result:     result,
		Errors:     errs,
		Metadata:   o.Raw.Metadata,
		DurationMs: o.DurationMs,
	}

	switch status {
	case coecore.StatusNotApplicable:
		canonical.Score = nil

	case coecore.StatusFailed, coecore.StatusSkipped, coecore.StatusTimeout:
		zero := 0.0
		canonical.Score = &zero

	case coecore.StatusCompleted, coecore.StatusPartial:
		raw := 0.0
		if o.Raw.Score != nil {
			raw = *o.Raw.Score
		}
		clamped := clamp(raw, 0, 100)
		if status == coecore.StatusCompleted && clamped < 1 {
			clamped = 1
		}
		rounded := round1(clamped)
		canonical.Score = &rounded
	}

	return canonical
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round1 rounds v to one decimal place, half-away-from-zero.
func round1(v float64) float64 {
	if v < 0 {
		return -round1(-v)
	}
	return math.Floor(v*10+0.5) / 10
}
