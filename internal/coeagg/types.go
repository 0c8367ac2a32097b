// Package coeagg implements the Result Normalizer & Aggregator: it
// converts each check's raw return into the canonical CheckResult shape,
// then computes weighted category and overall scores.
package coeagg

import (
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// RepoIdentity is the minimal repository identity carried in a RepoReport.
type RepoIdentity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// CategoryReport is one category's aggregated outcome.
type CategoryReport struct {
	Score    float64                            `json:"score"`
	Degraded bool                                `json:"degraded"`
	Checks   map[string]coecore.CanonicalResult `json:"checks"`
}

// RepoReport is the final, per-repository record appended to the output
// stream.
type RepoReport struct {
	Repository   RepoIdentity              `json:"repository"`
	Timestamp    time.Time                  `json:"timestamp"`
	OverallScore float64                    `json:"overall_score"`
	Categories   map[string]CategoryReport `json:"categories"`
}
