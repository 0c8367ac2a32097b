// Package checks holds the built-in check implementations, one file per
// fixed category. Each exposes a coecore.CheckDescriptor built by its
// NewXxxCheck constructor, ready for coereg.Registry.Register.
package checks

import (
	"os"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// Finding is a single issue or observation surfaced by a check, folded
// into the raw result's Result map under "findings" as one
// severity-tagged list, since coecore.RawResult has no separate
// issue/warning fields.
type Finding struct {
	Severity   string `json:"severity"` // "high", "medium", "low"
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Builder accumulates metrics and findings into a coecore.RawResult.
type Builder struct {
	score    float64
	status   coecore.Status
	metrics  map[string]any
	findings []Finding
}

// NewBuilder starts a result at score 0 / status completed; call
// WithScore and WithStatus to set the final verdict.
func NewBuilder() *Builder {
	return &Builder{
		status:  coecore.StatusCompleted,
		metrics: make(map[string]any),
	}
}

func (b *Builder) WithScore(score float64) *Builder {
	b.score = score
	return b
}

func (b *Builder) WithStatus(status coecore.Status) *Builder {
	b.status = status
	return b
}

func (b *Builder) Metric(key string, value any) *Builder {
	b.metrics[key] = value
	return b
}

func (b *Builder) Finding(severity, message, suggestion string) *Builder {
	b.findings = append(b.findings, Finding{Severity: severity, Message: message, Suggestion: suggestion})
	return b
}

// Build assembles the coecore.RawResult. findings are flattened into
// plain maps rather than kept as the Finding type directly, since
// RawResult.Result is a map[string]any that the Normalizer passes
// through to JSON untouched.
func (b *Builder) Build() coecore.RawResult {
	findings := make([]map[string]any, 0, len(b.findings))
	for _, f := range b.findings {
		entry := map[string]any{"severity": f.Severity, "message": f.Message}
		if f.Suggestion != "" {
			entry["suggestion"] = f.Suggestion
		}
		findings = append(findings, entry)
	}
	b.metrics["findings"] = findings

	score := b.score
	return coecore.RawResult{
		Status: b.status,
		Score:  &score,
		Result: b.metrics,
	}
}

// fileExists is the shared existence probe every filesystem-backed check
// uses.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// firstExisting returns the first candidate under dir that exists, or
// "" if none do.
func firstExisting(dir string, candidates ...string) string {
	for _, c := range candidates {
		if fileExists(dir + string(os.PathSeparator) + c) {
			return c
		}
	}
	return ""
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
