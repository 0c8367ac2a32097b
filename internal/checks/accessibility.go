package checks

import (
	"context"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewDocumentationAccessibilityCheck builds a check for documentation
// accessibility hygiene: new for this engine, grounded on the same
// README-reading idiom as the documentation check, applied to a
// different signal (alt text on embedded images, the most common
// README accessibility gap).
func NewDocumentationAccessibilityCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "readme-image-alt-text",
		Category: "accessibility",
		Weight:   1,
		Timeout:  5 * time.Second,
		Run:      runDocumentationAccessibilityCheck,
	}
}

var markdownImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)

func runDocumentationAccessibilityCheck(_ context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	found := firstExisting(path, readmeCandidates...)
	if found == "" {
		return coecore.RawResult{Status: coecore.StatusNotApplicable}, nil
	}

	content, err := readText(filepath.Join(path, found))
	if err != nil {
		return coecore.RawResult{}, err
	}

	matches := markdownImagePattern.FindAllStringSubmatch(content, -1)
	b := NewBuilder()
	b.Metric("images_found", len(matches))

	if len(matches) == 0 {
		b.WithScore(100)
		return b.Build(), nil
	}

	var missingAlt int
	for _, m := range matches {
		if len(m) < 2 || m[1] == "" {
			missingAlt++
		}
	}
	b.Metric("images_missing_alt_text", missingAlt)

	score := 100.0 * float64(len(matches)-missingAlt) / float64(len(matches))
	if missingAlt > 0 {
		b.Finding("low", "one or more README images lack alt text", "add descriptive alt text to embedded images")
	}
	b.WithScore(score)
	return b.Build(), nil
}
