package checks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewDocumentationCheck builds the README-quality check.
func NewDocumentationCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "readme-quality",
		Category: "documentation",
		Weight:   1,
		Timeout:  10 * time.Second,
		Run:      runDocumentationCheck,
	}
}

var readmeCandidates = []string{
	"README.md", "README.txt", "README.rst", "README",
	"readme.md", "readme.txt", "readme.rst", "readme",
}

func runDocumentationCheck(_ context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	b := NewBuilder()

	var found []string
	for _, candidate := range readmeCandidates {
		if fileExists(filepath.Join(path, candidate)) {
			found = append(found, candidate)
		}
	}
	b.Metric("readme_files_found", len(found))

	if len(found) == 0 {
		b.WithScore(0)
		b.Finding("high", "no README file found",
			"create a README.md with project description, installation, and usage instructions")
		return b.Build(), nil
	}

	main := selectMainReadme(found)
	b.Metric("main_readme", main)

	content, err := os.ReadFile(filepath.Join(path, main))
	if err != nil {
		b.WithScore(20)
		b.Finding("medium", "unable to read README file", "check file permissions")
		return b.Build(), nil
	}

	score := scoreReadme(string(content), b)
	b.WithScore(score)
	return b.Build(), nil
}

func selectMainReadme(found []string) string {
	for _, priority := range []string{"README.md", "README.txt", "README.rst", "README"} {
		for _, f := range found {
			if strings.EqualFold(f, priority) {
				return f
			}
		}
	}
	return found[0]
}

func scoreReadme(content string, b *Builder) float64 {
	score := 20.0 // presence
	lower := strings.ToLower(content)
	lines := strings.Split(content, "\n")

	if len(content) < 100 {
		b.Finding("medium", "README is very short (<100 characters)", "add more detail about the project")
	} else if len(content) > 500 {
		score += 10
	}

	if hasTitle(lines) {
		score += 15
	} else {
		b.Finding("low", "README lacks a clear title or heading", "")
	}

	if containsAny(lower, "description", "about", "overview", "this project") || len(strings.TrimSpace(content)) > 200 {
		score += 15
	} else {
		b.Finding("medium", "README lacks a project description", "add a section explaining what the project does")
	}

	if containsAny(lower, "install", "setup", "getting started", "build", "compile") {
		score += 15
	} else {
		b.Finding("low", "README lacks installation instructions", "")
	}

	if containsAny(lower, "usage", "example", "how to", "tutorial") || strings.Contains(content, "```") {
		score += 15
	} else {
		b.Finding("low", "README lacks usage examples", "")
	}

	if containsAny(lower, "![", "badge", "shields.io") {
		score += 5
	}
	if containsAny(lower, "license", "mit", "apache", "gpl") {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

func hasTitle(lines []string) bool {
	limit := 10
	if len(lines) < limit {
		limit = len(lines)
	}
	for i, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ") {
			return true
		}
		if trimmed != "" && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next == strings.Repeat("=", len(trimmed)) || next == strings.Repeat("-", len(trimmed)) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
