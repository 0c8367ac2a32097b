package checks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewTestCoverageCheck builds a test-file-ratio check, written in the
// same filesystem-walk idiom as maintainability's findGoFiles.
func NewTestCoverageCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "test-file-ratio",
		Category: "testing",
		Weight:   1,
		Timeout:  30 * time.Second,
		Run:      runTestCoverageCheck,
	}
}

func runTestCoverageCheck(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	var sourceFiles, testFiles int
	err := filepath.Walk(path, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			if info.Name() == "vendor" || info.Name() == ".git" || info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case strings.HasSuffix(p, "_test.go"), strings.HasSuffix(p, ".test.ts"), strings.HasSuffix(p, ".test.js"),
			strings.HasSuffix(p, "_test.py"), strings.HasPrefix(filepath.Base(p), "test_"):
			testFiles++
		case strings.HasSuffix(p, ".go"), strings.HasSuffix(p, ".py"), strings.HasSuffix(p, ".ts"), strings.HasSuffix(p, ".js"):
			sourceFiles++
		}
		return nil
	})
	if err != nil {
		return coecore.RawResult{}, err
	}

	if sourceFiles == 0 && testFiles == 0 {
		return coecore.RawResult{Status: coecore.StatusNotApplicable}, nil
	}

	b := NewBuilder()
	b.Metric("source_files", sourceFiles)
	b.Metric("test_files", testFiles)

	if testFiles == 0 {
		b.Metric("test_ratio", 0.0)
		b.WithScore(0)
		b.Finding("high", "no test files found", "add tests alongside production code")
		return b.Build(), nil
	}

	ratio := float64(testFiles) / float64(sourceFiles+testFiles)
	b.Metric("test_ratio", ratio)

	score := ratio * 200 // a 1:1 test:source file ratio already scores 100
	if score > 100 {
		score = 100
	}
	if ratio < 0.1 {
		b.Finding("medium", "test file ratio is low relative to source files", "increase test coverage for core packages")
	}
	b.WithScore(score)
	return b.Build(), nil
}
