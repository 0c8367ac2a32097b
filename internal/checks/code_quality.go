package checks

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewFileSizeCheck builds the source-file-size check. It reuses the
// same findGoFiles walk as the complexity check; large files are a
// common proxy for poor separation of concerns.
func NewFileSizeCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "source-file-size",
		Category: "code_quality",
		Weight:   1,
		Timeout:  30 * time.Second,
		Run:      runFileSizeCheck,
	}
}

const (
	largeFileLines  = 500
	hugeFileLines   = 1000
	largeFileWeight = 10
)

func runFileSizeCheck(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	files, err := findGoFiles(path)
	if err != nil {
		return coecore.RawResult{}, err
	}
	if len(files) == 0 {
		return coecore.RawResult{Status: coecore.StatusNotApplicable}, nil
	}

	b := NewBuilder()
	var largeFiles, hugeFiles, maxLines int

	for _, file := range files {
		if ctx.Err() != nil {
			return coecore.RawResult{}, ctx.Err()
		}
		lines, err := countLines(file)
		if err != nil {
			continue
		}
		if lines > maxLines {
			maxLines = lines
		}
		switch {
		case lines > hugeFileLines:
			hugeFiles++
		case lines > largeFileLines:
			largeFiles++
		}
	}

	b.Metric("files_analyzed", len(files))
	b.Metric("large_files", largeFiles)
	b.Metric("huge_files", hugeFiles)
	b.Metric("max_file_lines", maxLines)

	score := 100.0 - float64(largeFiles)*float64(largeFileWeight) - float64(hugeFiles)*float64(largeFileWeight*2)
	if score < 0 {
		score = 0
	}
	if hugeFiles > 0 {
		b.Finding("medium", "one or more files exceed 1000 lines", "split large files along clear responsibility boundaries")
	} else if largeFiles > 0 {
		b.Finding("low", "one or more files exceed 500 lines", "")
	}
	b.WithScore(score)
	return b.Build(), nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	return lines, scanner.Err()
}
