package checks

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewRepositoryBloatCheck builds a check for build artifacts and large
// binaries accidentally committed to the repository: new for this
// engine, grounded on the same filepath.Walk idiom as the complexity and
// file-size checks, applied to a different signal (repository weight
// rather than code structure).
func NewRepositoryBloatCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "repository-bloat",
		Category: "performance",
		Weight:   1,
		Timeout:  30 * time.Second,
		Run:      runRepositoryBloatCheck,
	}
}

const largeBlobBytes = 5 * 1024 * 1024 // 5 MiB

var bloatExtensions = map[string]bool{
	".zip": true, ".tar": true, ".gz": true, ".jar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".iso": true, ".mp4": true, ".mov": true,
}

func runRepositoryBloatCheck(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	var largeBlobs, bloatExtFiles int
	err := filepath.Walk(path, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Size() > largeBlobBytes {
			largeBlobs++
		}
		if bloatExtensions[filepath.Ext(p)] {
			bloatExtFiles++
		}
		return nil
	})
	if err != nil {
		return coecore.RawResult{}, err
	}

	b := NewBuilder()
	b.Metric("large_blobs", largeBlobs)
	b.Metric("binary_artifact_files", bloatExtFiles)

	score := 100.0 - float64(largeBlobs)*15 - float64(bloatExtFiles)*10
	if score < 0 {
		score = 0
	}
	if largeBlobs > 0 {
		b.Finding("medium", "large files (>5MB) committed to the repository", "use Git LFS or external storage for large binary assets")
	}
	if bloatExtFiles > 0 {
		b.Finding("low", "build artifacts appear to be committed", "add a .gitignore entry and remove generated binaries from version control")
	}
	b.WithScore(score)
	return b.Build(), nil
}
