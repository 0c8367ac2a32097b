package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fabriziosalmi/repolizer/internal/config"
)

// GetRepoDir returns the local directory a repository entry resolves to:
// its explicit Path if set, otherwise the URL's basename.
func GetRepoDir(repo config.Repository) string {
	if repo.Path != "" {
		return repo.Path
	}
	dir := filepath.Base(repo.URL)
	return strings.TrimSuffix(dir, ".git")
}

// IsGitRepository checks if the given directory is a git repository.
func IsGitRepository(dir string) bool {
	gitDir := filepath.Join(dir, ".git")
	info, err := os.Stat(gitDir)
	return err == nil && info.IsDir()
}

// ExtractOwnerAndRepo extracts the owner and repository name from a GitHub URL.
func ExtractOwnerAndRepo(url string) (owner string, repo string, err error) {
	if strings.HasPrefix(url, "git@github.com:") {
		path := strings.TrimPrefix(url, "git@github.com:")
		path = strings.TrimSuffix(path, ".git")
		parts := strings.Split(path, "/")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid GitHub URL format: %s", url)
		}
		return parts[0], parts[1], nil
	}

	if strings.HasPrefix(url, "https://github.com/") {
		path := strings.TrimPrefix(url, "https://github.com/")
		path = strings.TrimSuffix(path, ".git")
		parts := strings.Split(path, "/")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid GitHub URL format: %s", url)
		}
		return parts[0], parts[1], nil
	}

	return "", "", fmt.Errorf("unsupported URL format: %s", url)
}

// EnsureDirectoryExists ensures that a directory exists, creating it if necessary.
func EnsureDirectoryExists(path string) error {
	return os.MkdirAll(path, 0750)
}
