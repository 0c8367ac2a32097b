package checks

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewCIConfigCheck builds the CI/CD configuration check.
func NewCIConfigCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "ci-config",
		Category: "ci_cd",
		Weight:   1,
		Timeout:  10 * time.Second,
		Run:      runCIConfigCheck,
	}
}

type ciConfig struct {
	path, kind string
}

func runCIConfigCheck(_ context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	b := NewBuilder()
	configs := findCIConfigs(path)
	b.Metric("ci_configs_found", len(configs))

	if len(configs) == 0 {
		b.WithScore(30)
		b.Finding("medium", "no CI/CD configuration found",
			"add CI/CD configuration (GitHub Actions, GitLab CI, etc.) to automate testing and deployment")
		return b.Build(), nil
	}

	kinds := make(map[string]bool)
	for i, cfg := range configs {
		b.Metric("ci_config_path_"+strconv.Itoa(i), cfg.path)
		kinds[cfg.kind] = true
	}

	score := 50.0
	if len(kinds) > 1 {
		score += 10 // more than one kind of CI system configured
	}
	if hasCachingHint(path, configs) {
		score += 20
	}
	if len(configs) >= 2 {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	b.WithScore(score)
	return b.Build(), nil
}

func findCIConfigs(repoPath string) []ciConfig {
	var configs []ciConfig

	workflowsDir := filepath.Join(repoPath, ".github", "workflows")
	if entries, err := os.ReadDir(workflowsDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && (strings.HasSuffix(entry.Name(), ".yml") || strings.HasSuffix(entry.Name(), ".yaml")) {
				configs = append(configs, ciConfig{path: filepath.Join(".github", "workflows", entry.Name()), kind: "github_actions"})
			}
		}
	}

	candidates := map[string][]string{
		"travis":  {".travis.yml", ".travis.yaml"},
		"circle":  {".circleci/config.yml", ".circleci/config.yaml"},
		"gitlab":  {".gitlab-ci.yml", ".gitlab-ci.yaml"},
		"jenkins": {"Jenkinsfile", "jenkins.yml", "jenkins.yaml"},
	}
	for kind, files := range candidates {
		for _, f := range files {
			if fileExists(filepath.Join(repoPath, f)) {
				configs = append(configs, ciConfig{path: f, kind: kind})
			}
		}
	}
	return configs
}

// hasCachingHint is a shallow heuristic: GitHub Actions workflow files
// that reference actions/cache or setup-* actions with a cache input
// are assumed to cache dependencies.
func hasCachingHint(repoPath string, configs []ciConfig) bool {
	for _, cfg := range configs {
		if cfg.kind != "github_actions" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(repoPath, cfg.path))
		if err != nil {
			continue
		}
		if strings.Contains(string(data), "actions/cache") || strings.Contains(string(data), "cache:") {
			return true
		}
	}
	return false
}
