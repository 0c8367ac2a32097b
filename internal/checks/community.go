package checks

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewCommunityHealthCheck builds a community-health-files check, written
// in the same file-presence-detection idiom as the documentation and
// licensing checks, applied to GitHub's community-health file set.
func NewCommunityHealthCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "community-health-files",
		Category: "community",
		Weight:   1,
		Timeout:  5 * time.Second,
		Run:      runCommunityHealthCheck,
	}
}

var communityFileGroups = []struct {
	name       string
	candidates []string
	points     float64
}{
	{"contributing", []string{"CONTRIBUTING.md", filepath.Join(".github", "CONTRIBUTING.md")}, 30},
	{"code_of_conduct", []string{"CODE_OF_CONDUCT.md", filepath.Join(".github", "CODE_OF_CONDUCT.md")}, 25},
	{"issue_template", []string{filepath.Join(".github", "ISSUE_TEMPLATE.md"), filepath.Join(".github", "ISSUE_TEMPLATE")}, 20},
	{"pull_request_template", []string{filepath.Join(".github", "PULL_REQUEST_TEMPLATE.md")}, 15},
	{"funding", []string{filepath.Join(".github", "FUNDING.yml")}, 10},
}

func runCommunityHealthCheck(_ context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	b := NewBuilder()
	var score float64
	var present []string

	for _, group := range communityFileGroups {
		if found := firstExisting(path, group.candidates...); found != "" {
			score += group.points
			present = append(present, group.name)
		} else if group.name == "contributing" || group.name == "code_of_conduct" {
			b.Finding("low", "missing "+group.name+" file", "add a "+group.name+" file to help new contributors")
		}
	}

	b.Metric("community_files_present", present)
	if score > 100 {
		score = 100
	}
	b.WithScore(score)
	return b.Build(), nil
}
