package checks

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewSecurityPolicyCheck builds the security-policy presence check. Unlike
// scanner-backed vulnerability checks that shell out to per-language
// tooling (govulncheck, npm audit, safety, …), this engine never invokes
// external project tooling, so the check is limited to a filesystem
// presence probe for a SECURITY.md.
func NewSecurityPolicyCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "security-policy",
		Category: "security",
		Weight:   1,
		Timeout:  5 * time.Second,
		Run:      runSecurityPolicyCheck,
	}
}

var securityPolicyCandidates = []string{"SECURITY.md", filepath.Join(".github", "SECURITY.md"), "security.md"}

func runSecurityPolicyCheck(_ context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	b := NewBuilder()
	var found []string
	for _, candidate := range securityPolicyCandidates {
		if fileExists(filepath.Join(path, candidate)) {
			found = append(found, candidate)
		}
	}
	b.Metric("security_policy_files", len(found))

	if len(found) > 0 {
		b.Metric("security_policy_status", "present")
		b.WithScore(70)
		return b.Build(), nil
	}

	b.Metric("security_policy_status", "missing")
	b.WithScore(40)
	b.Finding("medium", "no security policy found", "add a SECURITY.md with vulnerability reporting guidelines")
	return b.Build(), nil
}
