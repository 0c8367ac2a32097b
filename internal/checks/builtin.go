package checks

import "github.com/fabriziosalmi/repolizer/internal/coecore"

// Builtin returns the descriptors for every built-in check, one per
// fixed category. Callers register them with coereg.Registry.Register
// (or MustRegister) before any engine run.
func Builtin() []coecore.CheckDescriptor {
	return []coecore.CheckDescriptor{
		NewDocumentationCheck(),
		NewSecurityPolicyCheck(),
		NewCIConfigCheck(),
		NewLicenseCheck(),
		NewComplexityCheck(),
		NewFileSizeCheck(),
		NewTestCoverageCheck(),
		NewCommunityHealthCheck(),
		NewRepositoryBloatCheck(),
		NewDocumentationAccessibilityCheck(),
	}
}
