package checks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// fakeHandle is a minimal coecore.RepoHandleView backed by a temp
// directory, used to exercise checks without the coesnap package.
type fakeHandle struct {
	localPath string
}

func (f fakeHandle) ID() string       { return "1" }
func (f fakeHandle) Name() string     { return "repo" }
func (f fakeHandle) FullName() string { return "org/repo" }
func (f fakeHandle) LocalPath() string {
	return f.localPath
}
func (f fakeHandle) APIData() any { return nil }
func (f fakeHandle) CacheGetOrCompute(_ string, compute func() (any, error)) (any, error) {
	return compute()
}

func TestBuiltin_AllRegisterable(t *testing.T) {
	descriptors := Builtin()
	if len(descriptors) != len(coecore.FixedCategories) {
		t.Fatalf("Builtin() returned %d checks, want %d (one per fixed category)", len(descriptors), len(coecore.FixedCategories))
	}
	seenCategories := make(map[string]bool)
	for _, d := range descriptors {
		if d.ID == "" {
			t.Error("check has empty ID")
		}
		if !coecore.ValidCategory(d.Category) {
			t.Errorf("check %s has invalid category %s", d.ID, d.Category)
		}
		if d.Run == nil {
			t.Errorf("check %s has nil Run func", d.ID)
		}
		if d.Weight <= 0 {
			t.Errorf("check %s has non-positive weight", d.ID)
		}
		seenCategories[d.Category] = true
	}
	for _, cat := range coecore.FixedCategories {
		if !seenCategories[cat] {
			t.Errorf("no built-in check covers category %s", cat)
		}
	}
}

func TestDocumentationCheck_NoReadme(t *testing.T) {
	dir := t.TempDir()
	result, err := runDocumentationCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != coecore.StatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}
	if result.Score == nil || *result.Score != 0 {
		t.Errorf("score = %v, want 0", result.Score)
	}
}

func TestDocumentationCheck_GoodReadme(t *testing.T) {
	dir := t.TempDir()
	content := "# My Project\n\nThis project does great things.\n\n## Installation\n\nRun `go install`.\n\n## Usage\n\n```go\nmain()\n```\n\n![build](https://shields.io/badge)\n\nLicensed under MIT.\n"
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(content), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	result, err := runDocumentationCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score == nil || *result.Score < 80 {
		t.Errorf("score = %v, want >= 80 for a complete README", result.Score)
	}
}

func TestDocumentationCheck_SkippedWithoutLocalPath(t *testing.T) {
	result, err := runDocumentationCheck(context.Background(), fakeHandle{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != coecore.StatusSkipped {
		t.Errorf("status = %s, want skipped", result.Status)
	}
	if result.Errors == "" {
		t.Error("expected an explanatory error for the missing local_path")
	}
}

func TestLicenseCheck_NoLicense(t *testing.T) {
	dir := t.TempDir()
	result, err := runLicenseCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score == nil || *result.Score != 0 {
		t.Errorf("score = %v, want 0", result.Score)
	}
}

func TestLicenseCheck_RecognizesMIT(t *testing.T) {
	dir := t.TempDir()
	mit := "MIT License\n\nCopyright (c) 2024 Example\n\nPermission is hereby granted, free of charge, to any person obtaining a copy\n...\nThe above copyright notice and this permission notice shall be included...\n"
	if err := os.WriteFile(filepath.Join(dir, "LICENSE"), []byte(mit), 0o644); err != nil {
		t.Fatalf("write license: %v", err)
	}

	result, err := runLicenseCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Result["license_type"] != "MIT" {
		t.Errorf("license_type = %v, want MIT", result.Result["license_type"])
	}
	if result.Score == nil || *result.Score < 80 {
		t.Errorf("score = %v, want >= 80", result.Score)
	}
}

func TestCIConfigCheck_DetectsGitHubActions(t *testing.T) {
	dir := t.TempDir()
	workflows := filepath.Join(dir, ".github", "workflows")
	if err := os.MkdirAll(workflows, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workflows, "ci.yml"), []byte("name: CI\non: push\n"), 0o644); err != nil {
		t.Fatalf("write workflow: %v", err)
	}

	result, err := runCIConfigCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Result["ci_configs_found"] != 1 {
		t.Errorf("ci_configs_found = %v, want 1", result.Result["ci_configs_found"])
	}
}

func TestComplexityCheck_NoGoFiles(t *testing.T) {
	dir := t.TempDir()
	result, err := runComplexityCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != coecore.StatusNotApplicable {
		t.Errorf("status = %s, want not_applicable", result.Status)
	}
}

func TestComplexityCheck_SimpleFunction(t *testing.T) {
	dir := t.TempDir()
	src := `package sample

func Add(a, b int) int {
	return a + b
}
`
	if err := os.WriteFile(filepath.Join(dir, "sample.go"), []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := runComplexityCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score == nil || *result.Score != 100 {
		t.Errorf("score = %v, want 100 for a trivial function", result.Score)
	}
}

func TestTestCoverageCheck_NoTests(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sample.go"), []byte("package sample\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := runTestCoverageCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score == nil || *result.Score != 0 {
		t.Errorf("score = %v, want 0", result.Score)
	}
}

func TestCommunityHealthCheck_AllPresent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "CONTRIBUTING.md"), []byte("contribute"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "CODE_OF_CONDUCT.md"), []byte("conduct"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := runCommunityHealthCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score == nil || *result.Score < 55 {
		t.Errorf("score = %v, want >= 55", result.Score)
	}
}

func TestRepositoryBloatCheck_FlagsBinaryArtifacts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "build.exe"), []byte("binary"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := runRepositoryBloatCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Result["binary_artifact_files"] != 1 {
		t.Errorf("binary_artifact_files = %v, want 1", result.Result["binary_artifact_files"])
	}
}

func TestDocumentationAccessibilityCheck_MissingAltText(t *testing.T) {
	dir := t.TempDir()
	content := "# Project\n\n![](img.png)\n\n![a cat](cat.png)\n"
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := runDocumentationAccessibilityCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Result["images_missing_alt_text"] != 1 {
		t.Errorf("images_missing_alt_text = %v, want 1", result.Result["images_missing_alt_text"])
	}
	if result.Score == nil || *result.Score != 50 {
		t.Errorf("score = %v, want 50", result.Score)
	}
}

func TestSecurityPolicyCheck_Present(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "SECURITY.md"), []byte("report vulnerabilities to security@example.com"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := runSecurityPolicyCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score == nil || *result.Score != 70 {
		t.Errorf("score = %v, want 70", result.Score)
	}
}

func TestFileSizeCheck_FlagsHugeFile(t *testing.T) {
	dir := t.TempDir()
	var content string
	for i := 0; i < 1200; i++ {
		content += "// line\n"
	}
	if err := os.WriteFile(filepath.Join(dir, "huge.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := runFileSizeCheck(context.Background(), fakeHandle{localPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Result["huge_files"] != 1 {
		t.Errorf("huge_files = %v, want 1", result.Result["huge_files"])
	}
}
