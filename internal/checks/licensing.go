package checks

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewLicenseCheck builds the license-compliance check.
func NewLicenseCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "license-compliance",
		Category: "licensing",
		Weight:   1,
		Timeout:  5 * time.Second,
		Run:      runLicenseCheck,
	}
}

var licenseCandidates = []string{
	"LICENSE", "LICENSE.txt", "LICENSE.md", "LICENSE.rst",
	"COPYING", "COPYING.txt", "COPYRIGHT", "COPYRIGHT.txt",
}

var licenseSignatures = map[string][]string{
	"MIT":          {"mit license", "permission is hereby granted, free of charge"},
	"Apache-2.0":   {"apache license", "version 2.0"},
	"GPL-3.0":      {"gnu general public license", "version 3"},
	"BSD-3-Clause": {"bsd license", "redistribution and use in source and binary forms", "neither the name of"},
	"ISC":          {"isc license", "permission to use, copy, modify"},
	"Unlicense":    {"unlicense", "this is free and unencumbered software"},
}

var licensePlaceholders = []string{
	"[year]", "[yyyy]", "<year>", "{year}",
	"[name]", "[fullname]", "<name>", "{name}", "[copyright holder]",
	"[organization]", "<organization>", "{organization}",
}

func runLicenseCheck(_ context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	b := NewBuilder()
	found := firstExisting(path, licenseCandidates...)
	b.Metric("license_file_present", found != "")

	if found == "" {
		b.WithScore(0)
		b.Finding("high", "no license file found", "add a LICENSE file to clarify how others can use the project")
		return b.Build(), nil
	}

	content, err := readText(filepath.Join(path, found))
	if err != nil {
		b.WithScore(30)
		b.Finding("medium", "unable to read license file", "check file permissions")
		return b.Build(), nil
	}

	licenseType, confident := detectLicenseType(strings.ToLower(content))
	b.Metric("license_type", licenseType)
	b.Metric("detection_confident", confident)

	score := 50.0
	if licenseType != "unknown" {
		score += 30
		if confident {
			score += 20
		} else {
			score += 10
		}
	}

	if len(content) < 50 {
		score -= 10
		b.Finding("medium", "license file is very short and may not be valid", "ensure the complete license text is present")
	}
	if placeholders := findPlaceholders(content); len(placeholders) > 0 {
		score -= 10
		b.Finding("medium", "license contains unfilled placeholders", "fill in placeholder values such as [year] and [fullname]")
	}
	if !containsAny(strings.ToLower(content), "copyright", "©") {
		b.Finding("low", "license lacks a copyright notice", "")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	b.WithScore(score)
	return b.Build(), nil
}

func detectLicenseType(lower string) (kind string, confident bool) {
	bestType, bestScore, bestTotal := "unknown", 0, 0
	for licenseType, signatures := range licenseSignatures {
		score := 0
		for _, sig := range signatures {
			if strings.Contains(lower, sig) {
				score++
			}
		}
		if score > bestScore {
			bestScore, bestType, bestTotal = score, licenseType, len(signatures)
		}
	}
	if bestType == "unknown" {
		return "unknown", false
	}
	return bestType, bestScore >= bestTotal
}

func findPlaceholders(content string) []string {
	lower := strings.ToLower(content)
	var found []string
	for _, p := range licensePlaceholders {
		if strings.Contains(lower, p) {
			found = append(found, p)
		}
	}
	return found
}
