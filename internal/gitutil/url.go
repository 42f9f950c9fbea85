// Package gitutil parses repository references given on the command line.
package gitutil

import (
	"fmt"
	"regexp"
	"strings"
)

var repoURLRegex = regexp.MustCompile(`^(?:https?://)?github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:/pull/\d+)?$`)

var shortRepoRegex = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)

// ParseRepository extracts owner and repository from "owner/repo", a GitHub
// repository URL or a pull request URL.
func ParseRepository(ref string) (owner, repo string, err error) {
	// Normalize URL
	ref = strings.TrimSuffix(strings.TrimSpace(ref), "/")

	if m := shortRepoRegex.FindStringSubmatch(ref); m != nil {
		return m[1], m[2], nil
	}
	if m := repoURLRegex.FindStringSubmatch(ref); m != nil {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("invalid repository reference: %s", ref)
}
