// Package util holds small helpers shared across packages.
package util

import (
	"regexp"
	"strings"
)

var projectNameRegexp = regexp.MustCompile("[^A-Za-z0-9_.-]+")

// maxProjectNameLength bounds names of projects created in build backends.
const maxProjectNameLength = 100

// ProjectName builds a backend project name from a repository full name and
// optional suffixes, e.g. ("acme/widget", "3") becomes "acme-widget-3".
func ProjectName(repoFullName string, suffixes ...string) string {
	parts := append([]string{strings.ReplaceAll(repoFullName, "/", "-")}, suffixes...)
	name := strings.Join(parts, "-")
	name = projectNameRegexp.ReplaceAllString(name, "_")

	if len(name) > maxProjectNameLength {
		name = name[:maxProjectNameLength]
	}
	return name
}
