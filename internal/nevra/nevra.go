// Package nevra extracts canonical package names from RPM identifiers.
//
// Free-text output from dnf and rpm carries names in several shapes: bare
// names, full NEVRA strings (name-[epoch:]version-release.arch), file paths
// and capability strings. Name reduces all of them to a canonical name.
//
// The boundary between name and version in Name is heuristic: the first
// hyphen followed by a digit, scanning left to right, starts the version.
// Names that legitimately contain such a segment (for example "foo-2-utils")
// are truncated to the part before it. Canonical avoids that: it splits
// complete NEVRA strings from the right, keeps bare names as they are and
// only uses the heuristic on input that still looks version-qualified.
package nevra

import (
	"regexp"
	"strings"
)

const (
	nameRegex  = `^([a-zA-Z0-9][a-zA-Z0-9._+-]*?)(?:-([0-9].*))?$`
	nevraRegex = `^(\S+)-(?:(\d+):)?([^-:\s]+)-([^-\s]+)\.([^.\s]+)$`
	validRegex = `^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`
	// trailing -<digit>... segment ending in a .suffix, e.g. "foo-1.0.x86_64"
	qualifiedRegex = `-[0-9][^-\s]*\.[^.\s-]+$`
)

var (
	nameRe      = regexp.MustCompile(nameRegex)
	nevraRe     = regexp.MustCompile(nevraRegex)
	validRe     = regexp.MustCompile(validRegex)
	qualifiedRe = regexp.MustCompile(qualifiedRegex)
)

// Name returns the canonical package name for raw.
// Input that does not look like a package identifier is returned trimmed
// but otherwise unmodified. Name is idempotent.
func Name(raw string) string {
	trimmed := strings.TrimSpace(raw)
	matches := nameRe.FindStringSubmatch(trimmed)
	if len(matches) < 2 || matches[1] == "" {
		return trimmed
	}
	return matches[1]
}

// Canonical returns the package name for raw. A complete NEVRA is split
// from the right, a valid bare name is returned unchanged and anything else
// goes through Name. Canonical is idempotent: reductions repeat until the
// result no longer changes.
func Canonical(raw string) string {
	name := strings.TrimSpace(raw)
	for {
		next := reduce(name)
		if next == name {
			return name
		}
		name = next
	}
}

// reduce applies one normalization step. Each step either returns s or a
// strictly shorter string, so repeating it terminates.
func reduce(s string) string {
	if n, ok := Split(s); ok {
		return n.Name
	}
	if Valid(s) && !qualifiedRe.MatchString(s) {
		return s
	}
	return Name(s)
}

// Valid reports whether s is usable as a package name
func Valid(s string) bool {
	return validRe.MatchString(s)
}

// NEVRA is a fully split package identifier
type NEVRA struct {
	Name    string
	Epoch   string
	Version string
	Release string
	Arch    string
}

// Split parses a strict name-[epoch:]version-release.arch string.
// Unlike Name it splits from the right, so names containing digit segments
// survive intact. ok is false when s is not a complete NEVRA.
func Split(s string) (NEVRA, bool) {
	matches := nevraRe.FindStringSubmatch(strings.TrimSpace(s))
	if len(matches) != 6 {
		return NEVRA{}, false
	}

	epoch := matches[2]
	if epoch == "" {
		epoch = "0"
	}

	return NEVRA{
		Name:    matches[1],
		Epoch:   epoch,
		Version: matches[3],
		Release: matches[4],
		Arch:    matches[5],
	}, true
}
