// Package parser turns package-database text output into package names and
// dependency maps. Parsing never fails: unrecognized lines are skipped.
package parser

import (
	"sort"

	"github.com/quantmind-br/nebula/internal/nevra"
)

// ParseFlatList parses newline-separated identifiers into a sorted,
// deduplicated list of canonical names.
func ParseFlatList(output string) []string {
	seen := make(map[string]struct{})
	for _, line := range Tokenize(output) {
		if line.Kind != LineToken {
			continue
		}
		name := nevra.Canonical(line.Value)
		if !nevra.Valid(name) {
			continue
		}
		seen[name] = struct{}{}
	}

	return sortedKeys(seen)
}

// RawTokens returns the raw identifiers of a one-per-line listing in output
// order, without normalization or deduplication.
func RawTokens(output string) []string {
	var tokens []string
	for _, line := range Tokenize(output) {
		if line.Kind == LineToken {
			tokens = append(tokens, line.Value)
		}
	}
	return tokens
}

// DependencyMap maps a canonical subject name to its sorted canonical dependencies
type DependencyMap map[string][]string

// Merge adds every entry of other into m, deduplicating per subject
func (m DependencyMap) Merge(other DependencyMap) {
	for subject, deps := range other {
		if existing, ok := m[subject]; ok {
			m[subject] = union(existing, deps)
			continue
		}
		m[subject] = append([]string(nil), deps...)
	}
}

// ParseDeplist parses the output of one batched deplist query covering any
// number of subjects. Each provider line is attributed to the most recent
// subject marker; provider lines before the first marker are dropped. A
// subject never depends on itself.
func ParseDeplist(output string) DependencyMap {
	collected := make(map[string]map[string]struct{})
	current := ""

	for _, line := range Tokenize(output) {
		switch line.Kind {
		case LineSubject:
			current = nevra.Canonical(line.Value)
			if !nevra.Valid(current) {
				current = ""
				continue
			}
			if _, ok := collected[current]; !ok {
				collected[current] = make(map[string]struct{})
			}
		case LineProvider:
			if current == "" {
				continue
			}
			dep := nevra.Canonical(line.Value)
			if dep == current || !nevra.Valid(dep) {
				continue
			}
			collected[current][dep] = struct{}{}
		}
	}

	result := make(DependencyMap, len(collected))
	for subject, deps := range collected {
		result[subject] = sortedKeys(deps)
	}
	return result
}

func union(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
