package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Mode identifies which view a cache snapshot belongs to
type Mode string

const (
	// ModeFlat is the "all installed" view: names only
	ModeFlat Mode = "flat"
	// ModeAnnotated is the "user installed" view: names, dependencies and category
	ModeAnnotated Mode = "annotated"
)

// Modes lists every cache mode
var Modes = []Mode{ModeFlat, ModeAnnotated}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeFlat || m == ModeAnnotated
}

// ParseMode converts user input into a Mode
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown cache mode %q (expected %q or %q)", s, ModeFlat, ModeAnnotated)
	}
	return m, nil
}

// Category is a best-effort classification tag for a package
type Category string

const (
	CategorySystem        Category = "system"
	CategoryLibrary       Category = "library"
	CategoryDevelopment   Category = "development"
	CategoryDesktop       Category = "desktop"
	CategoryInternet      Category = "internet"
	CategoryMultimedia    Category = "multimedia"
	CategoryFonts         Category = "fonts"
	CategoryLanguage      Category = "language"
	CategoryDocumentation Category = "documentation"
	CategoryOther         Category = "other"
)

// Dependency is a single canonical dependency of a package
type Dependency struct {
	Name string `json:"name"`
}

// PackageRecord is a canonical package with optional annotations.
// Flat records carry only Name.
type PackageRecord struct {
	Name         string       `json:"name"`
	Category     Category     `json:"category,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// DependencyNames returns the dependency names in order
func (r PackageRecord) DependencyNames() []string {
	names := make([]string, 0, len(r.Dependencies))
	for _, dep := range r.Dependencies {
		names = append(names, dep.Name)
	}
	return names
}

// NewDependencies builds a deduplicated dependency list, keeping first-seen order
func NewDependencies(names []string) []Dependency {
	deps := make([]Dependency, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		deps = append(deps, Dependency{Name: name})
	}
	return deps
}

// Snapshot is the last-known package list for one mode.
// Snapshots are replaced wholesale and never mutated after creation.
type Snapshot struct {
	Mode       Mode            `json:"mode"`
	CapturedAt time.Time       `json:"captured_at"`
	Records    []PackageRecord `json:"records"`
}

// NewSnapshot creates a snapshot with records sorted by name
func NewSnapshot(mode Mode, records []PackageRecord, capturedAt time.Time) *Snapshot {
	sorted := make([]PackageRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	return &Snapshot{
		Mode:       mode,
		CapturedAt: capturedAt.UTC(),
		Records:    sorted,
	}
}

// Names returns the record names in snapshot order
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Records))
	for _, rec := range s.Records {
		names = append(names, rec.Name)
	}
	return names
}

// Len returns the number of records
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// OperationResult is the outcome of one mutation
type OperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Succeeded builds a successful result
func Succeeded(message, details string) OperationResult {
	return OperationResult{Success: true, Message: message, Details: strings.TrimSpace(details)}
}

// Failed builds a failed result
func Failed(message, details string) OperationResult {
	return OperationResult{Success: false, Message: message, Details: strings.TrimSpace(details)}
}

// CommandError describes an external command that launched but exited non-zero
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s exited with status %d", e.Command, strings.Join(e.Args, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + firstLine(stderr)
	}
	return msg
}

// Details returns the raw diagnostic output of the command
func (e *CommandError) Details() string {
	return strings.TrimSpace(e.Stderr)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
