package parser

import (
	"strings"
)

// LineKind classifies one line of package-database output
type LineKind int

const (
	// LineNoise is blank, informational or unrecognized output
	LineNoise LineKind = iota
	// LineSubject opens a deplist block: "package: <nevra>"
	LineSubject
	// LineCapability names a required capability: "  dependency: <capability>"
	LineCapability
	// LineProvider names the package satisfying the preceding capability: "   provider: <nevra>"
	LineProvider
	// LineToken is a bare identifier, one per line (repoquery output)
	LineToken
)

func (k LineKind) String() string {
	switch k {
	case LineSubject:
		return "subject"
	case LineCapability:
		return "capability"
	case LineProvider:
		return "provider"
	case LineToken:
		return "token"
	default:
		return "noise"
	}
}

// Line is a classified line with its payload extracted
type Line struct {
	Kind  LineKind
	Value string
}

const (
	subjectMarker    = "package:"
	capabilityMarker = "dependency:"
	providerMarker   = "provider:"
)

// noisePrefixes are informational lines dnf prints around real output
var noisePrefixes = []string{
	"Last metadata expiration check",
	"Updating and loading repositories",
	"Repositories loaded",
	"Waiting for process",
}

// Classify tags a single line of output
func Classify(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || isNoise(trimmed) {
		return Line{Kind: LineNoise}
	}

	indented := len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t')

	switch {
	case !indented && strings.HasPrefix(trimmed, subjectMarker):
		return payload(LineSubject, trimmed, subjectMarker)
	case indented && strings.HasPrefix(trimmed, capabilityMarker):
		return payload(LineCapability, trimmed, capabilityMarker)
	case indented && strings.HasPrefix(trimmed, providerMarker):
		return payload(LineProvider, trimmed, providerMarker)
	case indented || strings.ContainsAny(trimmed, " \t"):
		return Line{Kind: LineNoise}
	default:
		return Line{Kind: LineToken, Value: trimmed}
	}
}

func payload(kind LineKind, trimmed, marker string) Line {
	value := strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
	if value == "" {
		return Line{Kind: LineNoise}
	}
	return Line{Kind: kind, Value: value}
}

func isNoise(trimmed string) bool {
	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// Tokenize splits output into classified lines, dropping noise
func Tokenize(output string) []Line {
	var lines []Line
	for _, raw := range strings.Split(output, "\n") {
		line := Classify(strings.TrimRight(raw, "\r"))
		if line.Kind == LineNoise {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
