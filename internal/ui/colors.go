package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/quantmind-br/nebula/internal/core"
)

// Color scheme for nebula
var (
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)

	CheckMark = "✓"
	CrossMark = "✗"
	Arrow     = "→"
	Bullet    = "•"
)

var categoryColors = map[core.Category]*color.Color{
	core.CategorySystem:        color.New(color.FgRed),
	core.CategoryLibrary:       color.New(color.FgHiBlack),
	core.CategoryDevelopment:   color.New(color.FgBlue),
	core.CategoryDesktop:       color.New(color.FgMagenta),
	core.CategoryInternet:      color.New(color.FgCyan),
	core.CategoryMultimedia:    color.New(color.FgHiMagenta),
	core.CategoryFonts:         color.New(color.FgYellow),
	core.CategoryLanguage:      color.New(color.FgGreen),
	core.CategoryDocumentation: color.New(color.FgHiYellow),
}

// InitColors applies the configured color mode: "always", "never" or "auto".
// In auto mode NO_COLOR and TERM=dumb disable colors.
func InitColors(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
			color.NoColor = true
		}
	}
}

// AreColorsEnabled returns whether colors are currently enabled
func AreColorsEnabled() bool {
	return !color.NoColor
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	Success.Fprintf(w, "%s %s\n", CheckMark, fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(w io.Writer, format string, args ...interface{}) {
	Error.Fprintf(w, "%s Error: %s\n", CrossMark, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	Warning.Fprintf(w, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, format string, args ...interface{}) {
	Info.Fprintf(w, "%s %s\n", Arrow, fmt.Sprintf(format, args...))
}

// PrintKeyValue prints a key-value pair with color
func PrintKeyValue(w io.Writer, key, value string) {
	Bold.Fprintf(w, "%s: ", key)
	fmt.Fprintln(w, value)
}

// PrintHeader prints a section header
func PrintHeader(w io.Writer, text string) {
	fmt.Fprintln(w)
	Bold.Fprintln(w, text)
	Muted.Fprintln(w, "────────────────────────────────────────")
}

// PrintDetails prints indented, muted diagnostic output
func PrintDetails(w io.Writer, details string) {
	if details == "" {
		return
	}
	Muted.Fprintln(w, indent(details, "    "))
}

// PrintResult prints a mutation outcome with its details
func PrintResult(w io.Writer, res core.OperationResult) {
	if res.Success {
		PrintSuccess(w, "%s", res.Message)
	} else {
		PrintError(w, "%s", res.Message)
	}
	PrintDetails(w, res.Details)
}

// ColorizeCategory returns a colored category string
func ColorizeCategory(c core.Category) string {
	if col, ok := categoryColors[c]; ok {
		return col.Sprint(string(c))
	}
	return string(c)
}

func indent(s, prefix string) string {
	out := make([]byte, 0, len(s)+len(prefix))
	out = append(out, prefix...)
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if s[i] == '\n' && i < len(s)-1 {
			out = append(out, prefix...)
		}
	}
	return string(out)
}
