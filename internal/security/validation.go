package security

import (
	"fmt"
	"regexp"
	"strings"
)

const maxPackageNameLen = 255

var (
	// ValidPackageNameRegex matches RPM package names: an alphanumeric first
	// character followed by alphanumerics, dot, underscore, plus or dash
	ValidPackageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	dangerousArgChars = []string{
		";", "&", "|", "`", "$", "(", ")", "<", ">", "\n", "\r", "\x00",
	}
)

// ValidatePackageName validates a package name before it is handed to a
// privileged command. Names starting with "-" would be read as options.
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}

	if len(name) > maxPackageNameLen {
		return fmt.Errorf("package name too long (max %d characters)", maxPackageNameLen)
	}

	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("invalid package name %q: must not start with a dash", name)
	}

	if !ValidPackageNameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name %q: only alphanumeric, dot, underscore, plus and dash are allowed", name)
	}

	return nil
}

// ValidateCommandArg rejects shell metacharacters in a configured command or argument
func ValidateCommandArg(arg string) error {
	for _, char := range dangerousArgChars {
		if strings.Contains(arg, char) {
			return fmt.Errorf("argument %q contains dangerous character %q", arg, char)
		}
	}
	return nil
}
