package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"simple", "htop", ""},
		{"with plus", "gcc-c++", ""},
		{"with dots and underscores", "python3.12_extra", ""},
		{"capitals", "NetworkManager", ""},
		{"empty", "", "cannot be empty"},
		{"option injection", "--setopt=foo", "must not start with a dash"},
		{"space", "htop vim", "only alphanumeric"},
		{"shell metachar", "htop;reboot", "only alphanumeric"},
		{"path", "../etc/passwd", "only alphanumeric"},
		{"glob", "kernel*", "only alphanumeric"},
		{"too long", strings.Repeat("a", 256), "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateCommandArg(t *testing.T) {
	assert.NoError(t, ValidateCommandArg("pkexec"))
	assert.NoError(t, ValidateCommandArg("/usr/bin/dnf5"))
	assert.NoError(t, ValidateCommandArg("%{name}\\n"))
	assert.Error(t, ValidateCommandArg("sudo; rm -rf /"))
	assert.Error(t, ValidateCommandArg("$(whoami)"))
	assert.Error(t, ValidateCommandArg("a\x00b"))
}
