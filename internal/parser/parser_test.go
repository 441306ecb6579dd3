package parser

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Line
	}{
		{raw: "package: bash-5.2.26-1.fc39.x86_64", want: Line{Kind: LineSubject, Value: "bash-5.2.26-1.fc39.x86_64"}},
		{raw: "  dependency: /usr/bin/sh", want: Line{Kind: LineCapability, Value: "/usr/bin/sh"}},
		{raw: "   provider: bash-5.2.26-1.fc39.x86_64", want: Line{Kind: LineProvider, Value: "bash-5.2.26-1.fc39.x86_64"}},
		{raw: "\tprovider: glibc-2.38-14.fc39.x86_64", want: Line{Kind: LineProvider, Value: "glibc-2.38-14.fc39.x86_64"}},
		{raw: "httpd-2.4.57-1.fc39.x86_64", want: Line{Kind: LineToken, Value: "httpd-2.4.57-1.fc39.x86_64"}},
		{raw: "", want: Line{Kind: LineNoise}},
		{raw: "   ", want: Line{Kind: LineNoise}},
		{raw: "Last metadata expiration check: 0:01:02 ago", want: Line{Kind: LineNoise}},
		{raw: "package:", want: Line{Kind: LineNoise}},
		{raw: "  provider:   ", want: Line{Kind: LineNoise}},
		{raw: "provider: unindented-1.0-1.noarch", want: Line{Kind: LineNoise}},
		{raw: "Error: No matching packages", want: Line{Kind: LineNoise}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestLineKind_String(t *testing.T) {
	assert.Equal(t, "subject", LineSubject.String())
	assert.Equal(t, "provider", LineProvider.String())
	assert.Equal(t, "noise", LineKind(99).String())
}

func TestParseFlatList(t *testing.T) {
	t.Run("dedups and sorts", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, ParseFlatList("a\nb\na\n"))
	})

	t.Run("normalizes nevra output", func(t *testing.T) {
		got := ParseFlatList(readTestdata(t, "repoquery_installed.txt"))
		assert.Equal(t, []string{"bash", "glibc", "htop", "jq", "kernel-core", "ncurses-libs"}, got)
	})

	t.Run("skips noise and windows line endings", func(t *testing.T) {
		out := "Last metadata expiration check: 1:00:00 ago\r\nzsh-5.9-6.fc39.x86_64\r\n\r\nsome sentence with spaces\n"
		assert.Equal(t, []string{"zsh"}, ParseFlatList(out))
	})

	t.Run("keeps digit segments in complete identifiers", func(t *testing.T) {
		assert.Equal(t, []string{"foo-2-utils"}, ParseFlatList("foo-2-utils-1.0-1.noarch\n"))
	})

	t.Run("bare names with digit segments are kept", func(t *testing.T) {
		got := ParseFlatList("java-17-openjdk\nhtop\n")
		assert.Equal(t, []string{"htop", "java-17-openjdk"}, got)
		assert.Equal(t, got, ParseFlatList(strings.Join(got, "\n")))
	})

	t.Run("arbitrary text yields empty result", func(t *testing.T) {
		assert.Empty(t, ParseFlatList(""))
		assert.Empty(t, ParseFlatList("\x00\x01 garbage ::: \n   \n/usr/bin/sh"))
	})
}

func TestRawTokens(t *testing.T) {
	out := "Last metadata expiration check: 1:00:00 ago\nhtop-3.3.0-1.fc39.x86_64\njq-1.7.1-1.fc39.x86_64\nhtop-3.3.0-1.fc39.x86_64\n"
	assert.Equal(t, []string{
		"htop-3.3.0-1.fc39.x86_64",
		"jq-1.7.1-1.fc39.x86_64",
		"htop-3.3.0-1.fc39.x86_64",
	}, RawTokens(out))
}

func TestParseDeplist(t *testing.T) {
	t.Run("re-associates adjacent subjects", func(t *testing.T) {
		got := ParseDeplist(readTestdata(t, "deplist_two_subjects.txt"))

		assert.Equal(t, DependencyMap{
			"htop": {"glibc", "libnl3", "ncurses-libs"},
			"jq":   {"bash", "oniguruma"},
		}, got)
	})

	t.Run("subject without dependencies is kept", func(t *testing.T) {
		got := ParseDeplist("package: filesystem-3.18-6.fc39.x86_64\n")
		assert.Equal(t, DependencyMap{"filesystem": {}}, got)
	})

	t.Run("providers before first subject are dropped", func(t *testing.T) {
		out := "   provider: glibc-2.38-14.fc39.x86_64\npackage: zsh-5.9-6.fc39.x86_64\n  dependency: libc.so.6\n   provider: glibc-2.38-14.fc39.x86_64\n"
		assert.Equal(t, DependencyMap{"zsh": {"glibc"}}, ParseDeplist(out))
	})

	t.Run("malformed subject stops attribution until next subject", func(t *testing.T) {
		out := "package: /not/a/package\n   provider: glibc-2.38-14.fc39.x86_64\npackage: jq-1.7.1-1.fc39.x86_64\n   provider: oniguruma-6.9.9-1.fc39.x86_64\n"
		assert.Equal(t, DependencyMap{"jq": {"oniguruma"}}, ParseDeplist(out))
	})

	t.Run("same subject in two versions merges", func(t *testing.T) {
		out := "package: kernel-core-6.6.8-200.fc39.x86_64\n   provider: systemd-254.7-1.fc39.x86_64\n" +
			"package: kernel-core-6.7.4-200.fc39.x86_64\n   provider: dracut-059-16.fc39.x86_64\n   provider: systemd-254.7-1.fc39.x86_64\n"
		assert.Equal(t, DependencyMap{"kernel-core": {"dracut", "systemd"}}, ParseDeplist(out))
	})

	t.Run("arbitrary text yields empty map", func(t *testing.T) {
		assert.Empty(t, ParseDeplist("nothing to see\n\n\t\x7f"))
	})
}

func TestDependencyMap_Merge(t *testing.T) {
	m := DependencyMap{"htop": {"glibc"}}
	m.Merge(DependencyMap{
		"htop": {"ncurses-libs", "glibc"},
		"jq":   {"oniguruma"},
	})

	assert.Equal(t, DependencyMap{
		"htop": {"glibc", "ncurses-libs"},
		"jq":   {"oniguruma"},
	}, m)
}
