package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEUID(t *testing.T, id int) {
	t.Helper()
	orig := euid
	euid = func() int { return id }
	t.Cleanup(func() { euid = orig })
}

func TestElevatedRunner_Execute(t *testing.T) {
	withEUID(t, 1000)

	t.Run("prefixes the command", func(t *testing.T) {
		mock := &MockCommandRunner{}
		runner, err := NewElevatedRunner(mock, "sudo -n")
		require.NoError(t, err)
		assert.Equal(t, []string{"sudo", "-n"}, runner.Prefix())

		_, err = runner.Execute(context.Background(), "dnf", "remove", "-y", "zsh")
		require.NoError(t, err)
		assert.Equal(t, []string{"sudo -n dnf remove -y zsh"}, mock.Calls())
	})

	t.Run("quoted prefix", func(t *testing.T) {
		mock := &MockCommandRunner{}
		runner, err := NewElevatedRunner(mock, `pkexec --user 'root'`)
		require.NoError(t, err)

		_, err = runner.Execute(context.Background(), "rpm", "-e", "zsh")
		require.NoError(t, err)
		assert.Equal(t, []string{"pkexec --user root rpm -e zsh"}, mock.Calls())
	})

	t.Run("empty prefix runs directly", func(t *testing.T) {
		mock := &MockCommandRunner{}
		runner, err := NewElevatedRunner(mock, "")
		require.NoError(t, err)

		_, err = runner.Execute(context.Background(), "dnf", "upgrade", "-y", "zsh")
		require.NoError(t, err)
		assert.Equal(t, []string{"dnf upgrade -y zsh"}, mock.Calls())
	})

	t.Run("unbalanced quotes are rejected", func(t *testing.T) {
		_, err := NewElevatedRunner(&MockCommandRunner{}, `sudo "-n`)
		assert.Error(t, err)
	})
}

func TestElevatedRunner_Root(t *testing.T) {
	withEUID(t, 0)

	mock := &MockCommandRunner{}
	runner, err := NewElevatedRunner(mock, "pkexec")
	require.NoError(t, err)
	assert.Empty(t, runner.Prefix())

	_, err = runner.Execute(context.Background(), "dnf", "upgrade", "-y", "zsh")
	require.NoError(t, err)
	assert.Equal(t, []string{"dnf upgrade -y zsh"}, mock.Calls())
}

func TestElevatedRunner_RequireCommand(t *testing.T) {
	withEUID(t, 1000)

	mock := &MockCommandRunner{
		RequireCommandFunc: func(name string) error {
			if name == "pkexec" {
				return assert.AnError
			}
			return nil
		},
	}
	runner, err := NewElevatedRunner(mock, "pkexec")
	require.NoError(t, err)

	assert.Error(t, runner.RequireCommand("dnf"))
}
