package helpers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCommandRunner_CommandExists(t *testing.T) {
	t.Parallel()

	t.Run("with custom function", func(t *testing.T) {
		mock := &MockCommandRunner{
			CommandExistsFunc: func(name string) bool {
				return name == "dnf"
			},
		}

		assert.True(t, mock.CommandExists("dnf"))
		assert.False(t, mock.CommandExists("unknown"))
	})

	t.Run("without custom function", func(t *testing.T) {
		mock := &MockCommandRunner{}
		assert.False(t, mock.CommandExists("dnf"))
	})
}

func TestMockCommandRunner_RequireCommand(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("command not found")
	mock := &MockCommandRunner{
		RequireCommandFunc: func(_ string) error {
			return expectedErr
		},
	}
	assert.Equal(t, expectedErr, mock.RequireCommand("dnf"))
	assert.NoError(t, (&MockCommandRunner{}).RequireCommand("dnf"))
}

func TestMockCommandRunner_Execute(t *testing.T) {
	t.Parallel()

	t.Run("records calls", func(t *testing.T) {
		mock := &MockCommandRunner{
			ExecuteFunc: func(_ context.Context, name string, _ ...string) (*CommandResult, error) {
				return &CommandResult{Stdout: name}, nil
			},
		}

		res, err := mock.Execute(context.Background(), "dnf", "repoquery", "--installed")
		require.NoError(t, err)
		assert.Equal(t, "dnf", res.Stdout)

		_, _ = mock.Execute(context.Background(), "rpm", "-e", "zsh")
		assert.Equal(t, []string{"dnf repoquery --installed", "rpm -e zsh"}, mock.Calls())
		assert.Equal(t, 2, mock.CallCount())

		mock.Reset()
		assert.Zero(t, mock.CallCount())
	})

	t.Run("default result is a zero exit", func(t *testing.T) {
		res, err := (&MockCommandRunner{}).Execute(context.Background(), "true")
		require.NoError(t, err)
		assert.True(t, res.Success())
	})
}
