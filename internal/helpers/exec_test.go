package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSCommandRunner(t *testing.T) {
	runner := NewOSCommandRunner()

	t.Run("CommandExists", func(t *testing.T) {
		assert.True(t, runner.CommandExists("sh"))
		assert.False(t, runner.CommandExists("nonexistentcommand123"))
		// cached lookups return the same answer
		assert.True(t, runner.CommandExists("sh"))
	})

	t.Run("RequireCommand", func(t *testing.T) {
		assert.NoError(t, runner.RequireCommand("sh"))
		assert.Error(t, runner.RequireCommand("nonexistentcommand123"))
	})

	t.Run("Execute captures stdout", func(t *testing.T) {
		res, err := runner.Execute(context.Background(), "echo", "hello")
		require.NoError(t, err)
		assert.True(t, res.Success())
		assert.Equal(t, "hello\n", res.Stdout)
		assert.Empty(t, res.Stderr)
	})

	t.Run("Execute reports non-zero exit without error", func(t *testing.T) {
		res, err := runner.Execute(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
		require.NoError(t, err)
		assert.False(t, res.Success())
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "oops\n", res.Stderr)
	})

	t.Run("Execute pins the C locale", func(t *testing.T) {
		res, err := runner.Execute(context.Background(), "sh", "-c", "echo $LC_ALL")
		require.NoError(t, err)
		assert.Equal(t, "C\n", res.Stdout)
	})

	t.Run("Execute launch failure is an error", func(t *testing.T) {
		res, err := runner.Execute(context.Background(), "nonexistentcommand123")
		assert.Error(t, err)
		assert.Equal(t, -1, res.ExitCode)
	})

	t.Run("Execute timeout is an error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := runner.Execute(ctx, "sleep", "5")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "interrupted")
	})
}

func TestCommandRunnerInterface(_ *testing.T) {
	var _ CommandRunner = &OSCommandRunner{}
	var _ CommandRunner = &MockCommandRunner{}
	var _ CommandRunner = &ElevatedRunner{}
}

func TestCommandResult_Success(t *testing.T) {
	var res *CommandResult
	assert.False(t, res.Success())
	assert.True(t, (&CommandResult{}).Success())
	assert.False(t, (&CommandResult{ExitCode: 1}).Success())
}
