package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/helpers"
	"github.com/quantmind-br/nebula/internal/syspkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tasksFor(keys ...string) []Task {
	tasks := make([]Task, 0, len(keys))
	for _, k := range keys {
		tasks = append(tasks, Task{Key: k, Command: syspkg.Command{Name: "dnf", Args: []string{"deplist", k}}})
	}
	return tasks
}

func TestFetch_BoundedWithPartialFailure(t *testing.T) {
	var inFlight, peak int32

	mock := &helpers.MockCommandRunner{
		ExecuteFunc: func(ctx context.Context, name string, args ...string) (*helpers.CommandResult, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)

			if args[1] == "t3" {
				return &helpers.CommandResult{ExitCode: 1, Stderr: "Error: no match"}, nil
			}
			return &helpers.CommandResult{Stdout: "package: " + args[1]}, nil
		},
	}

	f := New(mock, Options{Concurrency: 2}, nil)
	results := f.Fetch(context.Background(), tasksFor("t1", "t2", "t3", "t4", "t5"))

	require.Len(t, results, 5)
	assert.Equal(t, []string{"t1", "t2", "t4", "t5"}, results.Succeeded())
	assert.Equal(t, []string{"t3"}, results.Failed())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Equal(t, 5, mock.CallCount())
	assert.NoError(t, results.Err())

	var cmdErr *core.CommandError
	require.ErrorAs(t, results["t3"].Err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Equal(t, "package: t1", results["t1"].Stdout)
}

func TestFetch_AllFailed(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		ExecuteFunc: func(ctx context.Context, name string, args ...string) (*helpers.CommandResult, error) {
			return nil, errors.New("exec: not found")
		},
	}

	results := New(mock, Options{}, nil).Fetch(context.Background(), tasksFor("a", "b"))

	err := results.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllFailed)
	assert.Contains(t, err.Error(), "2 of 2")
}

func TestFetch_Empty(t *testing.T) {
	mock := &helpers.MockCommandRunner{}
	results := New(mock, Options{}, nil).Fetch(context.Background(), nil)

	assert.Empty(t, results)
	assert.NoError(t, results.Err())
	assert.Zero(t, mock.CallCount())
}

func TestFetch_TaskTimeout(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		ExecuteFunc: func(ctx context.Context, name string, args ...string) (*helpers.CommandResult, error) {
			if args[1] == "slow" {
				<-ctx.Done()
				return nil, fmt.Errorf("command %q interrupted: %w", name, ctx.Err())
			}
			return &helpers.CommandResult{}, nil
		},
	}

	results := New(mock, Options{Timeout: 10 * time.Millisecond}, nil).
		Fetch(context.Background(), tasksFor("slow", "fast"))

	assert.ErrorIs(t, results["slow"].Err, context.DeadlineExceeded)
	assert.NoError(t, results["fast"].Err)
}

func TestFetch_OnDone(t *testing.T) {
	var mu sync.Mutex
	done := map[string]bool{}

	f := New(&helpers.MockCommandRunner{}, Options{
		Concurrency: 3,
		OnDone: func(key string, o Outcome) {
			mu.Lock()
			done[key] = o.Err == nil
			mu.Unlock()
		},
	}, nil)

	f.Fetch(context.Background(), tasksFor("x", "y", "z"))
	assert.Equal(t, map[string]bool{"x": true, "y": true, "z": true}, done)
}

func TestNew_Defaults(t *testing.T) {
	f := New(&helpers.MockCommandRunner{}, Options{}, nil)
	assert.Equal(t, DefaultConcurrency, f.Concurrency())
	assert.Equal(t, DefaultTimeout, f.opts.Timeout)
}
