package executor

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Instantiates the new Executor through the fx provider
func fxExecutor(t *testing.T) (Executor, *observer.ObservedLogs) {
	var e Executor
	core, recorded := observer.New(zap.DebugLevel)
	logger := zap.New(core).Sugar()

	fxtest.New(t,
		fx.Supply(logger),
		Module,
		fx.Populate(&e),
	).RequireStart().RequireStop()

	return e, recorded
}

func TestRun(t *testing.T) {
	e, recorded := fxExecutor(t)

	t.Run("captures stdout", func(t *testing.T) {
		if _, err := exec.LookPath("echo"); errors.Is(err, exec.ErrNotFound) {
			t.Skip("no echo available")
		}

		cmd := exec.Command("echo", "rule", "a")
		cmd.Dir = "/"
		stdout, stderr, exitCode, err := e.Run(cmd)
		require.NoError(t, err)
		assert.Equal(t, "rule a\n", stdout)
		assert.Empty(t, stderr)
		assert.Equal(t, 0, exitCode)

		logs := recorded.FilterMessage("Exec").AllUntimed()
		require.NotEmpty(t, logs)
		assert.Equal(t, "/", logs[len(logs)-1].ContextMap()["Dir"])
	})

	t.Run("captures stderr and exit code", func(t *testing.T) {
		if _, err := exec.LookPath("sh"); errors.Is(err, exec.ErrNotFound) {
			t.Skip("no sh available")
		}

		cmd := exec.Command("sh", "-c", "echo 'a.yar(1): error: syntax error' >&2; exit 1")
		stdout, stderr, exitCode, err := e.Run(cmd)
		var exitErr *exec.ExitError
		assert.ErrorAs(t, err, &exitErr)
		assert.Empty(t, stdout)
		assert.Equal(t, "a.yar(1): error: syntax error\n", stderr)
		assert.Equal(t, 1, exitCode)
	})

	t.Run("missing binary", func(t *testing.T) {
		cmd := exec.Command("/nonexistent/yarac")
		_, _, exitCode, err := e.Run(cmd)
		assert.Error(t, err)
		assert.Equal(t, -1, exitCode)
	})
}

func TestRunWithExecFunc(t *testing.T) {
	var ran *exec.Cmd
	e := NewExecutor(WithExecFunc(func(cmd *exec.Cmd) error {
		ran = cmd
		_, err := cmd.Stdout.Write([]byte("out"))
		return err
	}))

	cmd := exec.Command("yarac", "a.yar", "/dev/null")
	stdout, stderr, exitCode, err := e.Run(cmd)
	require.NoError(t, err)
	assert.Same(t, cmd, ran)
	assert.Equal(t, "out", stdout)
	assert.Empty(t, stderr)
	// The process never started.
	assert.Equal(t, -1, exitCode)
}

func TestRunWithoutExecFunc(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	e := NewExecutor(WithExecFunc(nil), WithLogger(zap.New(core).Sugar()))

	stdout, stderr, exitCode, err := e.Run(exec.Command("yarac"))
	assert.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, 1, recorded.FilterMessage("missing execFunc - skipped execution").Len())
}

func TestLookPath(t *testing.T) {
	e := NewExecutor(WithLookPathFunc(func(file string) (string, error) {
		if file == "yarac" {
			return "/usr/local/bin/yarac", nil
		}
		return "", exec.ErrNotFound
	}))

	path, err := e.LookPath("yarac")
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/yarac", path)

	_, err = e.LookPath("yara")
	assert.ErrorIs(t, err, exec.ErrNotFound)
}
