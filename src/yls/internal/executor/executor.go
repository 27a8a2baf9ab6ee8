package executor

import (
	"bytes"
	"os/exec"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=executormock/executor_mock.go -package=executormock . Executor

// Module provides a module to inject using fx.
var Module = fx.Provide(New)

// Params are inbound parameters to construct the executor.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
}

// Executor wraps the execution of "os/exec".Cmd's to allow adding logs to
// each exec and makes it easier to test.
type Executor interface {
	// LookPath resolves an executable name against PATH.
	LookPath(file string) (string, error)
	// Run logs and executes the Cmd, capturing Stdout and Stderr to return their content.
	Run(cmd *exec.Cmd) (stdout string, stderr string, exitCode int, err error)
}

type executorImp struct {
	logger *zap.SugaredLogger
	// execFunc may be nil to use executorImp in tests.
	execFunc     func(e *exec.Cmd) error
	lookPathFunc func(file string) (string, error)
}

// Option defines options to customize executorImp's behavior
type Option func(*executorImp)

// WithLogger overrides the default noop logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(executor *executorImp) {
		executor.logger = logger
	}
}

// WithExecFunc provides customized exec behavior for executorImp
func WithExecFunc(execFunc func(e *exec.Cmd) error) Option {
	return func(executor *executorImp) {
		executor.execFunc = execFunc
	}
}

// WithLookPathFunc overrides PATH resolution.
func WithLookPathFunc(lookPath func(file string) (string, error)) Option {
	return func(executor *executorImp) {
		executor.lookPathFunc = lookPath
	}
}

// New creates the executor used by the application.
func New(p Params) Executor {
	return NewExecutor(WithLogger(p.Logger.Named("executor")))
}

// NewExecutor creates a new executorImp with a noop logger and the default exec function.
func NewExecutor(opts ...Option) Executor {
	executor := &executorImp{
		logger:       zap.NewNop().Sugar(),
		execFunc:     func(cmd *exec.Cmd) error { return cmd.Run() },
		lookPathFunc: exec.LookPath,
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

func (l *executorImp) LookPath(file string) (string, error) {
	return l.lookPathFunc(file)
}

// Run logs the Path/Args and calls execFunc if it is set.
func (l *executorImp) Run(cmd *exec.Cmd) (stdout string, stderr string, exitCode int, err error) {
	l.logger.Debugw("Exec",
		"Path", cmd.Path,
		"Dir", cmd.Dir,
		"Args", cmd.Args[1:], // First arg is always the command itself
	)

	if l.execFunc == nil {
		l.logger.Warn("missing execFunc - skipped execution")
		return "", "", 0, nil
	}

	var stdoutB, stderrB bytes.Buffer
	cmd.Stdout = &stdoutB
	cmd.Stderr = &stderrB
	err = l.execFunc(cmd)

	return stdoutB.String(), stderrB.String(), cmd.ProcessState.ExitCode(), err
}
