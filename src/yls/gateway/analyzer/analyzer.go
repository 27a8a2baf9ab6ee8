// Package analyzer runs the YARA compiler over document text and reports its findings as diagnostics.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/uber-go/tally"
	ylserrors "github.com/uber/yara-lsp/src/yls/internal/errors"
	"github.com/uber/yara-lsp/src/yls/internal/executor"
	"github.com/uber/yara-lsp/src/yls/internal/fs"
	"github.com/uber/yara-lsp/src/yls/internal/logfilewriter"
	"github.com/uber/yara-lsp/src/yls/internal/serverinfofile"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=analyzermock/analyzer_mock.go -package=analyzermock . Analyzer

const (
	_configKey      = "analyzer"
	_diagnosticName = "yarac"

	_defaultCompilerPath   = "yarac"
	_defaultMaxConcurrent  = 4
	_defaultTimeoutSeconds = 10

	_outputName = "yls-analyzer"
)

var (
	// file(line): error|warning: message
	_regexpFileMessage = regexp.MustCompile(`^(.+)\((\d+)\): (error|warning): (.*)$`)
	// error|warning: rule "name" in file(line): message
	_regexpRuleMessage = regexp.MustCompile(`^(error|warning): rule "([^"]*)" in (.+)\((\d+)\): (.*)$`)
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Analyzer compiles YARA rule text and returns the resulting diagnostics.
// It is safe for concurrent use by multiple sessions.
type Analyzer interface {
	// Enabled reports whether a compiler was found at startup.
	Enabled() bool
	// Compile returns the compiler diagnostics for text, which is the current content of doc.
	Compile(ctx context.Context, doc uri.URI, text string) ([]protocol.Diagnostic, error)
}

// Params are inbound parameters to initialize the analyzer.
type Params struct {
	fx.In

	Config   config.Provider
	Logger   *zap.SugaredLogger
	Stats    tally.Scope
	Executor executor.Executor
	FS       fs.YlsFS

	// Compiler output is also written to a file announced in the server info file when both are present.
	Lifecycle      fx.Lifecycle                  `optional:"true"`
	ServerInfoFile serverinfofile.ServerInfoFile `optional:"true"`
}

type analyzerConfig struct {
	CompilerPath   string `yaml:"compilerPath"`
	MaxConcurrent  int    `yaml:"maxConcurrent"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type analyzer struct {
	logger       *zap.SugaredLogger
	stats        tally.Scope
	executor     executor.Executor
	fs           fs.YlsFS
	compilerPath string
	timeout      time.Duration
	enabled      bool
	output       io.Writer
	// sem bounds the number of compiler processes running at once across all sessions.
	sem chan struct{}
}

// New creates a new Analyzer. A missing compiler is not an error: diagnostics are disabled instead.
func New(p Params) (Analyzer, error) {
	cfg, err := processConfig(p.Config)
	if err != nil {
		return nil, err
	}

	a := &analyzer{
		logger:   p.Logger.With("plugin", _configKey),
		stats:    p.Stats.SubScope(_configKey),
		executor: p.Executor,
		fs:       p.FS,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		sem:      make(chan struct{}, cfg.MaxConcurrent),
	}

	path, err := p.Executor.LookPath(cfg.CompilerPath)
	if err != nil {
		a.logger.Errorf("%s is not installed. Diagnostics are disabled: %v", cfg.CompilerPath, err)
		return a, nil
	}
	a.compilerPath = path
	a.enabled = true
	a.logger.Infow("compiler found", "path", path)

	if p.Lifecycle != nil && p.ServerInfoFile != nil {
		a.output, err = logfilewriter.SetupOutputWriter(logfilewriter.Params{
			FS:             p.FS,
			Lifecycle:      p.Lifecycle,
			ServerInfoFile: p.ServerInfoFile,
		}, _outputName)
		if err != nil {
			a.logger.Warnf("compiler output will not be saved: %v", err)
		}
	}
	return a, nil
}

func (a *analyzer) Enabled() bool {
	return a.enabled
}

func (a *analyzer) Compile(ctx context.Context, doc uri.URI, text string) ([]protocol.Diagnostic, error) {
	if !a.enabled {
		return nil, ylserrors.AnalyzerUnavailableError
	}

	select {
	case a.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-a.sem }()

	sw := a.stats.Timer("compile").Start()
	defer sw.Stop()

	src, err := a.writeSource(text)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := a.fs.Remove(src); err != nil {
			a.logger.Warnf("unable to remove %q: %v", src, err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.compilerPath, src, os.DevNull)
	stdout, stderr, exitCode, runErr := a.executor.Run(cmd)
	if err := runCtx.Err(); err != nil {
		a.stats.Counter("failures").Inc(1)
		return nil, fmt.Errorf("compiling %q: %w", doc, err)
	}

	a.writeOutput(doc, exitCode, stdout+stderr)
	diagnostics := parseOutput(src, text, stdout+"\n"+stderr)
	if runErr != nil && len(diagnostics) == 0 {
		a.stats.Counter("failures").Inc(1)
		return nil, fmt.Errorf("compiling %q: exit code %d: %w: %s", doc, exitCode, runErr, strings.TrimSpace(stderr))
	}
	return diagnostics, nil
}

func (a *analyzer) writeOutput(doc uri.URI, exitCode int, output string) {
	if a.output == nil {
		return
	}
	fmt.Fprintf(a.output, "%s %s: exit code %d\n%s", a.compilerPath, doc, exitCode, output)
}

func (a *analyzer) writeSource(text string) (string, error) {
	f, err := a.fs.TempFile("", "yls-*.yar")
	if err != nil {
		return "", fmt.Errorf("creating source file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		a.fs.Remove(f.Name())
		return "", fmt.Errorf("writing source file: %w", err)
	}
	return f.Name(), nil
}

// parseOutput converts compiler output lines into diagnostics against text.
// Findings reported for another file, such as an included one, are attached to the first line.
func parseOutput(src string, text string, output string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")

		var file, lineNo, level, message string
		if m := _regexpRuleMessage.FindStringSubmatch(line); m != nil {
			level, file, lineNo, message = m[1], m[3], m[4], fmt.Sprintf("rule %q: %s", m[2], m[5])
		} else if m := _regexpFileMessage.FindStringSubmatch(line); m != nil {
			file, lineNo, level, message = m[1], m[2], m[3], m[4]
		} else {
			continue
		}

		n, err := strconv.ParseUint(lineNo, 10, 32)
		if err != nil || n == 0 {
			n = 1
		}
		if file != src {
			message = fmt.Sprintf("%s(%d): %s", file, n, message)
			n = 1
		}

		severity := protocol.DiagnosticSeverityError
		if level == "warning" {
			severity = protocol.DiagnosticSeverityWarning
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    mapper.LineRange(text, uint32(n-1)),
			Severity: severity,
			Source:   _diagnosticName,
			Message:  message,
		})
	}
	return diagnostics
}

func processConfig(cfg config.Provider) (analyzerConfig, error) {
	result := analyzerConfig{
		CompilerPath:   _defaultCompilerPath,
		MaxConcurrent:  _defaultMaxConcurrent,
		TimeoutSeconds: _defaultTimeoutSeconds,
	}
	if err := cfg.Get(_configKey).Populate(&result); err != nil {
		return analyzerConfig{}, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}

	if result.CompilerPath == "" {
		result.CompilerPath = _defaultCompilerPath
	}
	if result.MaxConcurrent <= 0 {
		return analyzerConfig{}, fmt.Errorf("%s.maxConcurrent must be positive, got %d", _configKey, result.MaxConcurrent)
	}
	if result.TimeoutSeconds <= 0 {
		return analyzerConfig{}, fmt.Errorf("%s.timeoutSeconds must be positive, got %d", _configKey, result.TimeoutSeconds)
	}
	return result, nil
}
