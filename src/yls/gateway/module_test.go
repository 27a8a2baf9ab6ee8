package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uber-go/tally"
	"github.com/uber/yara-lsp/src/yls/gateway/analyzer"
	ideclient "github.com/uber/yara-lsp/src/yls/gateway/ide-client"
	"github.com/uber/yara-lsp/src/yls/internal/executor"
	"github.com/uber/yara-lsp/src/yls/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestModule(t *testing.T) {
	assert.NoError(t, fx.ValidateApp(
		Module,
		executor.Module,
		fs.Module,
		fx.Supply(zap.NewNop().Sugar()),
		fx.Provide(func() tally.Scope { return tally.NoopScope }),
		fx.Provide(func() (config.Provider, error) {
			return config.NewStaticProvider(map[string]interface{}{})
		}),
		fx.Invoke(func(analyzer.Analyzer, ideclient.Gateway) {}),
	))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
