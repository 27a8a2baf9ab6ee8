package app

import (
	"context"
	"time"

	"github.com/uber-go/tally"
	"github.com/uber/yara-lsp/src/yls/gateway"
	"github.com/uber/yara-lsp/src/yls/handler"
	"github.com/uber/yara-lsp/src/yls/internal/core"
	"github.com/uber/yara-lsp/src/yls/internal/executor"
	"github.com/uber/yara-lsp/src/yls/internal/fs"
	"github.com/uber/yara-lsp/src/yls/internal/jsonrpcfx"
	"github.com/uber/yara-lsp/src/yls/internal/serverinfofile"
	"go.uber.org/fx"
)

// Module defines the yls application module.
var Module = fx.Options(
	gateway.Module, // outbounds
	handler.Module, // inbounds
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	serverinfofile.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(newRootScope),
	fx.Decorate(decorateConfigProvider),
)

func newRootScope(lc fx.Lifecycle) tally.Scope {
	rs, closer := tally.NewRootScope(tally.ScopeOptions{
		Tags: map[string]string{
			"service": "yls",
		},
	}, 1*time.Second)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return closer.Close()
		},
	})

	return rs
}
