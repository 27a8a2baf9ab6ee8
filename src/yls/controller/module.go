package controller

import (
	"github.com/uber/yara-lsp/src/yls/controller/diagnostics"
	docsync "github.com/uber/yara-lsp/src/yls/controller/doc-sync"
	"github.com/uber/yara-lsp/src/yls/controller/providers"
	ylsdaemon "github.com/uber/yara-lsp/src/yls/controller/yls-daemon"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ylsdaemon.New),
	fx.Provide(diagnostics.New),
	fx.Provide(docsync.New),
	fx.Provide(providers.New),
)
