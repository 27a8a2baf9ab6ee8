package gateway

import (
	"github.com/uber/yara-lsp/src/yls/gateway/analyzer"
	ideclient "github.com/uber/yara-lsp/src/yls/gateway/ide-client"
	"go.uber.org/fx"
)

// Module provides the outbound gateways.
var Module = fx.Options(
	analyzer.Module,
	ideclient.Module,
)
