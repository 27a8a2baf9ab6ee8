package handler

import (
	controller "github.com/uber/yara-lsp/src/yls/controller"
	ylsdaemon "github.com/uber/yara-lsp/src/yls/controller/yls-daemon"
	handler "github.com/uber/yara-lsp/src/yls/handler/yls-daemon"
	"github.com/uber/yara-lsp/src/yls/repository/session"
	"go.uber.org/fx"
)

// Module provides the yls-daemon server into an Fx application.
var Module = fx.Options(
	controller.Module,
	fx.Provide(session.New),
	fx.Provide(handler.New),
	fx.Invoke(outputProcessInfo),
	fx.Invoke(func(m handler.Handler) {}),
	fx.Invoke(func(m ylsdaemon.Controller) {}),
)
