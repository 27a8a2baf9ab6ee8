package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/yara-lsp/src/yls/internal/fs"
	"github.com/uber/yara-lsp/src/yls/internal/fs/fsmock"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
)

func TestDecorateConfigProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Run("no errors", func(t *testing.T) {
		fsMock := fsmock.NewMockYlsFS(ctrl)
		fsMock.EXPECT().MkdirAll("/tmp/foo").Return(nil)

		fxtest.New(
			t,
			fx.Provide(func() fs.YlsFS {
				return fsMock
			}),
			fx.Provide(func() config.Provider {
				p, _ := config.NewStaticProvider(map[string]interface{}{
					"logging": map[string]interface{}{
						"outputPaths": []string{
							"/tmp/foo/yls.log",
						},
					},
				})
				return p
			}),
			fx.Decorate(decorateConfigProvider),
			fx.Invoke(func(cfg config.Provider) {
			}),
		).RequireStart().RequireStop()
	})

	t.Run("error creating directory", func(t *testing.T) {
		fsMock := fsmock.NewMockYlsFS(ctrl)
		fsMock.EXPECT().MkdirAll("/tmp/foo").Return(errors.New("permission denied"))
		p, err := config.NewStaticProvider(map[string]interface{}{
			"logging": map[string]interface{}{
				"outputPaths": []string{"/tmp/foo/yls.log"},
			},
		})
		require.NoError(t, err)

		_, err = decorateConfigProvider(DecorateConfigParams{Cfg: p, FS: fsMock})
		assert.ErrorContains(t, err, "ensuring log folder")
	})
}

func TestEnsureLogFolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Run("no errors", func(t *testing.T) {
		fsMock := fsmock.NewMockYlsFS(ctrl)
		fsMock.EXPECT().MkdirAll("/tmp/foo").Return(nil)
		fsMock.EXPECT().MkdirAll("/tmp/bar").Return(nil)

		p, err := config.NewStaticProvider(map[string]interface{}{
			"logging": map[string]interface{}{
				"outputPaths": []string{
					"/tmp/foo/yls1.log",
					"stderr",
					"/tmp/bar/yls2.log",
				},
			},
		})
		require.NoError(t, err)

		got, err := ensureLogFolder(p, fsMock)
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("no logging config", func(t *testing.T) {
		fsMock := fsmock.NewMockYlsFS(ctrl)
		p, err := config.NewStaticProvider(map[string]interface{}{})
		require.NoError(t, err)

		_, err = ensureLogFolder(p, fsMock)
		assert.NoError(t, err)
	})

	t.Run("malformed logging config", func(t *testing.T) {
		fsMock := fsmock.NewMockYlsFS(ctrl)
		p, err := config.NewStaticProvider(map[string]interface{}{
			"logging": map[string]interface{}{
				"outputPaths": map[string]interface{}{"a": 1},
			},
		})
		require.NoError(t, err)

		_, err = ensureLogFolder(p, fsMock)
		assert.Error(t, err)
	})
}

func TestNewRootScope(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	scope := newRootScope(lc)
	scope.Counter("requests").Inc(1)

	lc.RequireStart()
	lc.RequireStop()
}
