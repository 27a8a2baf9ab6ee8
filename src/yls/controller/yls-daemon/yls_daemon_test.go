package ylsdaemon

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/yara-lsp/idl/mock/fxmock"
	"github.com/uber/yara-lsp/src/yls/controller/providers/providersmock"
	"github.com/uber/yara-lsp/src/yls/repository/session/repositorymock"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)

	tests := []struct {
		name    string
		yaml    string
		want    time.Duration
		wantErr bool
	}{
		{name: "configured", yaml: "idleTimeoutMinutes: 15\n", want: 15 * time.Minute},
		{name: "missing disables the timer", yaml: "logging:\n  level: info\n"},
		{name: "negative", yaml: "idleTimeoutMinutes: -1\n", wantErr: true},
		{name: "not a number", yaml: "idleTimeoutMinutes: soon\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := config.NewYAML(config.Source(strings.NewReader(tt.yaml)))
			require.NoError(t, err)

			lc := fxtest.NewLifecycle(t)
			c, err := New(Params{
				Shutdowner:      fxmock.NewMockShutdowner(ctrl),
				Lifecycle:       lc,
				Sessions:        repositorymock.NewMockRepository(ctrl),
				Logger:          zap.NewNop().Sugar(),
				Config:          provider,
				PluginProviders: providersmock.NewMockController(ctrl),
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.(*controller).idleTimeoutMinutes)

			lc.RequireStart()
			lc.RequireStop()
		})
	}
}

func TestIdleTimer(t *testing.T) {
	ctx := context.Background()

	t.Run("shuts down when idle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		shutdowner := fxmock.NewMockShutdowner(ctrl)
		done := make(chan struct{})
		shutdowner.EXPECT().Shutdown().DoAndReturn(func(...fx.ShutdownOption) error {
			close(done)
			return nil
		})

		c := &controller{
			shutdowner:         shutdowner,
			logger:             zap.NewNop().Sugar(),
			idleTimeoutMinutes: time.Millisecond,
		}
		require.NoError(t, c.refreshIdleTimer(ctx))
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("idle timer did not fire")
		}
	})

	t.Run("active sessions keep the server alive", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sessions := repositorymock.NewMockRepository(ctrl)
		sessions.EXPECT().SessionCount(gomock.Any()).Return(1, nil)

		c := &controller{
			sessions:           sessions,
			shutdowner:         fxmock.NewMockShutdowner(ctrl),
			logger:             zap.NewNop().Sugar(),
			idleTimeoutMinutes: 20 * time.Millisecond,
		}
		require.NoError(t, c.refreshIdleTimer(ctx))
		require.NoError(t, c.refreshIdleTimer(ctx))
		time.Sleep(50 * time.Millisecond)
		c.stopIdleTimer()
	})

	t.Run("disabled", func(t *testing.T) {
		c := &controller{}
		require.NoError(t, c.refreshIdleTimer(ctx))
		assert.Nil(t, c.idleTimer)
		c.stopIdleTimer()
	})
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
