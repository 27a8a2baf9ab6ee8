// Package main is the entrypoint of yls, the YARA language server.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/uber/yara-lsp/src/yls/app"
	"github.com/uber/yara-lsp/src/yls/internal/core"
	"go.uber.org/fx"
)

// version is set by build flags during release.
var version = "dev"

const (
	_envAddress = "YLS_ADDRESS"
	_envStdio   = "YLS_STDIO"
)

type rootOptions struct {
	configDir string
	address   string
	stdio     bool
}

func opts() fx.Option {
	return fx.Options(
		app.Module,
	)
}

func newRootCmd(run func() error) *cobra.Command {
	var o rootOptions

	cmd := &cobra.Command{
		Use:   "yls",
		Short: "Language server for YARA rules",
		Long: `yls serves the Language Server Protocol for YARA rule files.

By default it listens on a TCP address and writes the bound address to its server info file,
where the editor extension picks it up. With --stdio it serves a single editor on stdin and stdout.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.applyEnv(cmd); err != nil {
				return err
			}
			return run()
		},
	}

	cmd.Flags().StringVar(&o.configDir, "config-dir", "", "directory holding meta.yaml (default is $"+core.ConfigDirEnv+" or src/yls/config)")
	cmd.Flags().StringVar(&o.address, "address", "", "TCP address to listen on, e.g. 127.0.0.1:4389")
	cmd.Flags().BoolVar(&o.stdio, "stdio", false, "serve a single session on stdin and stdout")
	return cmd
}

// applyEnv exposes explicitly set flags to the configuration through the environment variables it expands.
func (o rootOptions) applyEnv(cmd *cobra.Command) error {
	overrides := map[string]string{}
	if cmd.Flags().Changed("config-dir") {
		overrides[core.ConfigDirEnv] = o.configDir
	}
	if cmd.Flags().Changed("address") {
		overrides[_envAddress] = o.address
	}
	if cmd.Flags().Changed("stdio") {
		overrides[_envStdio] = strconv.FormatBool(o.stdio)
	}

	for k, v := range overrides {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("setting %s: %w", k, err)
		}
	}
	return nil
}

func runApp() error {
	a := fx.New(opts())
	if err := a.Err(); err != nil {
		return err
	}
	a.Run()
	return nil
}

func main() {
	if err := newRootCmd(runApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
