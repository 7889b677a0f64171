package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"iam-assistant-backend/internal/config"
)

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "iam-assistant",
		Short:         "Chat endpoint for the IAM assistant widget",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().BoolVar(&opts.local, "local", false, "answer from the built-in rules only, without remote generation")
	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "YAML rules file replacing the built-in rules")

	root.AddCommand(newServeCmd(&opts), newAskCmd(&opts))
	return root
}

// options are shared by all subcommands and override the environment.
type options struct {
	local     bool
	rulesFile string
	port      string
	verbose   bool
}

func (o options) apply(cfg config.Config) config.Config {
	if o.local {
		cfg.Strategy = config.StrategyLocal
	}
	if o.rulesFile != "" {
		cfg.RulesFile = o.rulesFile
	}
	if o.port != "" {
		cfg.Port = o.port
	}
	return cfg
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogDev {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
