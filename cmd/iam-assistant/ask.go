package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"iam-assistant-backend/internal/assistant"
	"iam-assistant-backend/internal/config"
	"iam-assistant-backend/internal/types"
)

func newAskCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer a single message and print the JSON reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, *opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log remote generation failures to stderr")
	return cmd
}

func runAsk(cmd *cobra.Command, opts options, message string) error {
	cfg := opts.apply(config.Load())
	logger := zap.NewNop()
	if opts.verbose {
		l, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer l.Sync()
		logger = l
	}

	a, err := assistant.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	ans := assistant.Apology()
	if strings.TrimSpace(message) != "" {
		ans = a.Answer(cmd.Context(), message)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(types.ChatResponse{Response: ans.Text, Type: string(ans.Category)})
}
