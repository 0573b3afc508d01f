// Package cli implements the ragctl commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"research-chatbot/internal/app"
	"research-chatbot/internal/config"
	"research-chatbot/internal/service"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// Opener builds the query service for one command invocation. The returned function releases it.
type Opener func(ctx context.Context) (service.QueryService, func() error, error)

// NewRootCmd creates the ragctl command tree. Every subcommand obtains its service through open.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "ragctl",
		Short:         "Ask research questions from the command line",
		Long:          "Answer questions from the indexed research collection. Sessions are kept in HISTORY_DB_PATH when set.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("format", "f", formatText, "Output format: json or text")

	root.AddCommand(
		newAskCmd(open),
		newHistoryCmd(open),
		newResetCmd(open),
	)
	return root
}

// DefaultOpener loads configuration from the environment and wires the full pipeline.
// Logs go to stderr so command output stays parseable.
func DefaultOpener(ctx context.Context) (service.QueryService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, logCloser := app.NewLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	application, err := app.New(ctx, cfg)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, err
	}

	closeAll := func() error {
		err := application.Close()
		_ = logCloser.Close()
		return err
	}
	return application.QueryService, closeAll, nil
}

// withService opens the service, runs fn, and releases the service.
func withService(cmd *cobra.Command, open Opener, fn func(service.QueryService) error) (err error) {
	svc, closeFn, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close: %w", cerr)
		}
	}()
	return fn(svc)
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case formatJSON, formatText:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or text)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
