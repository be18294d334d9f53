package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/oneshot/internal/logger"
	"github.com/wesleyorama2/oneshot/internal/output"
	"github.com/wesleyorama2/oneshot/internal/responder"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept one connection and answer it with the fixed response",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addServeFlags(serveCmd)
	return serveCmd
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", responder.DefaultPort, "TCP port to listen on")
	cmd.Flags().StringP("report", "r", "", "Print a run report: none, text, json or yaml")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cmd.ErrOrStderr())
	console := output.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Color)

	r := responder.New(
		responder.WithPort(cfg.Port),
		responder.WithObserver(console),
		responder.WithLogger(logger.WithComponent(log, "responder")),
	)

	log.Debug().Int("port", cfg.Port).Str("report", string(cfg.Report)).Msg("starting")
	report, runErr := r.Run(cmd.Context())
	if runErr != nil {
		console.Failure(runErr)
	}

	out, err := output.FormatReport(report, cfg.Report)
	if err != nil {
		log.Error().Err(err).Msg("formatting report")
	} else if out != "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
	}

	if runErr != nil {
		return &reportedError{err: runErr}
	}
	return nil
}
