package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/oneshot/internal/config"
	"github.com/wesleyorama2/oneshot/internal/output"
)

var version = "0.1.0"

// reportedError marks an error that was already printed to the console.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// NewRootCmd builds the command tree. Running the root command without a
// subcommand serves once.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "oneshot",
		Short:   "Serve one fixed HTTP response to one TCP client, then exit",
		Version: version,
		Long: `Oneshot binds TCP port 6543 on all IPv4 interfaces, accepts a single
connection, reads once, answers with a fixed "Hello, World!" HTTP response
and releases every resource before exiting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runServe,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("color", "", "Color output: auto, always or never")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error or disabled")
	addServeFlags(rootCmd)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newProbeCmd())

	return rootCmd
}

// Execute runs the command line. Errors not already shown on the console are
// printed to stderr.
func Execute() error {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()

	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// settings merges flags over the configuration file over defaults.
func settings(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("color") {
		s, _ := flags.GetString("color")
		if cfg.Color, err = output.ParseColorMode(s); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		port, _ := flags.GetInt("port")
		if port < 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid port %d, must be between 0 and 65535", port)
		}
		cfg.Port = port
	}
	if flags.Lookup("report") != nil && flags.Changed("report") {
		s, _ := flags.GetString("report")
		if cfg.Report, err = output.ParseReportFormat(s); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}
