package cli

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/oneshot/internal/logger"
	"github.com/wesleyorama2/oneshot/internal/output"
	"github.com/wesleyorama2/oneshot/internal/probe"
	"github.com/wesleyorama2/oneshot/internal/responder"
)

var errMismatch = errors.New("response does not match the expected bytes")

func newProbeCmd() *cobra.Command {
	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Send one request to a responder and verify its reply",
		Args:  cobra.NoArgs,
		RunE:  runProbe,
	}

	probeCmd.Flags().StringP("addr", "a", fmt.Sprintf("127.0.0.1:%d", responder.DefaultPort), "Responder address")
	probeCmd.Flags().String("payload", probe.DefaultRequest, "Request bytes to send; empty half-closes the connection")
	probeCmd.Flags().Int("payload-size", 0, "Send this many filler bytes instead of --payload")
	probeCmd.Flags().DurationP("timeout", "t", 10*time.Second, "Overall probe timeout")
	probeCmd.Flags().Duration("wait", 0, "Keep retrying the connection for this long")

	return probeCmd
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	payload, _ := cmd.Flags().GetString("payload")
	size, _ := cmd.Flags().GetInt("payload-size")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	wait, _ := cmd.Flags().GetDuration("wait")

	if size < 0 {
		return fmt.Errorf("invalid payload size %d", size)
	}
	body := []byte(payload)
	if size > 0 {
		body = bytes.Repeat([]byte{'x'}, size)
	}

	log := logger.WithComponent(logger.New(cfg.LogLevel, cmd.ErrOrStderr()), "probe")
	console := output.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Color)

	client := probe.NewClient(probe.WithTimeout(timeout), probe.WithWait(wait))
	log.Debug().Str("addr", addr).Int("payload", len(body)).Msg("probing")

	res, err := client.Do(cmd.Context(), addr, body)
	if err != nil {
		console.Failure(err)
		return &reportedError{err: err}
	}
	console.ProbeResult(res)

	if !res.Matched {
		return &reportedError{err: errMismatch}
	}
	return nil
}
