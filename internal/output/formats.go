package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/oneshot/internal/responder"
)

// ReportFormat represents the available run report formats
type ReportFormat string

const (
	// ReportNone prints no report
	ReportNone ReportFormat = "none"
	// ReportText is a human-readable summary
	ReportText ReportFormat = "text"
	// ReportJSON outputs in JSON format
	ReportJSON ReportFormat = "json"
	// ReportYAML outputs in YAML format
	ReportYAML ReportFormat = "yaml"
)

// ParseReportFormat parses a report format name. The empty string is
// ReportNone.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return ReportNone, nil
	case ReportNone, ReportText, ReportJSON, ReportYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid report format '%s', must be one of: none, text, json, yaml", s)
	}
}

// ReportData is the serialized form of a responder run
type ReportData struct {
	State         string   `json:"state" yaml:"state"`
	Success       bool     `json:"success" yaml:"success"`
	BoundAddress  string   `json:"boundAddress,omitempty" yaml:"boundAddress,omitempty"`
	PeerAddress   string   `json:"peerAddress,omitempty" yaml:"peerAddress,omitempty"`
	BytesReceived int      `json:"bytesReceived" yaml:"bytesReceived"`
	BytesSent     int      `json:"bytesSent" yaml:"bytesSent"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind     string   `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	Released      []string `json:"released" yaml:"released"`
	ReleaseErrors []string `json:"releaseErrors,omitempty" yaml:"releaseErrors,omitempty"`
	Timestamp     string   `json:"timestamp" yaml:"timestamp"`
	DurationMs    int64    `json:"durationMs" yaml:"durationMs"`
}

// NewReportData converts a run report for serialization
func NewReportData(r *responder.Report) ReportData {
	data := ReportData{
		State:         r.State.String(),
		Success:       r.Succeeded(),
		BytesReceived: r.BytesReceived,
		BytesSent:     r.BytesSent,
		Released:      r.Released,
		Timestamp:     r.Started.UTC().Format(time.RFC3339),
		DurationMs:    r.Duration.Milliseconds(),
	}
	if data.Released == nil {
		data.Released = []string{}
	}
	if r.BoundAddr.IsValid() {
		data.BoundAddress = r.BoundAddr.String()
	}
	if r.Peer.IsValid() {
		data.PeerAddress = r.Peer.String()
	}
	if r.Err != nil {
		data.Error = r.Err.Error()
		if kind := responder.KindOf(r.Err); kind != 0 {
			data.ErrorKind = kind.String()
		}
	}
	for _, err := range multierr.Errors(r.ReleaseErr) {
		data.ReleaseErrors = append(data.ReleaseErrors, err.Error())
	}
	return data
}

// FormatReport renders a run report in the given format. ReportNone yields
// the empty string.
func FormatReport(r *responder.Report, format ReportFormat) (string, error) {
	data := NewReportData(r)

	switch format {
	case ReportNone:
		return "", nil
	case ReportText:
		return formatText(data), nil
	case ReportJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("error formatting report as JSON: %w", err)
		}
		return string(out) + "\n", nil
	case ReportYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("error formatting report as YAML: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", format)
	}
}

func formatText(data ReportData) string {
	var buf strings.Builder

	outcome := "failed"
	if data.Success {
		outcome = "succeeded"
	}
	buf.WriteString(fmt.Sprintf("run %s in %dms (state %s)\n", outcome, data.DurationMs, data.State))

	if data.BoundAddress != "" {
		buf.WriteString(fmt.Sprintf("  bound:    %s\n", data.BoundAddress))
	}
	if data.PeerAddress != "" {
		buf.WriteString(fmt.Sprintf("  peer:     %s\n", data.PeerAddress))
		buf.WriteString(fmt.Sprintf("  received: %d bytes\n", data.BytesReceived))
		buf.WriteString(fmt.Sprintf("  sent:     %d bytes\n", data.BytesSent))
	}
	if data.Error != "" && data.ErrorKind != "" {
		buf.WriteString(fmt.Sprintf("  error:    %s (%s)\n", data.Error, data.ErrorKind))
	} else if data.Error != "" {
		buf.WriteString(fmt.Sprintf("  error:    %s\n", data.Error))
	}
	if len(data.Released) > 0 {
		buf.WriteString(fmt.Sprintf("  released: %s\n", strings.Join(data.Released, ", ")))
	}
	for _, e := range data.ReleaseErrors {
		buf.WriteString(fmt.Sprintf("  warning:  %s\n", e))
	}

	return buf.String()
}
