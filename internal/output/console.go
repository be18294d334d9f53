package output

import (
	"fmt"
	"io"
	"net/netip"

	"github.com/wesleyorama2/oneshot/internal/probe"
	"github.com/wesleyorama2/oneshot/internal/sockets"
)

// Console prints notices to Out and diagnostics to Err. It implements
// responder.Observer.
type Console struct {
	Out    io.Writer
	Err    io.Writer
	out    *ColorScheme
	errOut *ColorScheme
}

// NewConsole creates a console. Colors are chosen per stream.
func NewConsole(out, errOut io.Writer, mode ColorMode) *Console {
	return &Console{
		Out:    out,
		Err:    errOut,
		out:    SchemeFor(mode, out),
		errOut: SchemeFor(mode, errOut),
	}
}

// BindFailed prints the bind diagnostic for a rejected candidate.
func (c *Console) BindFailed(_ sockets.Candidate, err error) {
	fmt.Fprintf(c.Err, "%s %s\n", c.errOut.Error.Sprint("bind:"), err)
}

// Listening prints the bound address notice.
func (c *Console) Listening(addr netip.AddrPort) {
	fmt.Fprintf(c.Out, "%s %s\n", c.out.Notice.Sprint("listening on"), c.out.Address.Sprint(addr))
}

// Accepted prints the peer address notice.
func (c *Console) Accepted(peer netip.AddrPort) {
	fmt.Fprintf(c.Out, "%s %s\n", c.out.Notice.Sprint("accepted connection from"), c.out.Address.Sprint(peer))
}

// Failure prints one diagnostic line for a fatal error.
func (c *Console) Failure(err error) {
	fmt.Fprintln(c.Err, c.errOut.Error.Sprint(err.Error()))
}

// ProbeResult prints a pass or fail line for a probe.
func (c *Console) ProbeResult(res *probe.Result) {
	status := res.Status
	if res.ParseErr != nil {
		status = "unparseable response"
	}

	if res.Matched {
		fmt.Fprintf(c.Out, "%s %s %s %s\n",
			SuccessIcon(c.out),
			c.out.Address.Sprint(res.Addr),
			c.out.Success.Sprint(status),
			c.out.Muted.Sprintf("(%dms)", res.TotalTime.Milliseconds()))
		return
	}

	fmt.Fprintf(c.Out, "%s %s %s %s\n",
		ErrorIcon(c.out),
		c.out.Address.Sprint(res.Addr),
		c.out.Error.Sprint(status),
		c.out.Muted.Sprintf("(response differs at byte %d, got %d bytes)", res.Mismatch, len(res.Raw)))
}
