// Package responder implements the single-shot HTTP responder: bind one
// IPv4 listening socket, accept exactly one connection, read once, write a
// fixed HTTP/1.1 response, and release everything in reverse order.
package responder

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/wesleyorama2/oneshot/internal/sockets"
)

const (
	// DefaultPort is the port served when no override is given.
	DefaultPort = 6543
	// Backlog is the listen backlog. Only one connection is ever served.
	Backlog = 0
	// RecvBufferSize bounds the single read of the request.
	RecvBufferSize = 4096
)

// Response is written verbatim, in one send, to the accepted connection.
const Response = "HTTP/1.1 200 OK\r\n" +
	"Content-Type: text/html\r\n" +
	"\r\n" +
	"<h1>Hello, world!</h1>\n"

var response = []byte(Response)

// Resolver yields the ordered bind candidates for a host and service.
type Resolver interface {
	Resolve(ctx context.Context, host, service string) ([]sockets.Candidate, error)
}

// Observer receives the human-facing events of a run.
type Observer interface {
	// BindFailed is called for each candidate whose bind failed before the
	// next candidate is tried.
	BindFailed(c sockets.Candidate, err error)
	Listening(addr netip.AddrPort)
	Accepted(peer netip.AddrPort)
}

type nopObserver struct{}

func (nopObserver) BindFailed(sockets.Candidate, error) {}
func (nopObserver) Listening(netip.AddrPort)            {}
func (nopObserver) Accepted(netip.AddrPort)             {}

// Responder serves a single connection per Run.
type Responder struct {
	stack    sockets.Stack
	resolver Resolver
	observer Observer
	log      zerolog.Logger
	host     string
	port     int
}

// Option configures a Responder.
type Option func(*Responder)

// WithPort sets the port to bind. 0 lets the kernel choose.
func WithPort(port int) Option {
	return func(r *Responder) {
		r.port = port
	}
}

// WithHost restricts binding to the candidates of host instead of the
// wildcard address.
func WithHost(host string) Option {
	return func(r *Responder) {
		r.host = host
	}
}

// WithStack replaces the platform socket stack.
func WithStack(stack sockets.Stack) Option {
	return func(r *Responder) {
		r.stack = stack
	}
}

// WithResolver replaces the candidate resolver.
func WithResolver(resolver Resolver) Option {
	return func(r *Responder) {
		r.resolver = resolver
	}
}

// WithObserver sets the receiver of bind, listen and accept events.
func WithObserver(o Observer) Option {
	return func(r *Responder) {
		r.observer = o
	}
}

// WithLogger sets the logger used for stage tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Responder) {
		r.log = l
	}
}

// New creates a responder for the platform stack on DefaultPort.
func New(options ...Option) *Responder {
	r := &Responder{
		stack:    sockets.New(),
		resolver: &sockets.Resolver{},
		observer: nopObserver{},
		log:      zerolog.Nop(),
		port:     DefaultPort,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Run performs the full lifecycle once. The returned report is never nil
// and describes how far the run got, even when err is non-nil. Only address
// resolution observes ctx; accept, recv and send block without timeout.
func (r *Responder) Run(ctx context.Context) (report *Report, err error) {
	report = &Report{State: Uninitialized, Started: time.Now()}
	defer func() {
		report.Duration = time.Since(report.Started)
		report.Err = err
		if err != nil {
			r.log.Debug().Err(err).Str("state", report.State.String()).Msg("run failed")
		}
		if report.ReleaseErr != nil {
			r.log.Warn().Err(report.ReleaseErr).Msg("teardown reported errors")
		}
	}()

	if err := r.stack.Initialize(); err != nil {
		return report, &Error{Kind: KindSubsystemInit, Op: "initialize", Err: err}
	}
	r.advance(report, SubsystemReady)
	defer r.release(report, "subsystem", r.stack.Deinitialize)

	ln, err := r.bind(ctx, report)
	if err != nil {
		return report, err
	}
	defer r.release(report, "listener", func() error { return r.stack.Close(ln) })

	if err := r.stack.Listen(ln, Backlog); err != nil {
		return report, &Error{Kind: KindListen, Op: "listen", Err: err}
	}
	r.advance(report, Listening)

	conn, peer, err := r.stack.Accept(ln)
	if err != nil {
		return report, &Error{Kind: KindAccept, Op: "accept", Err: err}
	}
	report.Peer = peer
	r.advance(report, Connected)
	defer r.release(report, "connection", func() error { return r.stack.Close(conn) })
	r.observer.Accepted(peer)

	if err := r.exchange(conn, report); err != nil {
		return report, err
	}
	r.advance(report, Exchanged)

	if err := r.stack.Shutdown(conn, r.stack.ShutdownConstants().Send); err != nil {
		r.log.Debug().Err(err).Msg("shutdown of send direction failed")
	}

	r.advance(report, Succeeded)
	return report, nil
}

// bind resolves the candidates and returns a socket bound to the first one
// that accepts both socket creation and bind.
func (r *Responder) bind(ctx context.Context, report *Report) (sockets.Handle, error) {
	candidates, err := r.resolver.Resolve(ctx, r.host, strconv.Itoa(r.port))
	if err != nil {
		return sockets.InvalidHandle, &Error{Kind: KindResolution, Op: "getaddrinfo", Err: err}
	}
	if len(candidates) == 0 {
		return sockets.InvalidHandle, &Error{Kind: KindResolution, Op: "getaddrinfo", Err: sockets.ErrNoCandidates}
	}

	h := sockets.InvalidHandle
	var chosen sockets.Candidate
	var lastErr error
	for _, c := range candidates {
		s, err := r.stack.Socket()
		if err != nil {
			r.log.Debug().Err(err).Str("candidate", c.String()).Msg("socket creation failed")
			lastErr = err
			continue
		}

		if err := r.stack.Bind(s, c.Addr); err != nil {
			r.observer.BindFailed(c, err)
			if cerr := r.stack.Close(s); cerr != nil {
				r.log.Debug().Err(cerr).Str("candidate", c.String()).Msg("close after failed bind")
			}
			lastErr = err
			continue
		}

		h, chosen = s, c
		break
	}

	if h == sockets.InvalidHandle {
		err := ErrNoUsableSocket
		if lastErr != nil {
			err = fmt.Errorf("%w: %w", ErrNoUsableSocket, lastErr)
		}
		return sockets.InvalidHandle, &Error{Kind: KindNoUsableSocket, Err: err}
	}

	addr, err := r.stack.LocalAddr(h)
	if err != nil {
		r.log.Debug().Err(err).Msg("getsockname failed, reporting candidate address")
		addr = chosen.Addr
	}
	report.BoundAddr = addr
	r.advance(report, Bound)
	r.observer.Listening(addr)

	return h, nil
}

// exchange reads the request once and writes the fixed response once.
//
// The whole request is assumed to arrive in the single read. Anything left
// unread when the connection is closed makes the kernel send a reset
// instead of a FIN, which a reverse proxy typically turns into a 502.
func (r *Responder) exchange(conn sockets.Handle, report *Report) error {
	buf := make([]byte, RecvBufferSize)
	n, err := r.stack.Recv(conn, buf)
	if err != nil {
		return &Error{Kind: KindExchange, Op: "recv", Err: err}
	}
	report.BytesReceived = n
	r.log.Debug().Int("bytes", n).Msg("request read")

	n, err = r.stack.Send(conn, response)
	if err != nil {
		return &Error{Kind: KindExchange, Op: "send", Err: err}
	}
	report.BytesSent = n
	if n != len(response) {
		return &Error{Kind: KindExchange, Op: "send", Err: fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(response))}
	}
	return nil
}

func (r *Responder) advance(report *Report, s State) {
	r.log.Debug().Str("from", report.State.String()).Str("to", s.String()).Msg("state")
	report.State = s
}

// release runs one teardown step. It is only deferred after the matching
// acquisition succeeded, so it runs exactly once per acquired resource.
func (r *Responder) release(report *Report, name string, fn func() error) {
	report.Released = append(report.Released, name)
	if err := fn(); err != nil {
		report.ReleaseErr = multierr.Append(report.ReleaseErr, fmt.Errorf("release %s: %w", name, err))
	}
}
