// Package probe is the client half of the smoke test: it connects to a
// responder, sends one request, reads until the responder closes, and
// compares what it got with the fixed response.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/wesleyorama2/oneshot/internal/responder"
)

// DefaultRequest is sent when no payload is given.
const DefaultRequest = "GET / HTTP/1.1\r\nHost: oneshot\r\n\r\n"

const retryInterval = 20 * time.Millisecond

// Result holds what the probe observed.
type Result struct {
	Addr      string
	Raw       []byte
	BytesSent int
	Matched   bool
	// Mismatch is the offset of the first differing byte, or -1.
	Mismatch int

	// Status and headers as parsed from Raw. ParseErr is set when Raw is
	// not a valid HTTP/1.x response.
	Status      string
	StatusCode  int
	ContentType string
	Body        []byte
	ParseErr    error

	ConnectTime time.Duration
	TotalTime   time.Duration
}

// Client probes responders.
type Client struct {
	timeout  time.Duration
	wait     time.Duration
	expected []byte
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds the whole probe, connect included.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithWait keeps retrying the connection for up to wait, for responders
// that are still starting.
func WithWait(wait time.Duration) Option {
	return func(c *Client) {
		c.wait = wait
	}
}

// WithExpected replaces the expected response bytes.
func WithExpected(expected []byte) Option {
	return func(c *Client) {
		c.expected = expected
	}
}

// NewClient creates a probe expecting responder.Response.
func NewClient(options ...Option) *Client {
	c := &Client{
		timeout:  10 * time.Second,
		expected: []byte(responder.Response),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Do connects to addr, writes payload in a single write and reads the
// reply until EOF. An empty payload half-closes the connection instead, so
// the responder's read returns zero bytes.
func (c *Client) Do(ctx context.Context, addr string, payload []byte) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	conn, err := c.dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	result := &Result{Addr: addr, Mismatch: -1, ConnectTime: time.Since(start)}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, err
		}
	}

	if len(payload) > 0 {
		n, err := conn.Write(payload)
		result.BytesSent = n
		if err != nil {
			return nil, fmt.Errorf("write request: %w", err)
		}
	} else if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			return nil, fmt.Errorf("half-close: %w", err)
		}
	}

	raw, err := io.ReadAll(conn)
	result.TotalTime = time.Since(start)
	result.Raw = raw
	if err != nil {
		return result, fmt.Errorf("read response: %w", err)
	}

	result.Mismatch = FirstDifference(raw, c.expected)
	result.Matched = result.Mismatch < 0
	parse(result)

	return result, nil
}

func (c *Client) dial(ctx context.Context, addr string) (net.Conn, error) {
	var dialer net.Dialer
	giveUp := time.Now().Add(c.wait)
	for {
		conn, err := dialer.DialContext(ctx, "tcp4", addr)
		if err == nil || ctx.Err() != nil || time.Now().After(giveUp) {
			return conn, err
		}

		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(retryInterval):
		}
	}
}

// FirstDifference returns the offset of the first byte where a and b
// differ, or -1 when they are equal. A strict prefix differs at the length
// of the shorter slice.
func FirstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

func parse(result *Result) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(result.Raw)), nil)
	if err != nil {
		result.ParseErr = err
		return
	}
	defer resp.Body.Close()

	result.Status = resp.Status
	result.StatusCode = resp.StatusCode
	result.ContentType = resp.Header.Get("Content-Type")
	result.Body, result.ParseErr = io.ReadAll(resp.Body)
}
