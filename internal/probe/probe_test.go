package probe

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/oneshot/internal/responder"
	"github.com/wesleyorama2/oneshot/internal/sockets"
)

// stubServer accepts one connection, reads once and answers with reply.
func stubServer(t *testing.T, reply string) (string, <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 4096)
		n, _ := conn.Read(buf)
		received <- buf[:n]
		conn.Write([]byte(reply))
	}()

	return ln.Addr().String(), received
}

func TestClient_Do_Match(t *testing.T) {
	addr, received := stubServer(t, responder.Response)

	result, err := NewClient(WithTimeout(5*time.Second)).Do(context.Background(), addr, []byte(DefaultRequest))
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.Equal(t, -1, result.Mismatch)
	assert.Equal(t, len(DefaultRequest), result.BytesSent)
	assert.Equal(t, DefaultRequest, string(<-received))

	require.NoError(t, result.ParseErr)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, "200 OK", result.Status)
	assert.Equal(t, "text/html", result.ContentType)
	assert.Equal(t, "<h1>Hello, world!</h1>\n", string(result.Body))
}

func TestClient_Do_Mismatch(t *testing.T) {
	addr, _ := stubServer(t, "HTTP/1.1 502 Bad Gateway\r\n\r\n")

	result, err := NewClient(WithTimeout(5*time.Second)).Do(context.Background(), addr, []byte(DefaultRequest))
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.Equal(t, 9, result.Mismatch)
	assert.Equal(t, 502, result.StatusCode)
}

func TestClient_Do_EmptyPayloadHalfCloses(t *testing.T) {
	addr, received := stubServer(t, responder.Response)

	result, err := NewClient(WithTimeout(5*time.Second)).Do(context.Background(), addr, nil)
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.Zero(t, result.BytesSent)
	assert.Empty(t, <-received)
}

func TestClient_Do_CustomExpected(t *testing.T) {
	addr, _ := stubServer(t, "pong")

	result, err := NewClient(WithExpected([]byte("pong"))).Do(context.Background(), addr, []byte("ping"))
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.Error(t, result.ParseErr)
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewClient(WithTimeout(time.Second)).Do(context.Background(), addr, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect")
}

func TestClient_Do_AgainstResponder(t *testing.T) {
	listening := make(chan netip.AddrPort, 1)
	done := make(chan error, 1)
	go func() {
		_, err := responder.New(
			responder.WithHost("127.0.0.1"),
			responder.WithPort(0),
			responder.WithObserver(observerFunc(func(a netip.AddrPort) { listening <- a })),
		).Run(context.Background())
		done <- err
	}()

	var addr netip.AddrPort
	select {
	case addr = <-listening:
	case err := <-done:
		t.Fatalf("responder exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("responder did not bind")
	}

	client := NewClient(WithTimeout(5*time.Second), WithWait(2*time.Second))
	result, err := client.Do(context.Background(), addr.String(), []byte(DefaultRequest))
	require.NoError(t, err)
	assert.True(t, result.Matched, "got %q", result.Raw)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("responder did not exit")
	}
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", -1},
		{"abc", "abc", -1},
		{"abc", "abd", 2},
		{"ab", "abc", 2},
		{"abc", "", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FirstDifference([]byte(tt.a), []byte(tt.b)), "%q vs %q", tt.a, tt.b)
	}
}

type observerFunc func(netip.AddrPort)

func (f observerFunc) BindFailed(sockets.Candidate, error) {}
func (f observerFunc) Listening(a netip.AddrPort)          { f(a) }
func (f observerFunc) Accepted(netip.AddrPort)             {}
