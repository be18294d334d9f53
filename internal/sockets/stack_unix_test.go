//go:build unix

package sockets

import (
	"io"
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixStack_RoundTrip(t *testing.T) {
	stack := New()
	require.NoError(t, stack.Initialize())
	defer stack.Deinitialize()

	ln, err := stack.Socket()
	require.NoError(t, err)
	defer stack.Close(ln)

	require.NoError(t, stack.Bind(ln, netip.MustParseAddrPort("127.0.0.1:0")))
	require.NoError(t, stack.Listen(ln, 0))

	local, err := stack.LocalAddr(ln)
	require.NoError(t, err)
	assert.True(t, local.Addr().Is4())
	assert.NotZero(t, local.Port())

	type clientResult struct {
		local string
		reply []byte
		err   error
	}
	done := make(chan clientResult, 1)
	go func() {
		conn, err := net.Dial("tcp4", local.String())
		if err != nil {
			done <- clientResult{err: err}
			return
		}
		defer conn.Close()
		if _, err := conn.Write([]byte("ping")); err != nil {
			done <- clientResult{err: err}
			return
		}
		reply, err := io.ReadAll(conn)
		done <- clientResult{local: conn.LocalAddr().String(), reply: reply, err: err}
	}()

	conn, peer, err := stack.Accept(ln)
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := stack.Recv(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	n, err = stack.Send(conn, []byte("pong"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	consts := stack.ShutdownConstants()
	require.NoError(t, stack.Shutdown(conn, consts.Send))
	require.NoError(t, stack.Close(conn))

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "pong", string(res.reply))
	assert.Equal(t, res.local, peer.String())
}

func TestUnixStack_BindInUse(t *testing.T) {
	busy, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	stack := New()
	h, err := stack.Socket()
	require.NoError(t, err)
	defer stack.Close(h)

	addr := netip.MustParseAddrPort(busy.Addr().String())
	assert.Error(t, stack.Bind(h, addr))
}

func TestUnixStack_BindRejectsIPv6(t *testing.T) {
	stack := New()
	h, err := stack.Socket()
	require.NoError(t, err)
	defer stack.Close(h)

	assert.Error(t, stack.Bind(h, netip.MustParseAddrPort("[::1]:0")))
}

func TestUnixStack_ShutdownConstantsDistinct(t *testing.T) {
	c := New().ShutdownConstants()
	assert.NotEqual(t, c.Recv, c.Send)
	assert.NotEqual(t, c.Send, c.Both)
	assert.NotEqual(t, c.Recv, c.Both)
}
