// Package sockets provides the platform socket API used by the responder.
//
// Each supported platform ships exactly one implementation of Stack,
// selected at build time. Callers obtain it with New and never branch on
// the platform themselves.
package sockets

import (
	"errors"
	"net/netip"
)

// Handle is an OS socket handle (a file descriptor on POSIX, a SOCKET on
// Windows).
type Handle uintptr

// InvalidHandle is returned alongside an error by operations that create
// handles.
const InvalidHandle = ^Handle(0)

// ErrUnsupported is returned by Initialize on platforms without a socket
// stack.
var ErrUnsupported = errors.New("sockets are not supported on this platform")

// ShutdownConstants holds the platform values for the "how" argument of
// Shutdown.
type ShutdownConstants struct {
	Recv int
	Send int
	Both int
}

// Stack is the capability interface over the platform socket API. All
// sockets it creates are IPv4 stream sockets and all calls block.
type Stack interface {
	// Initialize prepares the process for socket use. No other method may
	// be called unless it succeeded.
	Initialize() error
	// Deinitialize releases process-wide state. Only valid after a
	// successful Initialize.
	Deinitialize() error

	Socket() (Handle, error)
	Bind(h Handle, addr netip.AddrPort) error
	Listen(h Handle, backlog int) error
	Accept(h Handle) (Handle, netip.AddrPort, error)
	LocalAddr(h Handle) (netip.AddrPort, error)
	Recv(h Handle, p []byte) (int, error)
	Send(h Handle, p []byte) (int, error)
	Shutdown(h Handle, how int) error
	Close(h Handle) error

	ShutdownConstants() ShutdownConstants
}

// New returns the socket stack for the current platform.
func New() Stack {
	return newStack()
}
