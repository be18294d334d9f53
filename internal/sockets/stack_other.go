//go:build !unix && !windows

package sockets

import "net/netip"

// unsupportedStack fails Initialize, so no other method is ever reached.
type unsupportedStack struct{}

func newStack() Stack {
	return unsupportedStack{}
}

func (unsupportedStack) Initialize() error   { return ErrUnsupported }
func (unsupportedStack) Deinitialize() error { return nil }

func (unsupportedStack) Socket() (Handle, error) { return InvalidHandle, ErrUnsupported }

func (unsupportedStack) Bind(Handle, netip.AddrPort) error { return ErrUnsupported }

func (unsupportedStack) Listen(Handle, int) error { return ErrUnsupported }

func (unsupportedStack) Accept(Handle) (Handle, netip.AddrPort, error) {
	return InvalidHandle, netip.AddrPort{}, ErrUnsupported
}

func (unsupportedStack) LocalAddr(Handle) (netip.AddrPort, error) {
	return netip.AddrPort{}, ErrUnsupported
}

func (unsupportedStack) Recv(Handle, []byte) (int, error) { return 0, ErrUnsupported }
func (unsupportedStack) Send(Handle, []byte) (int, error) { return 0, ErrUnsupported }

func (unsupportedStack) Shutdown(Handle, int) error { return ErrUnsupported }
func (unsupportedStack) Close(Handle) error         { return ErrUnsupported }

func (unsupportedStack) ShutdownConstants() ShutdownConstants {
	return ShutdownConstants{Recv: 0, Send: 1, Both: 2}
}
