//go:build unix

package sockets

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

// unixStack talks to the BSD socket API directly. There is no process-wide
// state to set up on POSIX systems.
type unixStack struct{}

func newStack() Stack {
	return unixStack{}
}

func (unixStack) Initialize() error   { return nil }
func (unixStack) Deinitialize() error { return nil }

func (unixStack) Socket() (Handle, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return InvalidHandle, err
	}
	unix.CloseOnExec(fd)

	// Lets a rerun bind while the previous run's connection sits in
	// TIME_WAIT. A live listener on the port still makes bind fail.
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return InvalidHandle, err
	}
	return Handle(fd), nil
}

func (unixStack) Bind(h Handle, addr netip.AddrPort) error {
	sa, err := sockaddrInet4(addr)
	if err != nil {
		return err
	}
	return unix.Bind(int(h), sa)
}

func (unixStack) Listen(h Handle, backlog int) error {
	return unix.Listen(int(h), backlog)
}

func (unixStack) Accept(h Handle) (Handle, netip.AddrPort, error) {
	for {
		fd, sa, err := unix.Accept(int(h))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return InvalidHandle, netip.AddrPort{}, err
		}
		unix.CloseOnExec(fd)
		return Handle(fd), addrPortOf(sa), nil
	}
}

func (unixStack) LocalAddr(h Handle) (netip.AddrPort, error) {
	sa, err := unix.Getsockname(int(h))
	if err != nil {
		return netip.AddrPort{}, err
	}
	addr := addrPortOf(sa)
	if !addr.IsValid() {
		return netip.AddrPort{}, fmt.Errorf("unexpected socket address %T", sa)
	}
	return addr, nil
}

func (unixStack) Recv(h Handle, p []byte) (int, error) {
	for {
		n, err := unix.Read(int(h), p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

func (unixStack) Send(h Handle, p []byte) (int, error) {
	for {
		n, err := unix.Write(int(h), p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

func (unixStack) Shutdown(h Handle, how int) error {
	return unix.Shutdown(int(h), how)
}

func (unixStack) Close(h Handle) error {
	return unix.Close(int(h))
}

func (unixStack) ShutdownConstants() ShutdownConstants {
	return ShutdownConstants{
		Recv: unix.SHUT_RD,
		Send: unix.SHUT_WR,
		Both: unix.SHUT_RDWR,
	}
}

func sockaddrInet4(addr netip.AddrPort) (*unix.SockaddrInet4, error) {
	ip := addr.Addr().Unmap()
	if !ip.Is4() {
		return nil, fmt.Errorf("not an IPv4 address: %s", addr.Addr())
	}
	return &unix.SockaddrInet4{Port: int(addr.Port()), Addr: ip.As4()}, nil
}

func addrPortOf(sa unix.Sockaddr) netip.AddrPort {
	if sa4, ok := sa.(*unix.SockaddrInet4); ok {
		return netip.AddrPortFrom(netip.AddrFrom4(sa4.Addr), uint16(sa4.Port))
	}
	return netip.AddrPort{}
}
