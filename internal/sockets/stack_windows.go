//go:build windows

package sockets

import (
	"fmt"
	"net/netip"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	// Winsock entry points that x/sys/windows does not wrap in blocking form.
	// https://learn.microsoft.com/en-us/windows/win32/api/winsock2/
	ws2_32     = windows.NewLazySystemDLL("ws2_32.dll")
	procAccept = ws2_32.NewProc("accept")
	procRecv   = ws2_32.NewProc("recv")
	procSend   = ws2_32.NewProc("send")
)

const socketError = -1

// winsockVersion is MAKEWORD(2, 2).
const winsockVersion = uint32(2<<8 | 2)

type winsockStack struct{}

func newStack() Stack {
	return winsockStack{}
}

func (winsockStack) Initialize() error {
	var data windows.WSAData
	if err := windows.WSAStartup(winsockVersion, &data); err != nil {
		return fmt.Errorf("could not initialize Windows Sockets: %w", err)
	}
	return nil
}

func (winsockStack) Deinitialize() error {
	return windows.WSACleanup()
}

// Socket does not set SO_REUSEADDR: on Windows it lets another process
// steal a bound port.
func (winsockStack) Socket() (Handle, error) {
	s, err := windows.Socket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		return InvalidHandle, err
	}
	return Handle(s), nil
}

func (winsockStack) Bind(h Handle, addr netip.AddrPort) error {
	ip := addr.Addr().Unmap()
	if !ip.Is4() {
		return fmt.Errorf("not an IPv4 address: %s", addr.Addr())
	}
	return windows.Bind(windows.Handle(h), &windows.SockaddrInet4{Port: int(addr.Port()), Addr: ip.As4()})
}

func (winsockStack) Listen(h Handle, backlog int) error {
	return windows.Listen(windows.Handle(h), backlog)
}

func (winsockStack) Accept(h Handle) (Handle, netip.AddrPort, error) {
	var rsa windows.RawSockaddrAny
	size := int32(unsafe.Sizeof(rsa))
	r1, _, lastErr := procAccept.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&rsa)),
		uintptr(unsafe.Pointer(&size)))
	if windows.Handle(r1) == windows.InvalidHandle {
		return InvalidHandle, netip.AddrPort{}, lastErr
	}
	return Handle(r1), rawAddrPort(&rsa), nil
}

func (winsockStack) LocalAddr(h Handle) (netip.AddrPort, error) {
	sa, err := windows.Getsockname(windows.Handle(h))
	if err != nil {
		return netip.AddrPort{}, err
	}
	sa4, ok := sa.(*windows.SockaddrInet4)
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("unexpected socket address %T", sa)
	}
	return netip.AddrPortFrom(netip.AddrFrom4(sa4.Addr), uint16(sa4.Port)), nil
}

func (winsockStack) Recv(h Handle, p []byte) (int, error) {
	return transfer(procRecv, h, p)
}

func (winsockStack) Send(h Handle, p []byte) (int, error) {
	return transfer(procSend, h, p)
}

func (winsockStack) Shutdown(h Handle, how int) error {
	return windows.Shutdown(windows.Handle(h), how)
}

func (winsockStack) Close(h Handle) error {
	return windows.Closesocket(windows.Handle(h))
}

func (winsockStack) ShutdownConstants() ShutdownConstants {
	return ShutdownConstants{
		Recv: windows.SHUT_RD,
		Send: windows.SHUT_WR,
		Both: windows.SHUT_RDWR,
	}
}

// transfer calls recv or send, which share the signature
// int f(SOCKET s, char *buf, int len, int flags).
func transfer(proc *windows.LazyProc, h Handle, p []byte) (int, error) {
	var buf *byte
	if len(p) > 0 {
		buf = &p[0]
	}
	r1, _, lastErr := proc.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(buf)),
		uintptr(int32(len(p))),
		0)
	n := int32(r1)
	if n == socketError {
		return 0, lastErr
	}
	return int(n), nil
}

func rawAddrPort(rsa *windows.RawSockaddrAny) netip.AddrPort {
	if rsa.Addr.Family != windows.AF_INET {
		return netip.AddrPort{}
	}
	sa4 := (*windows.RawSockaddrInet4)(unsafe.Pointer(rsa))
	// sin_port is in network byte order.
	p := (*[2]byte)(unsafe.Pointer(&sa4.Port))
	return netip.AddrPortFrom(netip.AddrFrom4(sa4.Addr), uint16(p[0])<<8|uint16(p[1]))
}
