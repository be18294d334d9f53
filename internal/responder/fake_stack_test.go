package responder

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/wesleyorama2/oneshot/internal/sockets"
)

var errInjected = errors.New("injected failure")

// fakeStack records every call as "op" or "op(handle)" and fails the ops
// listed in fail.
type fakeStack struct {
	calls   []string
	fail    map[string]error
	next    sockets.Handle
	open    map[sockets.Handle]bool
	request []byte
	sent    []byte
	// sendLimit truncates sends when positive.
	sendLimit int
	// bindFailures fails this many binds before binds start succeeding.
	bindFailures int
}

func newFakeStack(failing ...string) *fakeStack {
	f := &fakeStack{
		fail:    make(map[string]error),
		next:    3,
		open:    make(map[sockets.Handle]bool),
		request: []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"),
	}
	for _, op := range failing {
		f.fail[op] = errInjected
	}
	return f
}

func (f *fakeStack) record(op string, h ...sockets.Handle) error {
	if len(h) > 0 {
		f.calls = append(f.calls, fmt.Sprintf("%s(%d)", op, h[0]))
	} else {
		f.calls = append(f.calls, op)
	}
	return f.fail[op]
}

func (f *fakeStack) handle() sockets.Handle {
	h := f.next
	f.next++
	f.open[h] = true
	return h
}

func (f *fakeStack) Initialize() error   { return f.record("initialize") }
func (f *fakeStack) Deinitialize() error { return f.record("deinitialize") }

func (f *fakeStack) Socket() (sockets.Handle, error) {
	if err := f.record("socket"); err != nil {
		return sockets.InvalidHandle, err
	}
	return f.handle(), nil
}

func (f *fakeStack) Bind(h sockets.Handle, _ netip.AddrPort) error {
	if f.bindFailures > 0 {
		f.bindFailures--
		f.record("bind", h)
		return errInjected
	}
	return f.record("bind", h)
}

func (f *fakeStack) Listen(h sockets.Handle, _ int) error { return f.record("listen", h) }

func (f *fakeStack) Accept(h sockets.Handle) (sockets.Handle, netip.AddrPort, error) {
	if err := f.record("accept", h); err != nil {
		return sockets.InvalidHandle, netip.AddrPort{}, err
	}
	return f.handle(), netip.MustParseAddrPort("192.0.2.7:40000"), nil
}

func (f *fakeStack) LocalAddr(h sockets.Handle) (netip.AddrPort, error) {
	if err := f.fail["getsockname"]; err != nil {
		return netip.AddrPort{}, err
	}
	return netip.MustParseAddrPort("0.0.0.0:6543"), nil
}

func (f *fakeStack) Recv(h sockets.Handle, p []byte) (int, error) {
	if err := f.record("recv", h); err != nil {
		return 0, err
	}
	return copy(p, f.request), nil
}

func (f *fakeStack) Send(h sockets.Handle, p []byte) (int, error) {
	if err := f.record("send", h); err != nil {
		return 0, err
	}
	n := len(p)
	if f.sendLimit > 0 && f.sendLimit < n {
		n = f.sendLimit
	}
	f.sent = append(f.sent, p[:n]...)
	return n, nil
}

func (f *fakeStack) Shutdown(h sockets.Handle, _ int) error { return f.record("shutdown", h) }

func (f *fakeStack) Close(h sockets.Handle) error {
	err := f.record("close", h)
	if !f.open[h] {
		return fmt.Errorf("close of unknown handle %d", h)
	}
	delete(f.open, h)
	return err
}

func (f *fakeStack) ShutdownConstants() sockets.ShutdownConstants {
	return sockets.ShutdownConstants{Recv: 0, Send: 1, Both: 2}
}

// staticResolver returns fixed candidates.
type staticResolver struct {
	candidates []sockets.Candidate
	err        error
}

func (s staticResolver) Resolve(context.Context, string, string) ([]sockets.Candidate, error) {
	return s.candidates, s.err
}

func candidates(addrs ...string) staticResolver {
	var r staticResolver
	for _, a := range addrs {
		r.candidates = append(r.candidates, sockets.Candidate{Addr: netip.MustParseAddrPort(a)})
	}
	return r
}

// recordingObserver keeps the observed events.
type recordingObserver struct {
	bindFailures []string
	listening    []netip.AddrPort
	accepted     []netip.AddrPort
}

func (o *recordingObserver) BindFailed(c sockets.Candidate, err error) {
	o.bindFailures = append(o.bindFailures, c.String())
}

func (o *recordingObserver) Listening(addr netip.AddrPort) {
	o.listening = append(o.listening, addr)
}

func (o *recordingObserver) Accepted(peer netip.AddrPort) {
	o.accepted = append(o.accepted, peer)
}
