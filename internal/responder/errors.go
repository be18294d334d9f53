package responder

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal responder error by the lifecycle stage that
// failed.
type Kind int

const (
	KindSubsystemInit Kind = iota + 1
	KindResolution
	KindNoUsableSocket
	KindListen
	KindAccept
	KindExchange
)

func (k Kind) String() string {
	switch k {
	case KindSubsystemInit:
		return "subsystem init"
	case KindResolution:
		return "resolution"
	case KindNoUsableSocket:
		return "no usable socket"
	case KindListen:
		return "listen"
	case KindAccept:
		return "accept"
	case KindExchange:
		return "exchange"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	// ErrNoUsableSocket means every candidate failed to create or bind.
	ErrNoUsableSocket = errors.New("could not create socket")
	// ErrShortWrite means send returned before transmitting the whole
	// response.
	ErrShortWrite = errors.New("short write")
)

// Error is a fatal responder error. Op names the failing operation as it
// appears in diagnostics ("getaddrinfo", "listen", "recv", ...).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 if err is not a responder error.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return 0
}
