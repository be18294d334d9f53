package responder

import (
	"net/netip"
	"time"
)

// Report describes one run. Fields past the state reached keep their zero
// values.
type Report struct {
	State         State
	BoundAddr     netip.AddrPort
	Peer          netip.AddrPort
	BytesReceived int
	BytesSent     int

	// Released lists the resources torn down, in release order.
	Released []string
	// ReleaseErr aggregates release failures. It never fails the run.
	ReleaseErr error
	// Err is the error Run returned.
	Err error

	Started  time.Time
	Duration time.Duration
}

// Succeeded reports whether every stage through the response send
// completed.
func (r *Report) Succeeded() bool {
	return r.State == Succeeded && r.Err == nil
}
