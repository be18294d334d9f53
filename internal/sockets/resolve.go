package sockets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// ErrNoCandidates is returned when resolution succeeds but yields no IPv4
// address to bind.
var ErrNoCandidates = errors.New("no IPv4 candidates")

// Candidate is one address a passive IPv4 stream socket may bind to.
type Candidate struct {
	Addr netip.AddrPort
}

func (c Candidate) String() string {
	return c.Addr.String()
}

// Resolver produces ordered bind candidates for passive use, in the manner
// of getaddrinfo with AI_PASSIVE, AF_INET and SOCK_STREAM.
type Resolver struct {
	// Lookup resolves host names. Nil means net.DefaultResolver.
	Lookup *net.Resolver
}

// Resolve returns the candidates for host and service. An empty host is the
// IPv4 wildcard address. Service is a port number or a service name known
// to the system.
func (r *Resolver) Resolve(ctx context.Context, host, service string) ([]Candidate, error) {
	lookup := r.Lookup
	if lookup == nil {
		lookup = net.DefaultResolver
	}

	port, err := parsePort(ctx, lookup, service)
	if err != nil {
		return nil, err
	}

	if host == "" {
		return []Candidate{{Addr: netip.AddrPortFrom(netip.IPv4Unspecified(), port)}}, nil
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		ip = ip.Unmap()
		if !ip.Is4() {
			return nil, fmt.Errorf("%s: %w", host, ErrNoCandidates)
		}
		return []Candidate{{Addr: netip.AddrPortFrom(ip, port)}}, nil
	}

	ips, err := lookup.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, ip := range ips {
		ip = ip.Unmap()
		if !ip.Is4() {
			continue
		}
		candidates = append(candidates, Candidate{Addr: netip.AddrPortFrom(ip, port)})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", host, ErrNoCandidates)
	}
	return candidates, nil
}

func parsePort(ctx context.Context, lookup *net.Resolver, service string) (uint16, error) {
	if n, err := strconv.ParseUint(service, 10, 16); err == nil {
		return uint16(n), nil
	}
	port, err := lookup.LookupPort(ctx, "tcp", service)
	if err != nil {
		return 0, err
	}
	return uint16(port), nil
}
