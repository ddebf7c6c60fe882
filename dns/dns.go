// Package dns provides the DNS lookup layer for the spoofcheck tool.
//
// The policy evaluators only ever read TXT records, so the Resolver
// interface is deliberately small. Two implementations are provided:
// DNSResolver, built on github.com/miekg/dns with retry and DNSSEC
// support, and StdResolver on the standard library for environments
// where custom nameservers and DNSSEC are not needed. MockResolver
// backs the tests.
package dns

import (
	"context"
	"errors"
)

// DNS lookup errors.
var (
	// ErrDNSNotFound indicates the queried name does not exist (NXDOMAIN)
	// or has no records of the requested type.
	ErrDNSNotFound = errors.New("dns: name or record not found")

	// ErrDNSServFail indicates the upstream resolver returned SERVFAIL.
	ErrDNSServFail = errors.New("dns: server failure")

	// ErrDNSRefused indicates the upstream resolver refused the query.
	ErrDNSRefused = errors.New("dns: query refused")

	// ErrDNSTimeout indicates the query timed out.
	ErrDNSTimeout = errors.New("dns: query timeout")

	// ErrDNSBogus indicates a SERVFAIL that is likely a DNSSEC validation
	// failure, returned only when DNSSEC is enabled.
	ErrDNSBogus = errors.New("dns: dnssec validation failed")
)

// Result holds the records returned by a lookup along with metadata
// about the response.
type Result[T any] struct {
	// Records are the answers, in response order.
	Records []T

	// Authentic indicates the response carried the DNSSEC authenticated
	// data bit. Only meaningful when the resolver was configured with
	// DNSSEC enabled.
	Authentic bool
}

// Resolver performs the DNS lookups the policy evaluators need.
// Implementations must be safe for concurrent use.
type Resolver interface {
	// LookupTXT retrieves the TXT records for name. Multi-string TXT
	// records are joined per RFC 7208 Section 3.3. Returns an error
	// satisfying IsNotFound when the name has no TXT records.
	LookupTXT(ctx context.Context, name string) (Result[string], error)
}

// IsNotFound reports whether err means the name or record does not
// exist, as opposed to a lookup failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDNSNotFound)
}

// IsTemporary reports whether err is a transient lookup failure that
// might succeed on retry.
func IsTemporary(err error) bool {
	return errors.Is(err, ErrDNSServFail) || errors.Is(err, ErrDNSTimeout) || errors.Is(err, ErrDNSRefused)
}
