package spf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/synqronlabs/spoofcheck/dns"
)

// SPF lookup errors.
var (
	// ErrNoRecord indicates the domain publishes no SPF record.
	ErrNoRecord = errors.New("spf: no SPF record found")

	// ErrMultipleRecords indicates multiple SPF records at one name.
	// Per RFC 7208 Section 4.5 this is a permanent error; callers should
	// treat the domain as having no usable policy.
	ErrMultipleRecords = errors.New("spf: multiple SPF records found")

	// ErrDNS indicates a DNS lookup error occurred.
	ErrDNS = errors.New("spf: DNS lookup error")
)

// Lookup fetches and parses the SPF record for the given domain.
//
// The domain's TXT records are scanned for records starting with
// "v=spf1". Exactly one must exist; zero yields ErrNoRecord and more
// than one yields ErrMultipleRecords. A record that looks like SPF but
// fails to parse yields an error wrapping ErrRecordSyntax.
//
// Returns the parsed record, the raw TXT text, and whether the DNS
// response was DNSSEC-validated.
func Lookup(ctx context.Context, resolver dns.Resolver, domain string) (record *Record, txt string, authentic bool, err error) {
	name := domain
	if !strings.HasSuffix(name, ".") {
		name += "."
	}

	result, err := resolver.LookupTXT(ctx, name)
	if err != nil {
		if dns.IsNotFound(err) {
			return nil, "", result.Authentic, ErrNoRecord
		}
		return nil, "", result.Authentic, fmt.Errorf("%w: %v", ErrDNS, err)
	}

	for _, s := range result.Records {
		r, isSPF, parseErr := ParseRecord(s)
		if !isSPF {
			continue
		}
		if parseErr != nil {
			return nil, s, result.Authentic, parseErr
		}
		if record != nil {
			return nil, "", result.Authentic, ErrMultipleRecords
		}
		record = r
		txt = s
	}

	if record == nil {
		return nil, "", result.Authentic, ErrNoRecord
	}

	return record, txt, result.Authentic, nil
}
