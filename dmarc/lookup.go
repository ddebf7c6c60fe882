package dmarc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/synqronlabs/spoofcheck/dns"
)

// DMARC lookup errors.
var (
	// ErrNoRecord indicates no DMARC DNS record was found.
	ErrNoRecord = errors.New("dmarc: no DMARC DNS record found")

	// ErrMultipleRecords indicates multiple DMARC DNS records were found.
	// Per RFC 7489, this must be treated as if the domain does not
	// implement DMARC.
	ErrMultipleRecords = errors.New("dmarc: multiple DMARC DNS records found")

	// ErrSyntax indicates the DMARC record has invalid syntax.
	ErrSyntax = errors.New("dmarc: malformed DMARC DNS record")

	// ErrDNS indicates a DNS lookup error occurred.
	ErrDNS = errors.New("dmarc: DNS lookup error")
)

// Lookup fetches and parses the DMARC record published at
// "_dmarc.<domain>".
//
// Unlike a full DMARC verifier, Lookup does not fall back to the
// organizational domain; callers decide whether and how to consult the
// organizational record (see OrganizationalDomain). ErrNoRecord means the
// exact domain publishes no DMARC policy.
//
// Returns the parsed record, the raw TXT text, and whether the DNS
// response was DNSSEC-validated.
func Lookup(ctx context.Context, resolver dns.Resolver, domain string) (record *Record, txt string, authentic bool, err error) {
	name := "_dmarc." + domain
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
		r, isDMARC, parseErr := ParseRecord(s)
		if !isDMARC {
			// Not a DMARC record, skip
			continue
		}
		if parseErr != nil {
			return nil, s, result.Authentic, fmt.Errorf("%w: %v", ErrSyntax, parseErr)
		}
		if record != nil {
			// Multiple DMARC records, per RFC 7489 Section 6.6.3
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
