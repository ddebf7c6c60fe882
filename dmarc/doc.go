// Package dmarc implements DMARC (RFC 7489) record lookup and parsing
// for spoofability checking.
//
// The package fetches the "_dmarc" TXT record for a domain and parses it
// into a Record. It deliberately does not walk to the organizational
// domain on its own: the strength evaluator drives that fallback so it
// can narrate each step and apply the sp= subdomain policy rule itself.
// OrganizationalDomain resolves the registrable parent using the ICANN
// section of the Public Suffix List, as RFC 7489 requires.
//
// Basic usage:
//
//	record, txt, _, err := dmarc.Lookup(ctx, resolver, "mail.example.com")
//	if errors.Is(err, dmarc.ErrNoRecord) {
//	    org := dmarc.OrganizationalDomain("mail.example.com")
//	    // fetch the organizational record and apply sp=/p= as fallback
//	}
//
// References:
//   - RFC 7489: Domain-based Message Authentication, Reporting, and
//     Conformance (DMARC)
package dmarc
