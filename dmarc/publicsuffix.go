package dmarc

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// OrganizationalDomain returns the organizational domain for the given
// domain: the domain directly under the public suffix. For example:
//
//   - example.com -> example.com
//   - sub.example.com -> example.com
//   - sub.example.co.uk -> example.co.uk
//
// This uses the ICANN section of the Public Suffix List, as required by
// RFC 7489. If no registrable parent can be determined (e.g.
// "localhost", or a bare public suffix), the input is returned as-is;
// callers detect "no fallback available" by comparing the result against
// the queried domain.
func OrganizationalDomain(domain string) string {
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")

	if domain == "" {
		return ""
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return domain
	}

	return etld1
}

// IsOrganizationalDomain returns true if the domain is an organizational
// domain, i.e. directly below the public suffix. Such a domain has no
// parent to fall back to for DMARC policy.
func IsOrganizationalDomain(domain string) bool {
	d := strings.TrimSuffix(strings.ToLower(domain), ".")
	return OrganizationalDomain(d) == d
}

// PublicSuffix returns the public suffix of the domain, e.g. "co.uk"
// for "example.co.uk".
func PublicSuffix(domain string) string {
	d := strings.TrimSuffix(strings.ToLower(domain), ".")
	suffix, _ := publicsuffix.PublicSuffix(d)
	return suffix
}
