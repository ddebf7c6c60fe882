package spoofcheck

import (
	"context"
	"errors"
	"strings"

	"github.com/synqronlabs/spoofcheck/dmarc"
)

// IsDMARCStrong reports whether the domain's effective DMARC policy
// instructs receivers to quarantine or reject failing mail.
//
// When the domain publishes no record of its own, the organizational
// domain's record is consulted as a fallback: an explicit sp= subdomain
// policy wins, otherwise the organizational p= applies. Errors on the
// organizational chain are logged and fail closed to not strong; this
// method never fails.
func (c *Checker) IsDMARCStrong(ctx context.Context, domain string) bool {
	record, txt, authentic, err := dmarc.Lookup(ctx, c.resolver, domain)
	if err == nil {
		c.reporter.Info("Found DMARC record:")
		c.reporter.Info("%s", txt)
		if authentic {
			c.reporter.Indifferent("DMARC record for %s is DNSSEC-authenticated", domain)
		}

		strong := c.dmarcPolicyStrong(record)
		c.dmarcExtras(record)
		return strong
	}

	switch {
	case errors.Is(err, dmarc.ErrNoRecord):
		// Organizational fallback below

	case errors.Is(err, dmarc.ErrMultipleRecords):
		c.reporter.Good("%s publishes multiple DMARC records, the policy is unusable", domain)
		return false

	case errors.Is(err, dmarc.ErrSyntax):
		c.reporter.Good("%s has a malformed DMARC record: %v", domain, err)
		return false

	default:
		c.reporter.Error("DMARC lookup for %s failed: %v", domain, err)
		c.logger.Warn("dmarc lookup failed", "domain", domain, "err", err)
		return false
	}

	org := dmarc.OrganizationalDomain(domain)
	if org == "" || org == strings.TrimSuffix(strings.ToLower(domain), ".") {
		// The queried domain is itself an organizational domain (or has
		// no registrable parent), so there is nothing to fall back to.
		c.reporter.Good("%s has no DMARC record!", domain)
		return false
	}

	c.reporter.Info("No DMARC record found. Looking for organizational record...")
	return c.dmarcOrgStrong(ctx, domain, org)
}

// dmarcOrgStrong evaluates the organizational domain's record as a
// fallback for a subdomain, not as the queried domain's own record:
// an explicit sp= always wins over the organizational p=.
func (c *Checker) dmarcOrgStrong(ctx context.Context, domain, org string) bool {
	record, txt, _, err := dmarc.Lookup(ctx, c.resolver, org)
	if err != nil {
		if !errors.Is(err, dmarc.ErrNoRecord) {
			c.reporter.Error("DMARC lookup for organizational domain %s failed: %v", org, err)
			c.logger.Warn("dmarc org lookup failed", "domain", domain, "org", org, "err", err)
		}
		c.reporter.Good("No organizational DMARC record")
		return false
	}

	c.reporter.Info("Found DMARC Organizational record:")
	c.reporter.Info("%s", txt)

	if sp := record.SubdomainPolicy; sp != dmarc.PolicyEmpty {
		switch sp {
		case dmarc.PolicyQuarantine, dmarc.PolicyReject:
			c.reporter.Bad("Organizational subdomain policy explicitly set to %s", sp)
			return true
		default:
			c.reporter.Good("Organizational subdomain policy set to %s", sp)
			return false
		}
	}

	c.reporter.Info("No explicit organizational subdomain policy. Defaulting to organizational policy...")
	return c.dmarcPolicyStrong(record)
}

// dmarcPolicyStrong classifies a record's own p= policy.
func (c *Checker) dmarcPolicyStrong(record *dmarc.Record) bool {
	switch record.Policy {
	case dmarc.PolicyQuarantine, dmarc.PolicyReject:
		c.reporter.Bad("DMARC policy set to %s", record.Policy)
		return true
	case dmarc.PolicyNone:
		c.reporter.Good("DMARC policy set to %s", record.Policy)
		return false
	default:
		c.reporter.Good("DMARC record has no Policy")
		return false
	}
}

// dmarcExtras narrates reporting configuration. pct below 100 means the
// policy is only partially enforced, a real-world nuance that stays out
// of the boolean verdict.
func (c *Checker) dmarcExtras(record *dmarc.Record) {
	if record.Percentage != 100 {
		c.reporter.Indifferent("DMARC pct is set to %d%% - might be possible", record.Percentage)
	}

	if len(record.AggregateReportAddresses) > 0 {
		addrs := make([]string, len(record.AggregateReportAddresses))
		for i, a := range record.AggregateReportAddresses {
			addrs[i] = a.String()
		}
		c.reporter.Indifferent("Aggregate reports will be sent: %s", strings.Join(addrs, ","))
	}

	if len(record.FailureReportAddresses) > 0 {
		addrs := make([]string, len(record.FailureReportAddresses))
		for i, a := range record.FailureReportAddresses {
			addrs[i] = a.String()
		}
		c.reporter.Indifferent("Forensics reports will be sent: %s", strings.Join(addrs, ","))
	}
}
