package spoofcheck

import (
	"context"
	"errors"

	"github.com/synqronlabs/spoofcheck/spf"
)

// IsSPFStrong reports whether the domain's effective SPF configuration
// meaningfully restricts unauthorized senders: the domain itself, or a
// chain it delegates to via redirect= or include:, terminates in a
// strict "all" policy ("-all" or "~all").
//
// Recursion over delegation chains is bounded by the Checker's MaxDepth
// and a visited-domain set; a chain that loops or runs too deep
// evaluates to not strong.
func (c *Checker) IsSPFStrong(ctx context.Context, domain string) bool {
	return c.spfStrong(ctx, domain, 0, map[string]bool{})
}

func (c *Checker) spfStrong(ctx context.Context, domain string, depth int, visited map[string]bool) bool {
	if depth > c.maxDepth {
		c.reporter.Error("SPF delegation chain exceeds %d lookups at %s, giving up", c.maxDepth, domain)
		c.logger.Warn("spf recursion limit exceeded", "domain", domain, "depth", depth)
		return false
	}
	if visited[domain] {
		c.reporter.Error("SPF delegation loop detected at %s", domain)
		c.logger.Warn("spf delegation loop", "domain", domain)
		return false
	}
	visited[domain] = true

	record, txt, authentic, err := spf.Lookup(ctx, c.resolver, domain)
	if err != nil {
		switch {
		case errors.Is(err, spf.ErrNoRecord):
			c.reporter.Good("%s has no SPF record!", domain)
		case errors.Is(err, spf.ErrMultipleRecords):
			c.reporter.Good("%s publishes multiple SPF records, the policy is unusable", domain)
		case errors.Is(err, spf.ErrRecordSyntax):
			c.reporter.Good("%s has a malformed SPF record: %v", domain, err)
		default:
			c.reporter.Error("SPF lookup for %s failed: %v", domain, err)
			c.logger.Warn("spf lookup failed", "domain", domain, "err", err)
		}
		return false
	}

	c.reporter.Info("Found SPF record:")
	c.reporter.Info("%s", txt)
	if authentic {
		c.reporter.Indifferent("SPF record for %s is DNSSEC-authenticated", domain)
	}

	if c.spfAllStrong(record) {
		return true
	}

	// The record's own all-qualifier is weak; a delegated chain can
	// still compensate. A redirect replaces the policy entirely, an
	// include only needs one strong target.
	if record.Redirect != "" {
		c.reporter.Info("Processing an SPF redirect domain: %s", record.Redirect)
		if c.spfStrong(ctx, record.Redirect, depth+1, visited) {
			return true
		}
	}

	for _, include := range record.IncludeDomains() {
		c.reporter.Info("Processing an SPF include domain: %s", include)
		if c.spfStrong(ctx, include, depth+1, visited) {
			return true
		}
	}

	return false
}

// spfAllStrong classifies the qualifier on the record's "all"
// mechanism. Hardfail and softfail are strict terminal policies and
// sufficient on their own.
func (c *Checker) spfAllStrong(record *spf.Record) bool {
	switch q := record.AllQualifier(); q {
	case spf.QualifierHardfail, spf.QualifierSoftfail:
		c.reporter.Indifferent("SPF record contains an All item: %sall", q)
		return true
	case spf.QualifierAbsent:
		c.reporter.Good("SPF record has no All string")
		return false
	default:
		c.reporter.Good("SPF record All item is too weak: %sall", q)
		return false
	}
}
