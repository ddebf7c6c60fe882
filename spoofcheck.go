package spoofcheck

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/synqronlabs/spoofcheck/dns"
)

// DefaultMaxDepth bounds SPF redirect/include delegation chains. It
// matches RFC 7208's limit on DNS-querying mechanisms; a legitimate
// policy never needs more, and a malicious or misconfigured chain must
// not recurse unbounded.
const DefaultMaxDepth = 10

// CheckerConfig contains configuration for a Checker. The zero value of
// every field gets a usable default.
type CheckerConfig struct {
	// Resolver performs the DNS lookups. Defaults to a DNSResolver with
	// system nameservers.
	Resolver dns.Resolver

	// Reporter receives evaluation narration. Defaults to NopReporter.
	Reporter Reporter

	// Logger receives diagnostics for unexpected lookup failures, which
	// are swallowed (fail closed) rather than propagated. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// MaxDepth bounds SPF delegation recursion. Defaults to
	// DefaultMaxDepth.
	MaxDepth int
}

// Checker evaluates the spoofability of domains. A single Checker is
// safe for concurrent use if its Resolver is; evaluations share no
// state.
type Checker struct {
	resolver dns.Resolver
	reporter Reporter
	logger   *slog.Logger
	maxDepth int
}

// NewChecker creates a Checker. config may be nil for all defaults.
func NewChecker(config *CheckerConfig) *Checker {
	if config == nil {
		config = &CheckerConfig{}
	}

	c := &Checker{
		resolver: config.Resolver,
		reporter: config.Reporter,
		logger:   config.Logger,
		maxDepth: config.MaxDepth,
	}
	if c.resolver == nil {
		c.resolver = dns.NewResolver(dns.ResolverConfig{})
	}
	if c.reporter == nil {
		c.reporter = NopReporter{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.maxDepth == 0 {
		c.maxDepth = DefaultMaxDepth
	}
	return c
}

// Verdict is the result of evaluating one domain.
type Verdict struct {
	// ID is a ULID identifying this evaluation run, for correlating
	// verdicts with logs across batch runs.
	ID string `json:"id"`

	// Domain is the domain that was evaluated.
	Domain string `json:"domain"`

	// Spoofable is the combined verdict: true unless both the SPF and
	// DMARC postures are strong.
	Spoofable bool `json:"spoofable"`

	// SPFStrong indicates the effective SPF policy meaningfully
	// restricts unauthorized senders.
	SPFStrong bool `json:"spf_strong"`

	// DMARCStrong indicates the effective DMARC policy requests
	// quarantine or reject for failing mail.
	DMARCStrong bool `json:"dmarc_strong"`

	// CheckedAt is when the evaluation ran, in UTC.
	CheckedAt time.Time `json:"checked_at"`
}

// Evaluate computes the spoofability verdict for a domain.
//
// Both record types are always evaluated, even when the first already
// decides the verdict, so diagnostics for both are always narrated.
// Evaluate never fails: lookup and resolution errors are narrated and
// fail closed toward "spoofable".
func (c *Checker) Evaluate(ctx context.Context, domain string) Verdict {
	spfStrong := c.IsSPFStrong(ctx, domain)
	dmarcStrong := c.IsDMARCStrong(ctx, domain)

	return Verdict{
		ID:          ulid.Make().String(),
		Domain:      domain,
		Spoofable:   !(spfStrong && dmarcStrong),
		SPFStrong:   spfStrong,
		DMARCStrong: dmarcStrong,
		CheckedAt:   time.Now().UTC(),
	}
}
