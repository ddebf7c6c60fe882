package spf

import (
	"fmt"
	"net"
	"strings"
)

// Qualifier is the disposition attached to a directive, most importantly
// the terminal "all" mechanism.
type Qualifier string

const (
	// QualifierAbsent means the record has no "all" mechanism at all.
	// Only returned by Record.AllQualifier, never set on a Directive.
	QualifierAbsent Qualifier = ""

	// QualifierPass ("+") authorizes matching senders. On "all" it
	// authorizes everyone, which defeats the policy.
	QualifierPass Qualifier = "+"

	// QualifierNeutral ("?") makes no statement about matching senders.
	QualifierNeutral Qualifier = "?"

	// QualifierSoftfail ("~") marks matching senders as probably
	// unauthorized.
	QualifierSoftfail Qualifier = "~"

	// QualifierHardfail ("-") marks matching senders as unauthorized.
	QualifierHardfail Qualifier = "-"
)

// Record is a parsed SPF DNS TXT record.
//
// An example record for example.com:
//
//	v=spf1 +mx a:colo.example.com/28 include:_spf.example.net -all
type Record struct {
	// RawText is the TXT record text this record was parsed from.
	RawText string

	// Version must be "spf1".
	Version string

	// Directives in record order. A verifier evaluates them in order
	// until one matches; the strength evaluator inspects them in place.
	Directives []Directive

	// Redirect is the domain named by a "redirect=" modifier, or empty.
	// A redirect replaces the record's policy entirely when no directive
	// matches.
	Redirect string

	// Explanation is the domain named by an "exp=" modifier, or empty.
	Explanation string

	// Other holds modifiers other than redirect and exp.
	Other []Modifier
}

// Directive is a mechanism with an optional qualifier and parameters.
type Directive struct {
	// Qualifier sets the result if this directive matches. An empty
	// qualifier is equivalent to QualifierPass per RFC 7208.
	Qualifier Qualifier

	// Mechanism is one of: "all", "include", "a", "mx", "ptr", "ip4",
	// "ip6", "exists".
	Mechanism string

	// DomainSpec is set for include, a, mx, ptr, and exists mechanisms.
	// Lower-cased by the parser.
	DomainSpec string

	// IP is the parsed address for ip4 and ip6 mechanisms.
	IP net.IP

	// IP4CIDRLen is the IPv4 CIDR prefix length, nil for the default.
	IP4CIDRLen *int

	// IP6CIDRLen is the IPv6 CIDR prefix length, nil for the default.
	IP6CIDRLen *int
}

// Modifier is a name=value modifier that is not redirect or exp.
type Modifier struct {
	Key   string // Key is case-insensitive.
	Value string
}

// AllQualifier returns the qualifier on the record's "all" mechanism,
// QualifierPass if the mechanism carries no explicit qualifier, or
// QualifierAbsent if the record has no "all" mechanism.
func (r *Record) AllQualifier() Qualifier {
	for _, d := range r.Directives {
		if d.Mechanism != "all" {
			continue
		}
		if d.Qualifier == "" {
			return QualifierPass
		}
		return d.Qualifier
	}
	return QualifierAbsent
}

// IncludeDomains returns the targets of the record's include mechanisms,
// in record order.
func (r *Record) IncludeDomains() []string {
	var domains []string
	for _, d := range r.Directives {
		if d.Mechanism == "include" {
			domains = append(domains, d.DomainSpec)
		}
	}
	return domains
}

// String returns the record as a DNS TXT record string.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString("v=")
	b.WriteString(r.Version)

	for _, d := range r.Directives {
		b.WriteByte(' ')
		b.WriteString(d.String())
	}

	if r.Redirect != "" {
		b.WriteString(" redirect=")
		b.WriteString(r.Redirect)
	}

	if r.Explanation != "" {
		b.WriteString(" exp=")
		b.WriteString(r.Explanation)
	}

	for _, m := range r.Other {
		b.WriteByte(' ')
		b.WriteString(m.Key)
		b.WriteByte('=')
		b.WriteString(m.Value)
	}

	return b.String()
}

// String returns the directive in record form.
func (d Directive) String() string {
	var b strings.Builder
	b.WriteString(string(d.Qualifier))
	b.WriteString(d.Mechanism)

	if d.DomainSpec != "" {
		b.WriteByte(':')
		b.WriteString(d.DomainSpec)
	} else if d.IP != nil {
		b.WriteByte(':')
		b.WriteString(d.IP.String())
	}

	if d.IP4CIDRLen != nil {
		fmt.Fprintf(&b, "/%d", *d.IP4CIDRLen)
	}
	if d.IP6CIDRLen != nil {
		if d.Mechanism != "ip6" {
			b.WriteByte('/')
		}
		fmt.Fprintf(&b, "/%d", *d.IP6CIDRLen)
	}

	return b.String()
}
