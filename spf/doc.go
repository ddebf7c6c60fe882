// Package spf implements SPF (RFC 7208) record lookup and parsing for
// spoofability checking.
//
// Unlike a full SPF verifier, this package never evaluates an SPF policy
// against a sending IP. It fetches a domain's published policy and exposes
// the pieces the strength evaluator inspects: the qualifier on the
// terminal "all" mechanism, the redirect modifier target, and the include
// mechanism targets. The parser still accepts the complete RFC 7208 term
// syntax so real-world records round-trip cleanly.
//
// Basic usage:
//
//	record, txt, _, err := spf.Lookup(ctx, resolver, "example.com")
//	if err != nil {
//	    // spf.ErrNoRecord means the domain publishes no SPF policy.
//	}
//	switch record.AllQualifier() {
//	case spf.QualifierHardfail, spf.QualifierSoftfail:
//	    // Policy fails closed for unauthorized senders.
//	}
//
// References:
//   - RFC 7208: Sender Policy Framework (SPF)
package spf
