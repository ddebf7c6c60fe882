// Spoofcheck determines whether a domain can be spoofed as an email
// sender by evaluating the combined strength of its published SPF and
// DMARC policies.
//
// # Checker
//
// Create a Checker and evaluate a domain:
//
//	checker := spoofcheck.NewChecker(&spoofcheck.CheckerConfig{
//	    Resolver: dns.NewResolver(dns.ResolverConfig{}),
//	    Reporter: spoofcheck.NewConsoleReporter(os.Stdout),
//	})
//
//	verdict := checker.Evaluate(ctx, "example.com")
//	if verdict.Spoofable {
//	    // The domain's SPF+DMARC posture does not reliably prevent
//	    // forged sender mail from being accepted.
//	}
//
// A domain is considered spoofable unless both hold:
//
//   - its effective SPF policy is strong: the record (or a record it
//     delegates to via redirect= or include:) terminates in "-all" or
//     "~all", and
//   - its effective DMARC policy is strong: the domain's own record, or
//     its organizational domain's record consulted as a fallback,
//     requests quarantine or reject for failing mail.
//
// Nearly all mail transport agents rely on DMARC for direction on what
// to do when a message fails SPF or DKIM. Without a strict policy the
// receiver fails open and delivers, which is why a weak posture on
// either record leaves the domain spoofable.
//
// # Narration
//
// Evaluation emits a human-readable trace of every decision through the
// Reporter interface. Narration is observational only; it never changes
// a verdict. The Good channel carries findings that favor an attacker,
// Bad carries findings that block one. NewConsoleReporter writes the
// classic colored [+]/[-] pentest output; LogReporter adapts a
// *slog.Logger for embedding the checker in services.
//
// # Concurrency
//
// Evaluations share no state. A single Checker is safe for concurrent
// use across domains as long as its Resolver is.
package spoofcheck
