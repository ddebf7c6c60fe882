// Command spoofcheck reports whether a domain can be spoofed as an
// email sender, based on the strength of its published SPF and DMARC
// policies.
//
// Usage:
//
//	spoofcheck [flags] DOMAIN
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/synqronlabs/spoofcheck"
	"github.com/synqronlabs/spoofcheck/dns"
)

// nameserverList collects repeated -nameserver flags.
type nameserverList []string

func (l *nameserverList) String() string {
	return strings.Join(*l, ",")
}

func (l *nameserverList) Set(v string) error {
	if !strings.Contains(v, ":") {
		v += ":53"
	}
	*l = append(*l, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var nameservers nameserverList
	flag.Var(&nameservers, "nameserver", "DNS server to query, host[:port] (repeatable; default: system resolvers)")
	timeout := flag.Duration("timeout", 5*time.Second, "timeout per DNS query")
	dnssec := flag.Bool("dnssec", false, "request DNSSEC validation from the upstream resolver")
	jsonOut := flag.Bool("json", false, "print the verdict as JSON")
	quiet := flag.Bool("quiet", false, "suppress narration, print only the verdict")
	verbose := flag.Bool("verbose", false, "log lookup diagnostics to stderr")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	console := spoofcheck.NewConsoleReporter(os.Stdout)
	if *noColor {
		console = spoofcheck.NewPlainReporter(os.Stdout)
	}

	if flag.NArg() != 1 {
		console.Error("Usage: %s [flags] DOMAIN", os.Args[0])
		flag.PrintDefaults()
		return 2
	}
	domain := flag.Arg(0)

	var reporter spoofcheck.Reporter = console
	if *quiet {
		reporter = spoofcheck.NopReporter{}
	}

	logLevel := slog.LevelError
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	checker := spoofcheck.NewChecker(&spoofcheck.CheckerConfig{
		Resolver: dns.NewResolver(dns.ResolverConfig{
			Nameservers: nameservers,
			DNSSEC:      *dnssec,
			Timeout:     *timeout,
		}),
		Reporter: reporter,
		Logger:   logger,
	})

	verdict := checker.Evaluate(context.Background(), domain)

	if verdict.Spoofable {
		console.Good("Spoofing possible for %s!", domain)
	} else {
		console.Bad("Spoofing not possible for %s", domain)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(verdict); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	return 0
}
