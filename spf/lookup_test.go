package spf

import (
	"context"
	"errors"
	"testing"

	"github.com/synqronlabs/spoofcheck/dns"
)

func TestLookup(t *testing.T) {
	resolver := dns.MockResolver{
		TXT: map[string][]string{
			"example.com.":   {"v=spf1 include:_spf.example.com -all", "google-site-verification=abc123"},
			"nospf.example.": {"some unrelated record"},
			"multi.example.": {"v=spf1 -all", "v=spf1 ~all"},
			"bad.example.":   {"v=spf1 ip4:999.1.1.1 -all"},
		},
		Fail: []string{"down.example."},
	}

	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		record, txt, _, err := Lookup(ctx, resolver, "example.com")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if txt != "v=spf1 include:_spf.example.com -all" {
			t.Errorf("unexpected txt %q", txt)
		}
		if record.AllQualifier() != QualifierHardfail {
			t.Errorf("expected hardfail, got %q", record.AllQualifier())
		}
		if got := record.IncludeDomains(); len(got) != 1 || got[0] != "_spf.example.com" {
			t.Errorf("unexpected includes %v", got)
		}
	})

	t.Run("no txt records", func(t *testing.T) {
		_, _, _, err := Lookup(ctx, resolver, "missing.example")
		if !errors.Is(err, ErrNoRecord) {
			t.Errorf("got %v, want ErrNoRecord", err)
		}
	})

	t.Run("txt but no spf", func(t *testing.T) {
		_, _, _, err := Lookup(ctx, resolver, "nospf.example")
		if !errors.Is(err, ErrNoRecord) {
			t.Errorf("got %v, want ErrNoRecord", err)
		}
	})

	t.Run("multiple records", func(t *testing.T) {
		_, _, _, err := Lookup(ctx, resolver, "multi.example")
		if !errors.Is(err, ErrMultipleRecords) {
			t.Errorf("got %v, want ErrMultipleRecords", err)
		}
	})

	t.Run("malformed record", func(t *testing.T) {
		_, _, _, err := Lookup(ctx, resolver, "bad.example")
		if !errors.Is(err, ErrRecordSyntax) {
			t.Errorf("got %v, want ErrRecordSyntax", err)
		}
	})

	t.Run("dns failure", func(t *testing.T) {
		_, _, _, err := Lookup(ctx, resolver, "down.example")
		if !errors.Is(err, ErrDNS) {
			t.Errorf("got %v, want ErrDNS", err)
		}
	})
}
