package dmarc

import (
	"context"
	"errors"
	"testing"

	"github.com/synqronlabs/spoofcheck/dns"
)

func TestLookup(t *testing.T) {
	resolver := dns.MockResolver{
		TXT: map[string][]string{
			"_dmarc.example.com.":   {"v=DMARC1; p=reject; rua=mailto:dmarc@example.com"},
			"_dmarc.other.example.": {"verification=token", "v=DMARC1; p=none; sp=quarantine"},
			"_dmarc.multi.example.": {"v=DMARC1; p=none", "v=DMARC1; p=reject"},
			"_dmarc.bad.example.":   {"v=DMARC1; p=bogus"},
		},
		Fail: []string{"_dmarc.down.example."},
	}

	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		record, txt, _, err := Lookup(ctx, resolver, "example.com")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if record.Policy != PolicyReject {
			t.Errorf("policy = %q, want reject", record.Policy)
		}
		if txt != "v=DMARC1; p=reject; rua=mailto:dmarc@example.com" {
			t.Errorf("unexpected txt %q", txt)
		}
	})

	t.Run("skips non-dmarc txt", func(t *testing.T) {
		record, _, _, err := Lookup(ctx, resolver, "other.example")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if record.Policy != PolicyNone || record.SubdomainPolicy != PolicyQuarantine {
			t.Errorf("unexpected record %+v", record)
		}
	})

	t.Run("absent", func(t *testing.T) {
		_, _, _, err := Lookup(ctx, resolver, "missing.example")
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
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("got %v, want ErrSyntax", err)
		}
	})

	t.Run("dns failure", func(t *testing.T) {
		_, _, _, err := Lookup(ctx, resolver, "down.example")
		if !errors.Is(err, ErrDNS) {
			t.Errorf("got %v, want ErrDNS", err)
		}
	})
}
