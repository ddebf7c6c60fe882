package spoofcheck

import (
	"context"
	"testing"
)

func TestIsDMARCStrongOwnPolicy(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   bool
	}{
		{"reject", "v=DMARC1; p=reject", true},
		{"quarantine", "v=DMARC1; p=quarantine", true},
		{"none", "v=DMARC1; p=none", false},
		{"none with reporting", "v=DMARC1; p=none; rua=mailto:dmarc@example.com", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checker, _ := newTestChecker(map[string][]string{
				"_dmarc.example.com.": {tc.record},
			})
			if got := checker.IsDMARCStrong(context.Background(), "example.com"); got != tc.want {
				t.Errorf("IsDMARCStrong(%q) = %v, want %v", tc.record, got, tc.want)
			}
		})
	}
}

func TestIsDMARCStrongNoRecordAtOrgDomain(t *testing.T) {
	// example.com is itself an organizational domain: no fallback.
	checker, reporter := newTestChecker(nil)

	if checker.IsDMARCStrong(context.Background(), "example.com") {
		t.Error("missing record with no parent must be weak")
	}
	if !reporter.has("good", "example.com has no DMARC record!") {
		t.Error("missing vulnerability narration")
	}
}

func TestIsDMARCStrongOrgSubdomainPolicy(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   bool
	}{
		// Explicit sp= always wins over the organizational p=.
		{"sp reject over p none", "v=DMARC1; p=none; sp=reject", true},
		{"sp quarantine over p none", "v=DMARC1; p=none; sp=quarantine", true},
		{"sp none over p reject", "v=DMARC1; p=reject; sp=none", false},
		// Without sp=, the organizational p= applies.
		{"fallback to p reject", "v=DMARC1; p=reject", true},
		{"fallback to p none", "v=DMARC1; p=none", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checker, _ := newTestChecker(map[string][]string{
				"_dmarc.example.com.": {tc.record},
			})
			if got := checker.IsDMARCStrong(context.Background(), "mail.example.com"); got != tc.want {
				t.Errorf("subdomain fallback to %q = %v, want %v", tc.record, got, tc.want)
			}
		})
	}
}

func TestIsDMARCStrongNoOrgRecord(t *testing.T) {
	checker, reporter := newTestChecker(nil)

	if checker.IsDMARCStrong(context.Background(), "mail.example.com") {
		t.Error("missing records at both levels must be weak")
	}
	if !reporter.has("good", "No organizational DMARC record") {
		t.Error("missing organizational narration")
	}
}

func TestIsDMARCStrongOrgLookupFailure(t *testing.T) {
	// The organizational chain fails closed, never propagates.
	checker, reporter := newTestChecker(nil, "_dmarc.example.com.")

	if checker.IsDMARCStrong(context.Background(), "mail.example.com") {
		t.Error("organizational lookup failure must be weak")
	}
	if !reporter.has("error", "organizational domain") {
		t.Error("missing error narration")
	}
	if !reporter.has("good", "No organizational DMARC record") {
		t.Error("failure must be treated as no organizational record")
	}
}

func TestIsDMARCStrongOwnRecordSkipsOrg(t *testing.T) {
	// A present own record decides the verdict; sp= on the
	// organizational record must not be consulted.
	checker, reporter := newTestChecker(map[string][]string{
		"_dmarc.mail.example.com.": {"v=DMARC1; p=none"},
		"_dmarc.example.com.":      {"v=DMARC1; p=none; sp=reject"},
	})

	if checker.IsDMARCStrong(context.Background(), "mail.example.com") {
		t.Error("own p=none must be weak regardless of organizational sp=")
	}
	if reporter.has("info", "Looking for organizational record") || reporter.has("info", "Organizational record") {
		t.Error("organizational record must not be consulted")
	}
}

func TestIsDMARCStrongExtras(t *testing.T) {
	checker, reporter := newTestChecker(map[string][]string{
		"_dmarc.example.com.": {"v=DMARC1; p=reject; rua=mailto:agg@example.com; ruf=mailto:for@example.com; pct=40"},
	})

	if !checker.IsDMARCStrong(context.Background(), "example.com") {
		t.Error("p=reject must be strong regardless of pct")
	}
	if !reporter.has("indifferent", "pct is set to 40%") {
		t.Error("missing pct narration")
	}
	if !reporter.has("indifferent", "Aggregate reports will be sent: mailto:agg@example.com") {
		t.Error("missing rua narration")
	}
	if !reporter.has("indifferent", "Forensics reports will be sent: mailto:for@example.com") {
		t.Error("missing ruf narration")
	}
}

func TestIsDMARCStrongMultipleRecords(t *testing.T) {
	checker, reporter := newTestChecker(map[string][]string{
		"_dmarc.example.com.": {"v=DMARC1; p=reject", "v=DMARC1; p=none"},
	})

	if checker.IsDMARCStrong(context.Background(), "example.com") {
		t.Error("multiple DMARC records must fail closed to weak")
	}
	if !reporter.has("good", "multiple DMARC records") {
		t.Error("missing multiple-records narration")
	}
}

func TestIsDMARCStrongMalformedRecord(t *testing.T) {
	checker, reporter := newTestChecker(map[string][]string{
		"_dmarc.example.com.": {"v=DMARC1; p=bogus"},
	})

	if checker.IsDMARCStrong(context.Background(), "example.com") {
		t.Error("malformed DMARC record must fail closed to weak")
	}
	if !reporter.has("good", "malformed DMARC record") {
		t.Error("missing malformed-record narration")
	}
}
