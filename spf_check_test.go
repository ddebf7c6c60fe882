package spoofcheck

import (
	"context"
	"fmt"
	"testing"
)

func TestIsSPFStrongQualifiers(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   bool
	}{
		{"hardfail", "v=spf1 mx -all", true},
		{"softfail", "v=spf1 mx ~all", true},
		{"pass", "v=spf1 mx +all", false},
		{"default pass", "v=spf1 mx all", false},
		{"neutral", "v=spf1 mx ?all", false},
		{"no all", "v=spf1 mx", false},
		{"bare", "v=spf1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checker, _ := newTestChecker(map[string][]string{
				"example.com.": {tc.record},
			})
			if got := checker.IsSPFStrong(context.Background(), "example.com"); got != tc.want {
				t.Errorf("IsSPFStrong(%q) = %v, want %v", tc.record, got, tc.want)
			}
		})
	}
}

func TestIsSPFStrongNoRecord(t *testing.T) {
	checker, reporter := newTestChecker(nil)

	if checker.IsSPFStrong(context.Background(), "example.com") {
		t.Error("missing record must be weak")
	}
	if !reporter.has("good", "example.com has no SPF record!") {
		t.Error("missing vulnerability narration")
	}
}

func TestIsSPFStrongRedirectTransitive(t *testing.T) {
	// A's own qualifier is weak; a redirect replaces the policy
	// entirely, so B's strength carries over.
	checker, _ := newTestChecker(map[string][]string{
		"a.example.": {"v=spf1 ?all redirect=b.example"},
		"b.example.": {"v=spf1 -all"},
	})

	if !checker.IsSPFStrong(context.Background(), "a.example") {
		t.Error("redirect to a strong domain must be strong")
	}
}

func TestIsSPFStrongRedirectToMissing(t *testing.T) {
	checker, _ := newTestChecker(map[string][]string{
		"a.example.": {"v=spf1 redirect=gone.example"},
	})

	if checker.IsSPFStrong(context.Background(), "a.example") {
		t.Error("redirect to a domain without SPF must be weak")
	}
}

func TestIsSPFStrongIncludeExistential(t *testing.T) {
	data := map[string][]string{
		"a.example.": {"v=spf1 include:b.example include:c.example ?all"},
		"b.example.": {"v=spf1 +all"},
		"c.example.": {"v=spf1 -all"},
	}

	checker, _ := newTestChecker(data)
	if !checker.IsSPFStrong(context.Background(), "a.example") {
		t.Error("one strong include must make the domain strong")
	}

	// With the strong include gone, nothing compensates.
	data["c.example."] = []string{"v=spf1 +all"}
	checker, _ = newTestChecker(data)
	if checker.IsSPFStrong(context.Background(), "a.example") {
		t.Error("no strong include must leave the domain weak")
	}
}

func TestIsSPFStrongOwnAllWins(t *testing.T) {
	// A strict all-qualifier is sufficient on its own; delegation is
	// not consulted.
	checker, reporter := newTestChecker(map[string][]string{
		"a.example.": {"v=spf1 include:weak.example -all"},
		// weak.example deliberately unresolvable; it must never be fetched
	}, "weak.example.")

	if !checker.IsSPFStrong(context.Background(), "a.example") {
		t.Error("strict all must be strong without consulting includes")
	}
	if reporter.has("info", "Processing an SPF include domain") {
		t.Error("includes must not be evaluated when the record is strict")
	}
}

func TestIsSPFStrongLoop(t *testing.T) {
	checker, reporter := newTestChecker(map[string][]string{
		"a.example.": {"v=spf1 include:b.example ?all"},
		"b.example.": {"v=spf1 include:a.example ?all"},
	})

	if checker.IsSPFStrong(context.Background(), "a.example") {
		t.Error("an include loop must evaluate to weak")
	}
	if !reporter.has("error", "loop") {
		t.Error("missing loop narration")
	}
}

func TestIsSPFStrongSelfInclude(t *testing.T) {
	checker, _ := newTestChecker(map[string][]string{
		"a.example.": {"v=spf1 include:a.example ?all"},
	})

	if checker.IsSPFStrong(context.Background(), "a.example") {
		t.Error("self-include must evaluate to weak")
	}
}

func TestIsSPFStrongDepthLimit(t *testing.T) {
	// A redirect chain longer than the depth limit, ending in a strong
	// record that is never reached.
	txt := map[string][]string{}
	const chain = 15
	for i := 0; i < chain; i++ {
		txt[fmt.Sprintf("c%d.example.", i)] = []string{fmt.Sprintf("v=spf1 redirect=c%d.example", i+1)}
	}
	txt[fmt.Sprintf("c%d.example.", chain)] = []string{"v=spf1 -all"}

	checker, reporter := newTestChecker(txt)
	if checker.IsSPFStrong(context.Background(), "c0.example") {
		t.Error("chain beyond the depth limit must evaluate to weak")
	}
	if !reporter.has("error", "exceeds") {
		t.Error("missing depth-limit narration")
	}

	// A chain within the limit still resolves.
	short, _ := newTestChecker(map[string][]string{
		"s0.example.": {"v=spf1 redirect=s1.example"},
		"s1.example.": {"v=spf1 redirect=s2.example"},
		"s2.example.": {"v=spf1 -all"},
	})
	if !short.IsSPFStrong(context.Background(), "s0.example") {
		t.Error("short redirect chain must resolve strong")
	}
}

func TestIsSPFStrongMultipleRecords(t *testing.T) {
	checker, reporter := newTestChecker(map[string][]string{
		"example.com.": {"v=spf1 -all", "v=spf1 ~all"},
	})

	if checker.IsSPFStrong(context.Background(), "example.com") {
		t.Error("multiple SPF records must fail closed to weak")
	}
	if !reporter.has("good", "multiple SPF records") {
		t.Error("missing multiple-records narration")
	}
}

func TestIsSPFStrongMalformedRecord(t *testing.T) {
	checker, reporter := newTestChecker(map[string][]string{
		"example.com.": {"v=spf1 ip4:999.1.1.1 -all"},
	})

	if checker.IsSPFStrong(context.Background(), "example.com") {
		t.Error("malformed SPF record must fail closed to weak")
	}
	if !reporter.has("good", "malformed SPF record") {
		t.Error("missing malformed-record narration")
	}
}
