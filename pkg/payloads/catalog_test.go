package payloads

import (
	"strings"
	"testing"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if err := c.Validate(); err != nil {
		t.Fatalf("default catalog must validate: %v", err)
	}
	if c.Version() == "" {
		t.Error("expected a version string")
	}

	t.Run("every family populated", func(t *testing.T) {
		for _, sub := range SubCategories() {
			if len(c.Injection(sub)) == 0 {
				t.Errorf("family %s has no payloads", sub)
			}
		}
	})

	t.Run("classic probes present", func(t *testing.T) {
		wantSQLi := `' OR '1'='1`
		found := false
		for _, p := range c.Injection(SubSQLi) {
			if p.Value == wantSQLi {
				found = true
			}
		}
		if !found {
			t.Errorf("expected sqli payload %q", wantSQLi)
		}

		wantXSS := `<script>alert(1)</script>`
		found = false
		for _, p := range c.Injection(SubXSS) {
			if p.Value == wantXSS {
				found = true
			}
		}
		if !found {
			t.Errorf("expected xss payload %q", wantXSS)
		}
	})

	t.Run("signatures", func(t *testing.T) {
		if len(c.SQLErrorSignatures()) == 0 {
			t.Error("expected SQL error signatures")
		}
		if len(c.SystemFileSignatures()) == 0 {
			t.Error("expected system file signatures")
		}

		hasPasswd := false
		for _, sig := range c.SystemFileSignatures() {
			if sig == "root:x:0:0" {
				hasPasswd = true
			}
		}
		if !hasPasswd {
			t.Error("expected the /etc/passwd signature")
		}
	})

	t.Run("attacker origins", func(t *testing.T) {
		if len(c.AttackerOrigins()) == 0 {
			t.Error("expected attacker origins")
		}
	})
}

func TestCountFor(t *testing.T) {
	c := Default()

	total := 0
	for _, sub := range SubCategories() {
		total += len(c.Injection(sub))
	}
	if got := c.CountFor(finding.CategoryInjection); got != total {
		t.Errorf("expected %d injection payloads, got %d", total, got)
	}
	if got := c.CountFor(finding.CategoryCORS); got != 0 {
		t.Errorf("expected 0 for non-injection category, got %d", got)
	}
}

func TestMergeYAML(t *testing.T) {
	base := Default()

	t.Run("appends after built-ins", func(t *testing.T) {
		overlay := `
version: "2024.2"
injection:
  sqli:
    - value: "' OR 2=2--"
      tag: sql-error-marker
signatures:
  sql_errors: ["DB2 SQL error"]
`
		merged, err := base.MergeYAML(strings.NewReader(overlay))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if merged.Version() != "2024.2" {
			t.Errorf("expected overlay version, got %s", merged.Version())
		}

		sqli := merged.Injection(SubSQLi)
		if len(sqli) != len(base.Injection(SubSQLi))+1 {
			t.Fatalf("expected one appended payload, got %d total", len(sqli))
		}
		if sqli[0].Value != base.Injection(SubSQLi)[0].Value {
			t.Error("built-in payloads must keep their order")
		}
		if sqli[len(sqli)-1].Value != "' OR 2=2--" {
			t.Error("overlay payload must come last")
		}

		hasDB2 := false
		for _, sig := range merged.SQLErrorSignatures() {
			if sig == "DB2 SQL error" {
				hasDB2 = true
			}
		}
		if !hasDB2 {
			t.Error("expected merged SQL signature")
		}
	})

	t.Run("receiver unchanged", func(t *testing.T) {
		before := len(base.Injection(SubSQLi))
		_, err := base.MergeYAML(strings.NewReader(`{injection: {sqli: [{value: x, tag: sql-error-marker}]}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(base.Injection(SubSQLi)) != before {
			t.Error("merge must not mutate the receiver")
		}
	})

	t.Run("unknown tag rejected", func(t *testing.T) {
		_, err := base.MergeYAML(strings.NewReader(`{injection: {sqli: [{value: x, tag: bogus}]}}`))
		if err == nil {
			t.Fatal("expected validation error for unknown tag")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := base.MergeYAML(strings.NewReader("injection: ["))
		if err == nil {
			t.Fatal("expected decode error")
		}
	})
}
