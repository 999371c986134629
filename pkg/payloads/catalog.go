// Package payloads provides the versioned payload catalog: per-category
// ordered payload lists and the detection signature tables used to
// classify responses. Keeping payloads and signatures here, out of probe
// logic, lets them be extended and unit-tested independently of request
// plumbing.
package payloads

import (
	"fmt"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
)

// Payload is a single test input: the literal value sent to the target
// plus a tag naming its expected detection signal.
type Payload struct {
	Value string `yaml:"value" json:"value"`
	Tag   string `yaml:"tag" json:"tag"`
}

// Detection signal tags.
const (
	TagSQLErrorMarker     = "sql-error-marker"
	TagReflectedScriptTag = "reflected-script-tag"
	TagTraversalMarker    = "traversal-marker"
)

// SubCategory identifies an injection payload family.
type SubCategory string

const (
	SubSQLi      SubCategory = "sqli"
	SubXSS       SubCategory = "xss"
	SubTraversal SubCategory = "traversal"
)

// SubCategories returns the injection families in execution order.
func SubCategories() []SubCategory {
	return []SubCategory{SubSQLi, SubXSS, SubTraversal}
}

// Catalog is an immutable snapshot of payload sets and signatures.
// Build one at process start with Default(), optionally overlaying
// site-specific additions with MergeYAML, and share it across probes.
type Catalog struct {
	version   string
	injection map[SubCategory][]Payload
	sqlErrors []string
	sysFiles  []string
	origins   []string
}

// Version returns the catalog version string.
func (c *Catalog) Version() string { return c.version }

// Injection returns the ordered payload list for an injection family.
// The returned slice must not be modified.
func (c *Catalog) Injection(sub SubCategory) []Payload {
	return c.injection[sub]
}

// SQLErrorSignatures returns substrings whose presence in a response body
// indicates a database error leaked to the client.
func (c *Catalog) SQLErrorSignatures() []string { return c.sqlErrors }

// SystemFileSignatures returns substrings indicating a traversal payload
// yielded system file contents.
func (c *Catalog) SystemFileSignatures() []string { return c.sysFiles }

// AttackerOrigins returns the third-party origins used by the CORS probe.
func (c *Catalog) AttackerOrigins() []string { return c.origins }

// CountFor returns how many payloads the catalog holds for a category.
// Used for progress estimation; only injection carries payloads today.
func (c *Catalog) CountFor(cat finding.Category) int {
	if cat != finding.CategoryInjection {
		return 0
	}
	n := 0
	for _, ps := range c.injection {
		n += len(ps)
	}
	return n
}

// Validate checks internal consistency: every family has at least one
// payload and every payload carries a known tag.
func (c *Catalog) Validate() error {
	for _, sub := range SubCategories() {
		ps := c.injection[sub]
		if len(ps) == 0 {
			return fmt.Errorf("%w: %s", finding.ErrNoPayloads, sub)
		}
		for _, p := range ps {
			switch p.Tag {
			case TagSQLErrorMarker, TagReflectedScriptTag, TagTraversalMarker:
			default:
				return fmt.Errorf("payloads: unknown tag %q in %s", p.Tag, sub)
			}
		}
	}
	return nil
}

// Default returns the built-in catalog. The payload sets follow the
// classic detection-grade probes for each family; they are deliberately
// short, since the engine detects rather than exploits.
func Default() *Catalog {
	return &Catalog{
		version: "2024.1",
		injection: map[SubCategory][]Payload{
			SubSQLi: {
				{Value: `' OR '1'='1`, Tag: TagSQLErrorMarker},
				{Value: `' OR '1'='1' --`, Tag: TagSQLErrorMarker},
				{Value: `' UNION SELECT NULL--`, Tag: TagSQLErrorMarker},
				{Value: `admin'--`, Tag: TagSQLErrorMarker},
				{Value: `1' AND '1'='1`, Tag: TagSQLErrorMarker},
			},
			SubXSS: {
				{Value: `<script>alert(1)</script>`, Tag: TagReflectedScriptTag},
				{Value: `<img src=x onerror=alert(1)>`, Tag: TagReflectedScriptTag},
				{Value: `"><svg onload=alert(1)>`, Tag: TagReflectedScriptTag},
			},
			SubTraversal: {
				{Value: `../../../../etc/passwd`, Tag: TagTraversalMarker},
				{Value: `..%2f..%2f..%2f..%2fetc%2fpasswd`, Tag: TagTraversalMarker},
				{Value: `....//....//....//etc/passwd`, Tag: TagTraversalMarker},
			},
		},
		sqlErrors: []string{
			"SQL syntax",
			"You have an error in your SQL syntax",
			"ORA-",
			"sqlite3.OperationalError",
			"SQLite3::SQLException",
			"pg_query():",
			"PostgreSQL ERROR",
			"Unclosed quotation mark",
			"ODBC SQL Server Driver",
			"Warning: mysql_",
		},
		sysFiles: []string{
			"root:x:0:0",
			"[boot loader]",
			"; for 16-bit app support",
		},
		origins: []string{
			"https://evil.example.com",
			"https://attacker.invalid",
		},
	}
}
