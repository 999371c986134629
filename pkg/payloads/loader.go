package payloads

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// overlayFile is the YAML document shape accepted by MergeYAML.
//
//	version: "2024.2"
//	injection:
//	  sqli:
//	    - value: "' OR 1=1--"
//	      tag: sql-error-marker
//	signatures:
//	  sql_errors: ["DB2 SQL error"]
//	  system_files: ["daemon:x:1:1"]
type overlayFile struct {
	Version   string                    `yaml:"version"`
	Injection map[SubCategory][]Payload `yaml:"injection"`
	Signature struct {
		SQLErrors   []string `yaml:"sql_errors"`
		SystemFiles []string `yaml:"system_files"`
	} `yaml:"signatures"`
}

// MergeYAML reads an overlay document and returns a new catalog with the
// overlay's payloads and signatures appended after the built-ins. The
// receiver is not modified; catalogs stay immutable once shared.
func (c *Catalog) MergeYAML(r io.Reader) (*Catalog, error) {
	var overlay overlayFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&overlay); err != nil {
		return nil, fmt.Errorf("payloads: decode overlay: %w", err)
	}

	merged := &Catalog{
		version:   c.version,
		injection: make(map[SubCategory][]Payload, len(c.injection)),
		sqlErrors: append([]string(nil), c.sqlErrors...),
		sysFiles:  append([]string(nil), c.sysFiles...),
		origins:   append([]string(nil), c.origins...),
	}
	for sub, ps := range c.injection {
		merged.injection[sub] = append([]Payload(nil), ps...)
	}

	if overlay.Version != "" {
		merged.version = overlay.Version
	}
	for sub, ps := range overlay.Injection {
		merged.injection[sub] = append(merged.injection[sub], ps...)
	}
	merged.sqlErrors = append(merged.sqlErrors, overlay.Signature.SQLErrors...)
	merged.sysFiles = append(merged.sysFiles, overlay.Signature.SystemFiles...)

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadFile builds the default catalog with a YAML overlay file applied.
// An empty path returns the default catalog unchanged.
func LoadFile(path string) (*Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("payloads: open overlay: %w", err)
	}
	defer f.Close()
	return base.MergeYAML(f)
}
