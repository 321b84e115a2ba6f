// Package exposure backfills missing exposure-hour denominators from a
// site-defaults catalog and applies manual exposure edits.
package exposure

import (
	"fmt"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"safetyops/internal/domain/normalize"
)

// PatternRule matches the site name as written in the export.
type PatternRule struct {
	Pattern *regexp.Regexp
	Hours   float64
}

// ExactRule matches the canonical site name.
type ExactRule struct {
	Site  string
	Hours float64
}

// Catalog holds default monthly exposure hours per site.
type Catalog struct {
	Patterns []PatternRule
	Exact    []ExactRule
}

// DefaultCatalog is used when no catalog file is configured.
func DefaultCatalog() Catalog {
	return Catalog{
		Patterns: []PatternRule{
			{Pattern: regexp.MustCompile(`(?i)^\s*obra\b`), Hours: 8000},
			{Pattern: regexp.MustCompile(`(?i)\btaller\b`), Hours: 4000},
			{Pattern: regexp.MustCompile(`(?i)\bplanta\b`), Hours: 12000},
		},
		Exact: []ExactRule{
			{Site: "OFICINA CENTRAL", Hours: 3200},
			{Site: "ALMACEN GENERAL", Hours: 1600},
			{Site: "BASE LOGISTICA", Hours: 2400},
		},
	}
}

// Lookup returns the default hours for site: pattern rules first, then exact
// rules, first hit wins, zero when nothing matches.
func (c Catalog) Lookup(site string) float64 {
	for _, r := range c.Patterns {
		if r.Pattern != nil && r.Pattern.MatchString(site) {
			return r.Hours
		}
	}
	key := normalize.Canonical(site)
	if key == "" {
		return 0
	}
	for _, r := range c.Exact {
		if normalize.Canonical(r.Site) == key {
			return r.Hours
		}
	}
	return 0
}

type catalogFile struct {
	Pattern []struct {
		Regex string  `toml:"regex"`
		Hours float64 `toml:"hours"`
	} `toml:"pattern"`
	Exact []struct {
		Site  string  `toml:"site"`
		Hours float64 `toml:"hours"`
	} `toml:"exact"`
}

// ParseCatalog decodes a TOML catalog:
//
//	[[pattern]]
//	regex = "(?i)^obra"
//	hours = 8000
//
//	[[exact]]
//	site = "Oficina Central"
//	hours = 3200
func ParseCatalog(raw []byte) (Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return Catalog{}, fmt.Errorf("decode site catalog: %w", err)
	}

	var out Catalog
	for i, p := range file.Pattern {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return Catalog{}, fmt.Errorf("pattern[%d] %q: %w", i, p.Regex, err)
		}
		if p.Hours < 0 {
			return Catalog{}, fmt.Errorf("pattern[%d] hours must not be negative", i)
		}
		out.Patterns = append(out.Patterns, PatternRule{Pattern: re, Hours: p.Hours})
	}
	for i, e := range file.Exact {
		if normalize.Canonical(e.Site) == "" {
			return Catalog{}, fmt.Errorf("exact[%d] site is required", i)
		}
		if e.Hours < 0 {
			return Catalog{}, fmt.Errorf("exact[%d] hours must not be negative", i)
		}
		out.Exact = append(out.Exact, ExactRule{Site: e.Site, Hours: e.Hours})
	}
	return out, nil
}
