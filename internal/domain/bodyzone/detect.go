// Package bodyzone maps free-text injury locations to anatomical zones.
package bodyzone

import (
	"regexp"
	"sort"
	"strings"

	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// Side is the laterality read from the raw location text.
type Side int

const (
	Bilateral Side = iota
	Left
	Right
)

var (
	leftMarker  = regexp.MustCompile(`\bIZQ|\bLEFT\b`)
	rightMarker = regexp.MustCompile(`\bDER(?:ECH[OA]S?)?\b|\bDER\.|\bDCH[OA]?\b|\bRIGHT\b`)

	parenthetical = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	nonLetter     = regexp.MustCompile(`[^A-Z ]+`)
	spaces        = regexp.MustCompile(`\s+`)
)

// DetectSide inspects the uppercased raw text before cleanup, since side
// markers often sit inside parentheses.
func DetectSide(raw string) Side {
	upper := strings.ToUpper(normalize.StripDiacritics(raw))
	left := leftMarker.MatchString(upper)
	right := rightMarker.MatchString(upper)
	switch {
	case left && !right:
		return Left
	case right && !left:
		return Right
	default:
		return Bilateral
	}
}

// Clean produces the token the catalog is matched against.
func Clean(raw string) string {
	s := strings.ToUpper(normalize.StripDiacritics(raw))
	s = parenthetical.ReplaceAllString(s, " ")
	s = nonLetter.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Detect returns the sorted zone set for a location using the package catalog.
func Detect(location string) []safety.BodyZone {
	return DetectWith(Catalog, location)
}

// DetectWith evaluates every rule of catalog and accumulates all hits. The
// result is never empty: no hit yields {unknown}.
func DetectWith(catalog []Rule, location string) []safety.BodyZone {
	side := DetectSide(location)
	token := Clean(location)

	found := make(map[safety.BodyZone]struct{})
	if token != "" {
		for _, rule := range catalog {
			if !rule.Matches(token) {
				continue
			}
			for _, z := range rule.expand(side) {
				found[z] = struct{}{}
			}
		}
	}

	if len(found) == 0 {
		return []safety.BodyZone{safety.ZoneUnknown}
	}
	out := make([]safety.BodyZone, 0, len(found))
	for z := range found {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Matches reports whether the cleaned token hits a pattern and no exclusion.
func (r Rule) Matches(token string) bool {
	hit := false
	for _, p := range r.Patterns {
		if p.MatchString(token) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	for _, ex := range r.Exclude {
		if ex.MatchString(token) {
			return false
		}
	}
	return true
}

func (r Rule) expand(side Side) []safety.BodyZone {
	out := make([]safety.BodyZone, 0, len(r.Zones)*2)
	for _, base := range r.Zones {
		if !r.Lateral {
			out = append(out, safety.BodyZone(base))
			continue
		}
		if side == Left || side == Bilateral {
			out = append(out, safety.BodyZone(base+"_left"))
		}
		if side == Right || side == Bilateral {
			out = append(out, safety.BodyZone(base+"_right"))
		}
	}
	return out
}
