// Package identity provides tiered name matching for identity lookups.
// Person names are the identity key across the roster and the ledger, and
// real data carries whitespace and casing drift. Matching is attempted in
// strictly increasing looseness: exact, trimmed, then trimmed+case-folded.
// The tier that matched is always surfaced so callers can warn about
// near-duplicate identities instead of silently reconciling them.
//
// There is deliberately no fuzzy (edit-distance) matching: name drift beyond
// whitespace and casing is a hard miss.
package identity

import (
	"strings"

	"golang.org/x/text/cases"
)

// Tier is the strictness level used to match a name string.
type Tier int

const (
	// Exact requires byte-for-byte string equality.
	Exact Tier = iota
	// Trimmed compares after trimming leading/trailing whitespace.
	Trimmed
	// Folded compares after trimming and Unicode case folding. Write paths
	// must not use this tier; it is for read/display robustness only.
	Folded
)

// String returns a string representation of the Tier.
func (t Tier) String() string {
	switch t {
	case Exact:
		return "exact"
	case Trimmed:
		return "trimmed"
	case Folded:
		return "folded"
	default:
		return "unknown"
	}
}

// Match reports the candidate that matched a query and the tier that was
// required to match it. A Tier above Exact means the stored spelling differs
// from the query by whitespace or casing.
type Match struct {
	Candidate string
	Tier      Tier
}

// Resolve finds the first candidate matching query, trying tiers in order up
// to and including max. Candidates are scanned fully per tier, so an exact
// match anywhere in the list always wins over a trimmed match earlier in it.
func Resolve(query string, candidates []string, max Tier) (Match, bool) {
	for tier := Exact; tier <= max; tier++ {
		for _, c := range candidates {
			if equalAt(query, c, tier) {
				return Match{Candidate: c, Tier: tier}, true
			}
		}
	}
	return Match{}, false
}

// Equal reports whether a and b refer to the same identity at or below the
// given maximum tier.
func Equal(a, b string, max Tier) bool {
	for tier := Exact; tier <= max; tier++ {
		if equalAt(a, b, tier) {
			return true
		}
	}
	return false
}

// Fold returns the canonical trimmed, case-folded form of a name. It is the
// comparison key of the Folded tier, exposed for grouping in read paths.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// equalAt compares two names at exactly one tier.
func equalAt(a, b string, tier Tier) bool {
	switch tier {
	case Exact:
		return a == b
	case Trimmed:
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	case Folded:
		return Fold(a) == Fold(b)
	default:
		return false
	}
}
