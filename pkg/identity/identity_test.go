package identity

import "testing"

func TestResolve(t *testing.T) {
	candidates := []string{"DUPONT Jean", " KOUASSI Awa ", "N'GUESSAN Marc"}

	tests := []struct {
		name          string
		query         string
		max           Tier
		wantCandidate string
		wantTier      Tier
		wantOK        bool
	}{
		{
			name:          "exact match",
			query:         "DUPONT Jean",
			max:           Exact,
			wantCandidate: "DUPONT Jean",
			wantTier:      Exact,
			wantOK:        true,
		},
		{
			name:          "trimmed match against padded candidate",
			query:         "KOUASSI Awa",
			max:           Trimmed,
			wantCandidate: " KOUASSI Awa ",
			wantTier:      Trimmed,
			wantOK:        true,
		},
		{
			name:   "trimmed tier refused when max is exact",
			query:  "KOUASSI Awa",
			max:    Exact,
			wantOK: false,
		},
		{
			name:          "folded match",
			query:         "dupont jean",
			max:           Folded,
			wantCandidate: "DUPONT Jean",
			wantTier:      Folded,
			wantOK:        true,
		},
		{
			name:   "casefold refused when max is trimmed",
			query:  "dupont jean",
			max:    Trimmed,
			wantOK: false,
		},
		{
			name:   "drift beyond whitespace and case is a hard miss",
			query:  "DUPONT Jean-Paul",
			max:    Folded,
			wantOK: false,
		},
		{
			name:          "padded query trims to exact candidate",
			query:         "  DUPONT Jean",
			max:           Folded,
			wantCandidate: "DUPONT Jean",
			wantTier:      Trimmed,
			wantOK:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Resolve(tt.query, candidates, tt.max)
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Candidate != tt.wantCandidate {
				t.Errorf("Resolve() candidate = %q, want %q", m.Candidate, tt.wantCandidate)
			}
			if m.Tier != tt.wantTier {
				t.Errorf("Resolve() tier = %v, want %v", m.Tier, tt.wantTier)
			}
		})
	}
}

func TestResolveExactWinsOverLooserTierEarlierInList(t *testing.T) {
	// The looser candidate appears first; the exact one must still win
	// because tiers are scanned in order over the full candidate list.
	candidates := []string{"dupont jean", "DUPONT Jean"}

	m, ok := Resolve("DUPONT Jean", candidates, Folded)
	if !ok {
		t.Fatal("Resolve() ok = false, want true")
	}
	if m.Candidate != "DUPONT Jean" || m.Tier != Exact {
		t.Errorf("Resolve() = %+v, want exact match on DUPONT Jean", m)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		max  Tier
		want bool
	}{
		{"identical at exact", "DUPONT Jean", "DUPONT Jean", Exact, true},
		{"padded not equal at exact", "DUPONT Jean", " DUPONT Jean", Exact, false},
		{"padded equal at trimmed", "DUPONT Jean", " DUPONT Jean", Trimmed, true},
		{"cased not equal at trimmed", "DUPONT Jean", "dupont jean", Trimmed, false},
		{"cased equal at folded", "DUPONT Jean", "dupont jean", Folded, true},
		{"different names never equal", "DUPONT Jean", "KOUASSI Awa", Folded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b, tt.max); got != tt.want {
				t.Errorf("Equal(%q, %q, %v) = %v, want %v", tt.a, tt.b, tt.max, got, tt.want)
			}
		})
	}
}

func TestFold(t *testing.T) {
	if Fold("  DUPONT Jean ") != Fold("dupont jean") {
		t.Error("Fold should normalize whitespace and case to the same key")
	}
	// Unicode folding must handle accented characters consistently.
	if Fold("Prélèvements") != Fold("PRÉLÈVEMENTS") {
		t.Error("Fold should case-fold accented characters")
	}
}

func TestTierString(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{Exact, "exact"},
		{Trimmed, "trimmed"},
		{Folded, "folded"},
		{Tier(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}
