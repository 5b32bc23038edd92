package model

import "testing"

func TestNormalizePrefix(t *testing.T) {
	if got := NormalizePrefix(""); got != NoPrefix {
		t.Errorf("expected %q for empty prefix, got %q", NoPrefix, got)
	}
	if got := NormalizePrefix("100"); got != "100" {
		t.Errorf("expected prefix to pass through, got %q", got)
	}
}

func TestValidSuffix(t *testing.T) {
	for _, s := range []string{"", "L", "HL-1"} {
		if !ValidSuffix(s) {
			t.Errorf("expected %q to be a valid suffix", s)
		}
	}
	if ValidSuffix("XX") {
		t.Error("expected XX to be rejected")
	}
}

func TestSuffixLabeler(t *testing.T) {
	en := SuffixLabeler(LangEnglish)
	if en("") != "No suffix" {
		t.Errorf("expected localized base label, got %q", en(""))
	}
	if en("L") != "L" {
		t.Errorf("expected suffix tag to pass through, got %q", en("L"))
	}

	tr := SuffixLabeler(LangTurkish)
	if tr("") != "Eksiz" {
		t.Errorf("expected Turkish base label, got %q", tr(""))
	}

	// Unknown language falls back to English.
	xx := SuffixLabeler("xx")
	if xx("") != "No suffix" {
		t.Errorf("expected fallback label, got %q", xx(""))
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAtLeast(RoleAdmin, RoleUser) {
		t.Error("admin should satisfy user")
	}
	if RoleAtLeast(RoleUser, RoleAdmin) {
		t.Error("user should not satisfy admin")
	}
}
