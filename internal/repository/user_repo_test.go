package repository

import (
	"strings"
	"testing"
)

func TestGenerateReferralCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateReferralCode()
		if !strings.HasPrefix(code, "REF") {
			t.Fatalf("expected REF prefix, got %q", code)
		}
		if len(code) != 11 {
			t.Fatalf("expected 11 chars, got %d (%q)", len(code), code)
		}
		for _, ch := range code[3:] {
			if !strings.ContainsRune(referralCodeChars, ch) {
				t.Fatalf("unexpected character %q in code %q", ch, code)
			}
		}
	}
}

func TestGenerateReferralCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[GenerateReferralCode()] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected distinct codes across 100 generations")
	}
}
