package internal

import (
	"strings"
	"testing"
)

func TestNewCodeLengthAndCharset(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewCode(8, CharsetAlphanumeric)
		if err != nil {
			t.Fatalf("NewCode error: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("expected length 8, got %d (%q)", len(code), code)
		}
		for _, r := range code {
			if !strings.ContainsRune(CharsetAlphanumeric, r) {
				t.Fatalf("code %q contains out-of-charset rune %q", code, r)
			}
		}
	}
}

func TestNewCodeSmallCharset(t *testing.T) {
	// A 10-character charset exercises the rejection path heavily
	// (256 % 10 != 0).
	const digits = "0123456789"
	code, err := NewCode(16, digits)
	if err != nil {
		t.Fatalf("NewCode error: %v", err)
	}
	if len(code) != 16 {
		t.Fatalf("expected length 16, got %d", len(code))
	}
	for _, r := range code {
		if !strings.ContainsRune(digits, r) {
			t.Fatalf("code %q contains out-of-charset rune %q", code, r)
		}
	}
}

func TestNewCodeUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		code, err := NewCode(8, CharsetAlphanumeric)
		if err != nil {
			t.Fatalf("NewCode error: %v", err)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code %q in 100 draws", code)
		}
		seen[code] = struct{}{}
	}
}

func TestNewCodeRejectsBadInput(t *testing.T) {
	if _, err := NewCode(2, CharsetAlphanumeric); err == nil {
		t.Fatal("expected too-short length to be rejected")
	}
	if _, err := NewCode(100, CharsetAlphanumeric); err == nil {
		t.Fatal("expected too-long length to be rejected")
	}
	if _, err := NewCode(8, "a"); err == nil {
		t.Fatal("expected single-character charset to be rejected")
	}
}

func TestNormalizeSubject(t *testing.T) {
	cases := map[string]string{
		"  Alice@Example.COM ": "alice@example.com",
		"alice@example.com":    "alice@example.com",
		"\tUSER-42\n":          "user-42",
	}
	for in, want := range cases {
		if got := NormalizeSubject(in); got != want {
			t.Fatalf("NormalizeSubject(%q) = %q, want %q", in, got, want)
		}
	}
}
