package game

import (
	"strings"
	"testing"
)

func TestNewCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewCode()
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q, outside alphabet", code, c)
			}
		}
	}
}

func TestNewCodeAvoidsAmbiguousCharacters(t *testing.T) {
	for _, c := range "0oO1lLiI" {
		if strings.ContainsRune(codeAlphabet, c) {
			t.Errorf("alphabet contains ambiguous character %q", c)
		}
	}
}

func TestUniqueCodeRetriesOnCollision(t *testing.T) {
	attempts := 0
	code := UniqueCode(func(c string) bool {
		attempts++
		return attempts == 1 // first draw collides
	})
	if code == "" {
		t.Fatal("empty code")
	}
	if attempts < 2 {
		t.Errorf("expected a retry, got %d attempts", attempts)
	}
}

func TestUniqueCodeReturnsImmediatelyWithoutCollision(t *testing.T) {
	attempts := 0
	UniqueCode(func(string) bool {
		attempts++
		return false
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
