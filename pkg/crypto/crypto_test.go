package crypto

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if !VerifyPassword(hash, "secret") {
		t.Fatal("expected password verification to succeed")
	}

	if VerifyPassword(hash, "incorrect") {
		t.Fatal("expected password verification to fail")
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if len(token) == 0 {
		t.Fatal("expected token to be non-empty")
	}
}

func TestGenerateShortCode(t *testing.T) {
	code, err := GenerateShortCode(6)
	if err != nil {
		t.Fatalf("short code error: %v", err)
	}

	if len(code) != 6 {
		t.Fatalf("expected 6 characters, got %d", len(code))
	}
	for _, r := range code {
		if !strings.ContainsRune(shortCodeAlphabet, r) {
			t.Fatalf("unexpected character %q in short code", r)
		}
	}

	if _, err := GenerateShortCode(0); err == nil {
		t.Fatal("expected error for non-positive length")
	}
}
