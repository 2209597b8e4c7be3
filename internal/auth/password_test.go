package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	pwd := "secret1"
	hash, err := HashPassword(pwd)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if strings.Contains(hash, pwd) {
		t.Fatal("hash must not contain the plaintext")
	}
	if !VerifyPassword(hash, pwd) {
		t.Fatal("VerifyPassword rejected the original password")
	}
	for _, other := range []string{"secret2", "Secret1", "", "secret1 "} {
		if VerifyPassword(hash, other) {
			t.Fatalf("VerifyPassword accepted %q", other)
		}
	}
}

func TestHashPasswordIsSaltedWithFixedCost(t *testing.T) {
	a, err := HashPassword("same-password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("same-password")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("expected distinct hashes for the same password")
	}
	cost, err := bcrypt.Cost([]byte(a))
	if err != nil {
		t.Fatal(err)
	}
	if cost != PasswordCost {
		t.Fatalf("expected cost %d, got %d", PasswordCost, cost)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatal("malformed hash must never verify")
	}
}
