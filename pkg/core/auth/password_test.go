package auth

import (
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pass12")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "pass12" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !CheckPassword(hash, "pass12") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "pass13") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("pass12")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := HashPassword("pass12")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ (salt)")
	}
}
