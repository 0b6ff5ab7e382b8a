package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "password" {
		t.Fatal("hash must not equal plaintext")
	}

	if !VerifyPassword("password", hash) {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestHashPassword_SaltUniqueness(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("equal plaintexts must produce different hashes")
	}
}

func TestVerifyPassword_GarbageHash(t *testing.T) {
	t.Parallel()

	if VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Fatal("garbage hash must not verify")
	}
}
