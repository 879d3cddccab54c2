package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_Verifies(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("expected matching password to verify")
	}

	if CheckPassword("wrong password", hash) {
		t.Error("expected mismatched password to fail")
	}
}

func TestHashPassword_Randomized(t *testing.T) {
	h1, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if h1 == h2 {
		t.Error("expected per-hash salting to produce distinct hashes")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"truncated", "$2a$10$tooshort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if CheckPassword("anything", tt.hash) {
				t.Error("expected malformed hash to fail verification")
			}
		})
	}
}
