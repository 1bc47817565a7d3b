package auth

import (
	"strings"
	"testing"
)

func TestHashAndComparePassword(t *testing.T) {
	password := "pw12345678"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() = %v, want nil", err)
	}
	if hash == password {
		t.Fatal("hash must not equal plaintext")
	}

	if err := ComparePassword(hash, password); err != nil {
		t.Errorf("ComparePassword() with correct password = %v, want nil", err)
	}
	if err := ComparePassword(hash, "wrong-password"); err == nil {
		t.Error("ComparePassword() with wrong password = nil, want error")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("HashPassword(\"\") = nil, want error")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("pw12345678")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("pw12345678")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (salted)")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{"valid", "pw12345678", false},
		{"minimum length", "12345678", false},
		{"too short", "1234567", true},
		{"too long", strings.Repeat("a", 73), true},
		{"max length", strings.Repeat("a", 72), false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.shouldFail && err == nil {
				t.Errorf("ValidatePassword(%q) = nil, want error", tt.password)
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("ValidatePassword(%q) = %v, want nil", tt.password, err)
			}
		})
	}
}
