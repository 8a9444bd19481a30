package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword_Valid(t *testing.T) {
	for _, pw := range []string{"secure123", "MyP@ssw0rd", "abcdef1", strings.Repeat("a", 128)} {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("expected %q to be valid, got error: %v", pw, err)
		}
	}
}

func TestValidatePassword_TooShort(t *testing.T) {
	for _, pw := range []string{"", "a", "abcde"} {
		if err := ValidatePassword(pw); err != ErrPasswordTooShort {
			t.Errorf("ValidatePassword(%q): expected ErrPasswordTooShort, got %v", pw, err)
		}
	}
}

func TestValidatePassword_TooLong(t *testing.T) {
	if err := ValidatePassword(strings.Repeat("a", 129)); err != ErrPasswordTooLong {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestValidatePassword_Common(t *testing.T) {
	for _, pw := range []string{"123456", "password", "PASSWORD", "Qwerty", "letmein"} {
		if err := ValidatePassword(pw); err != ErrPasswordCommon {
			t.Errorf("ValidatePassword(%q): expected ErrPasswordCommon, got %v", pw, err)
		}
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secure123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secure123" {
		t.Error("hash should not equal the password")
	}
	if !CheckPassword("secure123", hash) {
		t.Error("expected correct password to match")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Error("expected wrong password not to match")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, _ := HashPassword("secure123")
	h2, _ := HashPassword("secure123")
	if h1 == h2 {
		t.Error("expected different hashes for the same password")
	}
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	if CheckPassword("anything", "") {
		t.Error("expected empty hash never to match")
	}
}
