package httpapi

import (
	"errors"
	"strings"
	"testing"
)

func testParams() Argon2idParams {
	params := DefaultArgon2idParams
	params.Memory = 8 * 1024
	return params
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := CreatePasswordHash("correct horse battery staple", testParams())
	if err != nil {
		t.Fatalf("CreatePasswordHash returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("expected the password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyPassword_RejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	for _, hash := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=3,p=2$c2FsdA$aGFzaA",
	} {
		if err := VerifyPassword(hash, "anything"); !errors.Is(err, ErrInvalidPasswordHash) {
			t.Errorf("expected ErrInvalidPasswordHash for %q, got %v", hash, err)
		}
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	t.Parallel()

	first, err := CreatePasswordHash("same password", testParams())
	if err != nil {
		t.Fatalf("CreatePasswordHash returned error: %v", err)
	}
	second, err := CreatePasswordHash("same password", testParams())
	if err != nil {
		t.Fatalf("CreatePasswordHash returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}
