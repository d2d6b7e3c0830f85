package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashWithCost("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify("correct horse", hash) {
		t.Fatal("expected password to verify")
	}
	if Verify("wrong horse", hash) {
		t.Fatal("expected wrong password to fail")
	}
}
