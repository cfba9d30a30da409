package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenClaims(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "ADMIN", 10)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "42" || claims["role"] != "ADMIN" {
		t.Fatalf("claims = %v", claims)
	}
}

func TestRefreshTokenHash(t *testing.T) {
	a, _ := NewRefreshToken(1)
	b, _ := NewRefreshToken(1)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Fatalf("unexpected raw tokens %q %q", a.Raw, b.Raw)
	}
	if HashRefreshRaw(a.Raw) != HashRefreshRaw(a.Raw) || HashRefreshRaw(a.Raw) == HashRefreshRaw(b.Raw) {
		t.Fatal("hash must be deterministic and distinct")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "correct horse") || VerifyPassword(hash, "wrong") {
		t.Fatal("VerifyPassword mismatch")
	}
	if CheckPassword("short") == nil || CheckPassword("long enough") != nil {
		t.Fatal("CheckPassword length rules")
	}
}
