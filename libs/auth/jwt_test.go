package auth

import (
	"testing"
	"time"
)

func TestSignAndVerifyHS256(t *testing.T) {
	claims := Claims{
		Sub:        "user-1",
		BusinessID: "biz-1",
		Role:       "owner",
		Exp:        time.Now().Add(time.Hour).Unix(),
		Iat:        time.Now().Unix(),
	}

	token, err := SignHS256(claims, "secret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	parsed, err := ParseAndVerifyHS256(token, "secret")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if parsed.Sub != "user-1" || parsed.BusinessID != "biz-1" || parsed.Role != "owner" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}

	if _, err := ParseAndVerifyHS256(token, "wrong-secret"); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestParseAndVerifyHS256_Expired(t *testing.T) {
	claims := Claims{
		Sub: "user-1",
		Exp: time.Now().Add(-time.Minute).Unix(),
	}
	token, err := SignHS256(claims, "secret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "secret"); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseAndVerifyHS256_Malformed(t *testing.T) {
	if _, err := ParseAndVerifyHS256("not-a-token", "secret"); err == nil {
		t.Fatal("expected malformed token to fail")
	}
}
