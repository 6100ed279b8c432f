package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"paediprime/backend/config"
)

func testTokenService() *TokenService {
	return NewTokenService(&config.Config{JWTSecret: "test-secret-key"})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "s3cretpass" {
		t.Fatal("Hash must not equal the plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cretpass")); err != nil {
		t.Errorf("Hash does not verify against the original password: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Could not read bcrypt cost: %v", err)
	}
	if cost != bcryptCost {
		t.Errorf("Expected bcrypt cost %d, got %d", bcryptCost, cost)
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens := testTokenService()

	issued, err := tokens.Issue(42, "asha@gmail.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := tokens.Verify(issued)
	if err != nil {
		t.Fatalf("Verify returned error for a fresh token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Expected user_id 42, got %d", claims.UserID)
	}
	if claims.Email != "asha@gmail.com" {
		t.Errorf("Expected email asha@gmail.com, got %s", claims.Email)
	}
}

func TestTokenService_ExpiryIsFourteenDays(t *testing.T) {
	tokens := testTokenService()

	before := time.Now()
	issued, err := tokens.Issue(7, "a@b.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	after := time.Now()

	parsed, err := jwt.Parse(issued, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret-key"), nil
	})
	if err != nil {
		t.Fatalf("Could not parse issued token: %v", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		t.Fatalf("Could not read expiry: %v", err)
	}

	lower := before.Add(tokenValidity).Add(-time.Second)
	upper := after.Add(tokenValidity).Add(time.Second)
	if exp.Time.Before(lower) || exp.Time.After(upper) {
		t.Errorf("Expiry %v not within 14 days of issuance (%v .. %v)", exp.Time, lower, upper)
	}
}

func TestTokenService_VerifyRejectsTampering(t *testing.T) {
	tokens := testTokenService()

	issued, err := tokens.Issue(1, "a@b.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	tampered := issued[:len(issued)-4] + "AAAA"
	if _, err := tokens.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for a tampered token, got %v", err)
	}
}

func TestTokenService_VerifyRejectsWrongKey(t *testing.T) {
	other := NewTokenService(&config.Config{JWTSecret: "some-other-key"})
	issued, err := other.Issue(1, "a@b.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := testTokenService().Verify(issued); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for a foreign-key token, got %v", err)
	}
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	// Mint a token that expired an hour ago with the same key.
	claims := jwt.MapClaims{
		"user_id": int64(1),
		"email":   "a@b.com",
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
	if err != nil {
		t.Fatalf("Could not sign expired token: %v", err)
	}

	if _, err := testTokenService().Verify(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestTokenService_VerifyRejectsNoneAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": int64(1),
		"email":   "a@b.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Could not build unsigned token: %v", err)
	}

	if _, err := testTokenService().Verify(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for alg=none, got %v", err)
	}
}
