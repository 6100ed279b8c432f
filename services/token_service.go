package services

import (
	"errors" // For the token sentinel error
	"fmt"    // For error wrapping
	"time"   // For token expiry

	"github.com/golang-jwt/jwt/v5" // For JWT generation and validation
	"golang.org/x/crypto/bcrypt"   // For password hashing

	"paediprime/backend/config"
)

const (
	// bcryptCost is deliberately expensive to resist offline brute force.
	bcryptCost = 10
	// tokenValidity is the fixed lifetime of an access token.
	tokenValidity = 14 * 24 * time.Hour
)

// ErrInvalidToken is returned by Verify on tampering, a wrong signing
// method, or expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the identity a verified access token asserts.
type TokenClaims struct {
	UserID int64
	Email  string
}

// TokenService hashes passwords and mints/verifies signed access tokens.
// The signing key is process-wide configuration, loaded once at startup.
type TokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new TokenService instance.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{cfg: cfg}
}

// HashPassword hashes the plaintext password with bcrypt at cost 10.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Issue mints a signed token binding the user identity and email, valid
// for 14 days from now.
func (s *TokenService) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenValidity).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the embedded identity.
// Any tampering, algorithm mismatch, or expiry yields ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64) // JSON numbers decode as float64
	if !ok {
		return nil, ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{UserID: int64(userID), Email: email}, nil
}
