package common

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const revokedSessionPrefix = "revoked_admin_session:"

// AdminSession is a validated admin session token
type AdminSession struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

// AdminSessionSigner issues and validates short-lived admin bearer tokens.
// The HMAC key is derived from the static admin token, so rotating
// ADMIN_TOKEN invalidates every outstanding session.
type AdminSessionSigner struct {
	secretKey []byte
	cache     CacheInterface
	now       func() time.Time
}

// NewAdminSessionSigner returns nil when adminToken is empty. cache is used
// for revocation and may be nil.
func NewAdminSessionSigner(adminToken string, cache CacheInterface) *AdminSessionSigner {
	if adminToken == "" {
		return nil
	}
	sum := sha256.Sum256([]byte("bookingcart-admin-session:" + adminToken))
	return &AdminSessionSigner{
		secretKey: sum[:],
		cache:     cache,
		now:       time.Now,
	}
}

// Issue signs a session token for subject valid for ttl
func (s *AdminSessionSigner) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Validate parses tokenString and rejects expired or revoked sessions
func (s *AdminSessionSigner) Validate(tokenString string) (*AdminSession, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("missing jti claim")
	}

	if s.cache != nil {
		if _, revoked := s.cache.Get(revokedSessionPrefix + claims.ID); revoked {
			return nil, errors.New("token revoked")
		}
	}

	return &AdminSession{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blocks a session until it would have expired anyway
func (s *AdminSessionSigner) Revoke(session *AdminSession) {
	if s.cache == nil || session == nil {
		return
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	s.cache.Set(revokedSessionPrefix+session.TokenID, []byte("1"), ttl)
}
