package auth

import "time"

// AdminClaims describes how an admin request was authenticated.
type AdminClaims interface {
	Subject() string
	Source() string
	ExpiresAt() time.Time
}

// StaticTokenClaims is set when the caller presented ADMIN_TOKEN itself.
type StaticTokenClaims struct{}

func (c *StaticTokenClaims) Subject() string      { return "admin" }
func (c *StaticTokenClaims) Source() string       { return "STATIC_TOKEN" }
func (c *StaticTokenClaims) ExpiresAt() time.Time { return time.Time{} }

// SessionClaims is set when the caller presented a session token from login.
type SessionClaims struct {
	SubjectValue string
	TokenID      string
	Expiry       time.Time
}

func (c *SessionClaims) Subject() string      { return c.SubjectValue }
func (c *SessionClaims) Source() string       { return "SESSION" }
func (c *SessionClaims) ExpiresAt() time.Time { return c.Expiry }
