package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"travel-desk/bookingcart/internal/auth"
	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/models/dtos"
)

// AdminAuthMiddleware gates admin routes behind a bearer token: either the
// configured ADMIN_TOKEN or a session token issued by the login endpoint.
// With no ADMIN_TOKEN configured every request fails with 500.
func AdminAuthMiddleware(adminToken string, signer *common.AdminSessionSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminToken == "" {
				logging.Error("Admin route called without ADMIN_TOKEN configured", "path", r.URL.Path)
				common.RespondJSON(w, http.StatusInternalServerError, dtos.ErrorResponse{
					Error: constants.MsgAdminNotConfigured,
					Code:  constants.ErrCodeNotConfigured,
				})
				return
			}

			token, ok := BearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			var claims auth.AdminClaims
			switch {
			case TokensEqual(token, adminToken):
				claims = &auth.StaticTokenClaims{}
			case signer != nil:
				session, err := signer.Validate(token)
				if err != nil {
					logging.Debug("Admin session rejected", "error", err)
					unauthorized(w)
					return
				}
				claims = &auth.SessionClaims{
					SubjectValue: session.Subject,
					TokenID:      session.TokenID,
					Expiry:       session.ExpiresAt,
				}
			default:
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetAdminClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// TokensEqual compares in constant time.
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	common.RespondJSON(w, http.StatusUnauthorized, dtos.ErrorResponse{
		Error: constants.MsgUnauthorized,
		Code:  constants.ErrCodeUnauthorized,
	})
}
