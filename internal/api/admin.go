package api

import (
	"net/http"
	"time"

	"travel-desk/bookingcart/internal/auth"
	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/middleware"
	"travel-desk/bookingcart/internal/models/dtos"
)

// AdminLoginHandler handles POST /api/admin/login. It trades the static
// admin token for a session token that expires after ttl.
func AdminLoginHandler(adminToken string, signer *common.AdminSessionSigner, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if adminToken == "" || signer == nil {
			respond(w, initTime, http.StatusInternalServerError, dtos.ErrorResponse{
				Error: constants.MsgAdminNotConfigured,
				Code:  constants.ErrCodeNotConfigured,
			})
			return
		}

		var req dtos.AdminLoginRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			respondWithError(w, initTime, err)
			return
		}

		if !middleware.TokensEqual(req.Token, adminToken) {
			logging.Warn("Admin login rejected", "ip", common.ClientIP(r))
			respond(w, initTime, http.StatusUnauthorized, dtos.ErrorResponse{
				Error: constants.MsgUnauthorized,
				Code:  constants.ErrCodeUnauthorized,
			})
			return
		}

		token, expiresAt, err := signer.Issue("admin", ttl)
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}

		logging.Info("Admin session issued", "ip", common.ClientIP(r), "expires_at", expiresAt)
		respond(w, initTime, http.StatusOK, dtos.AdminLoginResponse{
			Ok:        true,
			Token:     token,
			ExpiresIn: int(ttl.Seconds()),
		})
	}
}

// AdminLogoutHandler handles POST /api/admin/logout. Session tokens are
// revoked; the static token cannot be.
func AdminLogoutHandler(signer *common.AdminSessionSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if session, ok := auth.GetAdminClaims(r.Context()).(*auth.SessionClaims); ok && signer != nil {
			signer.Revoke(&common.AdminSession{
				Subject:   session.SubjectValue,
				TokenID:   session.TokenID,
				ExpiresAt: session.Expiry,
			})
		}
		respond(w, initTime, http.StatusOK, map[string]bool{"ok": true})
	}
}
