package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-telemetry/internal/auth"
)

// issueTokenRequest is the request body for POST /auth/token.
type issueTokenRequest struct {
	Subject    string    `json:"subject"`
	Role       auth.Role `json:"role"`
	TTLMinutes int       `json:"ttl_minutes,omitempty"`
}

// tokenResponse is the response body for POST /auth/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleIssueToken mints a token for a gateway or dashboard. Admin only.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	if !s.authEnabled() {
		writeBadRequest(w, "authentication is disabled")
		return
	}

	var req issueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ttl := req.TTLMinutes
	if ttl <= 0 {
		ttl = s.secCfg.JWT.AccessTokenTTL
	}

	token, err := auth.GenerateAccessToken(req.Subject, req.Role, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRole) || errors.Is(err, auth.ErrTokenInvalid) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		s.logger.Error("issuing token failed", "error", err)
		writeInternalError(w, "failed to issue token")
		return
	}

	claims, err := auth.ParseToken(token, s.secCfg.JWT.Secret)
	if err != nil {
		writeInternalError(w, "failed to issue token")
		return
	}

	issuer := ""
	if c := claimsFromContext(r.Context()); c != nil {
		issuer = c.Subject
	}
	s.logger.Info("token issued", "subject", req.Subject, "role", req.Role, "issued_by", issuer)

	writeJSON(w, http.StatusCreated, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds()),
	})
}
