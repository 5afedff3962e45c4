package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/transport/web/logx"
	"github.com/EgorLis/media-gate/internal/transport/web/mw"
	v1 "github.com/EgorLis/media-gate/internal/transport/web/v1"
)

type HandlerLogout struct {
	Log       *log.Logger
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}

// Logout godoc
// @Summary     Revoke current token
// @Description Помещает jti текущего токена в блэклист до истечения его срока.
// @Tags        auth
// @Produce     json
// @Success     200 {object} map[string]bool
// @Failure     401 {object} map[string]string
// @Security    BearerAuth
// @Router      /api/auth/logout [post]
func (h *HandlerLogout) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "auth.logout"
	reqID := mw.RequestIDFromCtx(r.Context())

	raw := r.Header.Get("Authorization")
	if len(raw) > 7 && strings.EqualFold(raw[:7], "Bearer ") {
		raw = strings.TrimSpace(raw[7:])
	} else {
		raw = ""
	}
	if raw == "" {
		v1.WriteDomainError(w, domain.ErrUnauth)
		return
	}

	claims, err := h.Tokens.Parse(r.Context(), domain.Token(raw))
	if err != nil {
		logx.Error(h.Log, reqID, op, "parse token", err)
		v1.WriteDomainError(w, domain.ErrUnauth)
		return
	}

	if err := h.Blacklist.Revoke(r.Context(), claims.JTI, claims.ExpiresAt); err != nil {
		logx.Error(h.Log, reqID, op, "revoke failed", err, "jti", claims.JTI)
		v1.WriteDomainError(w, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "jti", claims.JTI)
	v1.WriteJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}
