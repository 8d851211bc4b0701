package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/popis/internal/auth"
	"github.com/erazemk/popis/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Store     *store.Store
	JWTSecret string
}

type loginRequest struct {
	Passcode string `json:"passcode"`
	Client   string `json:"client"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasscodeRequest struct {
	CurrentPasscode string `json:"current_passcode"`
	NewPasscode     string `json:"new_passcode"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Passcode == "" {
		jsonError(w, http.StatusBadRequest, "passcode required")
		return
	}

	hash, err := h.Store.PasscodeHash(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if hash == "" {
		jsonError(w, http.StatusForbidden, "no passcode set, run 'popis passcode' first")
		return
	}

	if err := auth.CheckPasscode(hash, req.Passcode); err != nil {
		slog.Warn("login failed", "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid passcode")
		return
	}

	client := strings.TrimSpace(req.Client)
	if client == "" {
		client = r.UserAgent()
	}

	token, err := auth.GenerateToken(h.JWTSecret, client)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("client logged in", "client", client)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if claims.ID != "" && claims.ExpiresAt != nil {
		if err := h.Store.RevokeToken(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			slog.Error("failed to revoke token", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to logout")
			return
		}
	}

	slog.Info("client logged out", "client", claims.Client)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePasscode handles PUT /api/auth/passcode.
func (h *AuthHandler) ChangePasscode(w http.ResponseWriter, r *http.Request) {
	var req changePasscodeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPasscode == "" || req.NewPasscode == "" {
		jsonError(w, http.StatusBadRequest, "current and new passcode required")
		return
	}

	hash, err := h.Store.PasscodeHash(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := auth.CheckPasscode(hash, req.CurrentPasscode); err != nil {
		jsonError(w, http.StatusUnauthorized, "current passcode is incorrect")
		return
	}

	newHash, err := auth.HashPasscode(req.NewPasscode)
	if errors.Is(err, auth.ErrPasscodeTooShort) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash passcode")
		return
	}

	if err := h.Store.SetPasscodeHash(r.Context(), newHash); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update passcode")
		return
	}

	slog.Info("passcode changed")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "passcode updated"})
}
