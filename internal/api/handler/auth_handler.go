package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"blogcore/internal/api/middleware"
	"blogcore/internal/app/service"
	"blogcore/internal/common"
	"blogcore/internal/common/security"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	tokens      *security.TokenService
}

func NewAuthHandler(authService *service.AuthService, tokens *security.TokenService) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/register-admin", h.registerAdmin)
	r.Post("/login", h.login)
}

func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.me)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.RegisterAdmin(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	h.setAuthCookie(w, resp.Token)
	common.RespondWithMessage(w, http.StatusCreated, "Admin user created successfully")
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		status := common.HTTPStatusFromError(err)
		if status == http.StatusUnauthorized {
			// Deliberately uninformative to resist account enumeration.
			common.RespondWithError(w, status, "invalid email or password")
			return
		}
		common.RespondWithError(w, status, err.Error())
		return
	}

	h.setAuthCookie(w, resp.Token)
	common.RespondWithMessage(w, http.StatusOK, "Login successful")
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	resp, err := h.authService.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

// setAuthCookie attaches the session cookie: HTTP-only, secure, strict
// same-site, expiring together with the token.
func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokens.Lifetime()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
