package handler

import (
	"encoding/json"
	"net/http"

	"blogcore/internal/app/service"
	"blogcore/internal/common"

	"github.com/go-chi/chi/v5"
)

// AdminSetupHandler exposes the one-time first-admin provisioning
// operation. The router only mounts it when admin setup is enabled in
// configuration; after initial setup the deployment should turn it off.
type AdminSetupHandler struct {
	bootstrapService *service.BootstrapService
}

func NewAdminSetupHandler(bootstrapService *service.BootstrapService) *AdminSetupHandler {
	return &AdminSetupHandler{bootstrapService: bootstrapService}
}

func (h *AdminSetupHandler) RegisterRoutes(r chi.Router) {
	r.Post("/create-first-admin", h.createFirstAdmin)
}

type firstAdminResponse struct {
	Message     string               `json:"message"`
	Credentials firstAdminCredential `json:"credentials"`
}

type firstAdminCredential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminSetupHandler) createFirstAdmin(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFirstAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.bootstrapService.CreateFirstAdmin(r.Context(), req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	common.RespondWithJSON(w, http.StatusCreated, firstAdminResponse{
		Message: "Admin user created successfully",
		Credentials: firstAdminCredential{
			Email:    req.Email,
			Password: "[HIDDEN]", // Never echo the actual password
		},
	})
}
