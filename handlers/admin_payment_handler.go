package handlers

import (
	"log"
	"net/http"

	"olympiad-registration-backend/middleware"
	"olympiad-registration-backend/models"
	"olympiad-registration-backend/utils"
	"olympiad-registration-backend/workflow"
)

// AdminPaymentHandler expose la console de suivi des paiements
type AdminPaymentHandler struct {
	service *workflow.AdminService
}

// NewAdminPaymentHandler crée un nouveau AdminPaymentHandler
func NewAdminPaymentHandler(service *workflow.AdminService) *AdminPaymentHandler {
	return &AdminPaymentHandler{service: service}
}

// ListPayments retourne le tableau des paiements (GET /api/admin/payments)
func (h *AdminPaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	rows, err := h.service.ListPayments(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"payments": rows,
		"count":    len(rows),
	})
}

// CountryPayment retourne le détail d'un pays (GET /api/admin/countries/{country_id}/payment)
func (h *AdminPaymentHandler) CountryPayment(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	id, ok := CountryIDVar(w, r)
	if !ok {
		return
	}
	profile, err := h.service.CountryProfile(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, profile)
}

// SetPaidBefore enregistre le montant déjà réglé (PUT /api/admin/countries/{country_id}/paid-before)
func (h *AdminPaymentHandler) SetPaidBefore(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	id, ok := CountryIDVar(w, r)
	if !ok {
		return
	}
	var req models.PaidBeforeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	profile, err := h.service.SetPaidBefore(r.Context(), p, id, req.PaidBefore)
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}

	log.Printf("✓ paid_before mis à jour pour %s par %s: %.2f", id, p.ID, *req.PaidBefore)
	utils.RespondSuccess(w, "Paid before updated", profile)
}
