package handlers

import (
	"errors"
	"log"
	"net/http"

	"olympiad-registration-backend/constants"
	"olympiad-registration-backend/middleware"
	"olympiad-registration-backend/utils"
	"olympiad-registration-backend/workflow"
)

// PaymentHandler expose le parcours d'inscription et de paiement d'un pays
type PaymentHandler struct {
	service *workflow.Service
}

// NewPaymentHandler crée un nouveau PaymentHandler
func NewPaymentHandler(service *workflow.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type saveRegistrationRequest struct {
	workflow.RegistrationInput
	Confirmed bool `json:"confirmed"`
}

type submitConfirmationRequest struct {
	workflow.ConfirmationInput
	Acknowledged bool `json:"acknowledged"`
}

// Load reprend le parcours (GET /api/payment)
func (h *PaymentHandler) Load(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	view, err := h.service.Load(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, view)
}

// Preview recalcule les montants pendant la saisie (POST /api/payment/preview)
func (h *PaymentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var in workflow.RegistrationInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	breakdown, err := h.service.Preview(r.Context(), middleware.GetPrincipal(r.Context()), in)
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, breakdown)
}

// Review retourne le récapitulatif avant confirmation (POST /api/payment/registration/review)
func (h *PaymentHandler) Review(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var in workflow.RegistrationInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	review, err := h.service.ReviewRegistration(r.Context(), middleware.GetPrincipal(r.Context()), in)
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, review)
}

// SaveRegistration enregistre l'étape 1 (POST /api/payment/registration)
func (h *PaymentHandler) SaveRegistration(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req saveRegistrationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	view, err := h.service.SaveRegistrationDetails(r.Context(), p, req.RegistrationInput, req.Confirmed)
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}

	log.Printf("✓ Inscription enregistrée: %s (%d équipe(s), total %.2f)", p.CountryKey, view.Form.NumberOfTeams, view.Pricing.TotalBank)
	utils.RespondSuccess(w, "Registration details saved", view)
}

// UploadProof reçoit la preuve de paiement (POST /api/payment/proof, champ "file")
func (h *PaymentHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	// Marge au-delà de la limite pour laisser le service signaler la taille
	r.Body = http.MaxBytesReader(w, r.Body, workflow.MaxProofSize+(1<<20))
	if err := r.ParseMultipartForm(workflow.MaxProofSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondValidationError(w, map[string]string{"file": "file must not exceed 5 MB"})
			return
		}
		log.Printf("Erreur parsing form: %v", err)
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidMultipart)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondValidationError(w, map[string]string{"file": constants.ErrFileRequired})
		return
	}
	defer file.Close()

	p := middleware.GetPrincipal(r.Context())
	log.Printf("📤 Upload preuve de paiement pour %s (%s, %d bytes)", p.CountryKey, header.Header.Get(constants.HeaderContentType), header.Size)

	url, err := h.service.UploadProof(r.Context(), p, workflow.ProofFile{
		Reader:      file,
		Name:        header.Filename,
		ContentType: header.Header.Get(constants.HeaderContentType),
		Size:        header.Size,
	})
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}

	utils.RespondSuccess(w, "Proof of payment uploaded", map[string]string{"proof_of_payment_url": url})
}

// SubmitConfirmation enregistre l'étape 2 (POST /api/payment/confirmation)
func (h *PaymentHandler) SubmitConfirmation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req submitConfirmationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	view, err := h.service.SubmitPaymentConfirmation(r.Context(), p, req.ConfirmationInput, req.Acknowledged)
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}

	log.Printf("✓ Confirmation de paiement reçue: %s (transaction %s)", p.CountryKey, view.Confirmation.TransactionNumber)
	utils.RespondSuccess(w, "Payment confirmation submitted", view)
}

// Finish termine le parcours (POST /api/payment/finish)
func (h *PaymentHandler) Finish(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	view, err := h.service.Finish(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		respondWorkflowError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, view)
}
