package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"olympiad-registration-backend/constants"
	"olympiad-registration-backend/utils"
	"olympiad-registration-backend/workflow"

	"github.com/gorilla/mux"
)

// RequireMethod vérifie que la méthode HTTP est correcte. Retourne false et écrit l'erreur si non.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		utils.RespondError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return false
	}
	return true
}

// DecodeJSON décode le body dans dst. Retourne false et écrit l'erreur si le JSON est invalide.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return false
	}
	return true
}

// CountryIDVar extrait country_id depuis les vars de l'URL.
func CountryIDVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["country_id"])
	if id == "" {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrCountryIDRequired)
		return "", false
	}
	return id, true
}

// respondWorkflowError traduit une erreur du parcours en réponse HTTP
func respondWorkflowError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondValidationError(w, verr.Fields)
	case errors.Is(err, workflow.ErrNotAuthenticated):
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, workflow.ErrNoCountry), errors.Is(err, workflow.ErrNotAdmin):
		utils.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, workflow.ErrCountryNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrConfirmationRequired), errors.Is(err, workflow.ErrAcknowledgementRequired):
		utils.RespondError(w, http.StatusPreconditionRequired, err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrTransitionInProgress):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrUpload):
		log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
		utils.RespondError(w, http.StatusBadGateway, workflow.ErrUpload.Error())
	case errors.Is(err, workflow.ErrPersistence):
		log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
		utils.RespondError(w, http.StatusInternalServerError, workflow.ErrPersistence.Error())
	default:
		log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
	}
}
