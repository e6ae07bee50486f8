package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Erreurs du parcours de paiement. Les messages sont affichés tels quels au client.
var (
	ErrNotAuthenticated        = errors.New("Not authenticated")
	ErrNoCountry               = errors.New("no country is attached to this account")
	ErrNotAdmin                = errors.New("admin access required")
	ErrCountryNotFound         = errors.New("country not found")
	ErrConfirmationRequired    = errors.New("registration details must be confirmed before saving")
	ErrAcknowledgementRequired = errors.New("the non-refundable payment notice must be acknowledged")
	ErrInvalidTransition       = errors.New("this action is not available at the current payment step")
	ErrTransitionInProgress    = errors.New("another update is already in progress for this country")
	ErrPersistence             = errors.New("could not save payment data, please retry")
	ErrUpload                  = errors.New("could not upload the proof of payment, please retry")
)

// ValidationError regroupe les erreurs de validation par champ
type ValidationError struct {
	Fields map[string]string
}

// Error implémente l'interface error
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// failureReason donne le libellé de métrique associé à une erreur
func failureReason(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrNoCountry), errors.Is(err, ErrNotAdmin):
		return "auth"
	case errors.Is(err, ErrCountryNotFound):
		return "not_found"
	case errors.Is(err, ErrConfirmationRequired):
		return "confirmation"
	case errors.Is(err, ErrAcknowledgementRequired):
		return "acknowledgement"
	case errors.Is(err, ErrInvalidTransition):
		return "transition"
	case errors.Is(err, ErrTransitionInProgress):
		return "in_progress"
	case errors.Is(err, ErrUpload):
		return "upload"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	}
	return "internal"
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
