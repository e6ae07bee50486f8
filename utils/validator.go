package utils

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"strings"
)

// NoMax désactive la borne haute de ValidateIntRange
const NoMax = -1

// ValidationError représente une erreur de validation
type ValidationError struct {
	Field   string
	Message string
}

// Error implémente l'interface error
func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidateRequired valide qu'un champ n'est pas vide
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s is required", strings.ReplaceAll(field, "_", " "))}
	}
	return nil
}

// ValidateIntRange valide un entier requis compris entre min et max (NoMax pour ignorer max)
func ValidateIntRange(field string, value *int, min, max int) error {
	if value == nil {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s is required", strings.ReplaceAll(field, "_", " "))}
	}
	if *value < min {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d", min)}
	}
	if max != NoMax && *value > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d", max)}
	}
	return nil
}

// ValidateAmount valide un montant requis, fini et positif ou nul
func ValidateAmount(field string, value *float64) error {
	if value == nil {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s is required", strings.ReplaceAll(field, "_", " "))}
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return ValidationError{Field: field, Message: "must be a number"}
	}
	if *value < 0 {
		return ValidationError{Field: field, Message: "must be zero or positive"}
	}
	return nil
}

// ValidateContentType valide un type MIME. Les motifs "type/*" acceptent tout sous-type.
func ValidateContentType(field, contentType string, allowed ...string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ValidationError{Field: field, Message: "unknown file type"}
	}
	for _, a := range allowed {
		if a == mediaType {
			return nil
		}
		if prefix, ok := strings.CutSuffix(a, "/*"); ok && strings.HasPrefix(mediaType, prefix+"/") {
			return nil
		}
	}
	return ValidationError{Field: field, Message: fmt.Sprintf("unsupported file type %s", mediaType)}
}

// ValidateFileSize valide la taille d'un fichier (non vide, au plus max octets)
func ValidateFileSize(field string, size, max int64) error {
	if size <= 0 {
		return ValidationError{Field: field, Message: "file is empty"}
	}
	if size > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("file must not exceed %d MB", max>>20)}
	}
	return nil
}

// CollectFields regroupe les erreurs de validation par champ.
// Seul le premier message d'un champ est conservé, les autres erreurs sont ignorées.
func CollectFields(errs ...error) map[string]string {
	fields := map[string]string{}
	for _, err := range errs {
		var verr ValidationError
		if err == nil || !errors.As(err, &verr) {
			continue
		}
		if _, exists := fields[verr.Field]; !exists {
			fields[verr.Field] = verr.Message
		}
	}
	return fields
}
