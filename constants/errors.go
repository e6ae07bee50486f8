package constants

// Messages d'erreur HTTP courants (affichés au client)
const (
	ErrMethodNotAllowed  = "Method not allowed"
	ErrServerError       = "Server error, please retry"
	ErrInvalidJSONBody   = "Invalid JSON body"
	ErrCountryIDRequired = "Country ID is required"
	ErrInvalidMultipart  = "Invalid multipart form"
	ErrFileRequired      = "proof of payment file is required"
)

// En-têtes HTTP
const (
	HeaderContentType     = "Content-Type"
	HeaderApplicationJSON = "application/json"
)
