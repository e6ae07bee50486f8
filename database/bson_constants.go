package database

// Noms de collection et chemins de champs (évite les littéraux dupliqués)
const (
	CountriesCollection = "countries"

	FieldCountryCode         = "country_code"
	FieldCountryName         = "country_name"
	FieldUpdatedAt           = "updated_at"
	FieldPayment             = "payment"
	FieldPaymentRegistration = "payment.registration"
	FieldPaymentConfirmation = "payment.confirmation"
	FieldPaymentPricing      = "payment.pricing"
	FieldPaymentStep         = "payment.step"
	FieldPaymentUpdatedAt    = "payment.updated_at"
	FieldPaidBefore          = "payment.registration.paid_before"
)

// Opérateurs de mise à jour MongoDB
const (
	BSONSet         = "$set"
	BSONCurrentDate = "$currentDate"
)
