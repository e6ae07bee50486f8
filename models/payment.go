package models

import "time"

// Plan représente la formule tarifaire déterminée par la date
type Plan string

const (
	PlanEarlyBird Plan = "early bird"
	PlanRegular   Plan = "regular"
	PlanLate      Plan = "late"
)

// Plans liste les formules dans l'ordre chronologique
var Plans = []Plan{PlanEarlyBird, PlanRegular, PlanLate}

// Valid indique si la formule est connue
func (p Plan) Valid() bool {
	switch p {
	case PlanEarlyBird, PlanRegular, PlanLate:
		return true
	}
	return false
}

// CountryStatus représente la catégorie tarifaire d'un pays
type CountryStatus string

const (
	StatusNotAccredited   CountryStatus = "Not accredited"
	StatusNotPreviousHost CountryStatus = "Not a Previous Host"
	StatusPreviousHost    CountryStatus = "Previous Host"
	StatusFutureHost      CountryStatus = "Future Host"
)

// CountryStatuses liste toutes les catégories de pays
var CountryStatuses = []CountryStatus{
	StatusNotAccredited,
	StatusNotPreviousHost,
	StatusPreviousHost,
	StatusFutureHost,
}

// Valid indique si la catégorie est connue
func (s CountryStatus) Valid() bool {
	switch s {
	case StatusNotAccredited, StatusNotPreviousHost, StatusPreviousHost, StatusFutureHost:
		return true
	}
	return false
}

// PaymentStep représente l'étape courante du parcours de paiement
type PaymentStep int

const (
	StepRegistrationDetail PaymentStep = iota
	StepPaymentConfirmation
	StepWaitingForVerification
	StepPaymentCompleted
)

func (s PaymentStep) String() string {
	switch s {
	case StepRegistrationDetail:
		return "registration_detail"
	case StepPaymentConfirmation:
		return "payment_confirmation"
	case StepWaitingForVerification:
		return "waiting_for_verification"
	case StepPaymentCompleted:
		return "payment_completed"
	}
	return "unknown"
}

// RegistrationDetail représente le détail d'inscription d'un pays (étape 1)
type RegistrationDetail struct {
	Plan                Plan          `json:"plan" bson:"plan" firestore:"plan"`
	CountryStatus       CountryStatus `json:"country_status" bson:"country_status" firestore:"country_status"`
	NumberOfTeams       int           `json:"number_of_teams" bson:"number_of_teams" firestore:"number_of_teams"`
	AdditionalObservers int           `json:"additional_observers" bson:"additional_observers" firestore:"additional_observers"`
	SingleRoomRequests  int           `json:"single_room_requests" bson:"single_room_requests" firestore:"single_room_requests"`
	PaidBefore          float64       `json:"paid_before" bson:"paid_before" firestore:"paid_before"`
}

// PaymentConfirmation représente la preuve de virement (étape 2)
type PaymentConfirmation struct {
	TransactionNumber string `json:"transaction_number" bson:"transaction_number" firestore:"transaction_number"`
	OrderNumber       string `json:"order_number,omitempty" bson:"order_number,omitempty" firestore:"order_number,omitempty"`
	NeedInvoice       bool   `json:"need_invoice" bson:"need_invoice" firestore:"need_invoice"`
	ProofOfPaymentURL string `json:"proof_of_payment_url" bson:"proof_of_payment_url" firestore:"proof_of_payment_url"`
}

// PriceBreakdown est le détail des montants calculés (jamais une entité à part entière)
type PriceBreakdown struct {
	PlanBaseFirstTeam         float64 `json:"planBaseFirstTeam" bson:"planBaseFirstTeam" firestore:"planBaseFirstTeam"`
	FirstTeamAfterAdjustments float64 `json:"firstTeamAfterAdjustments" bson:"firstTeamAfterAdjustments" firestore:"firstTeamAfterAdjustments"`
	TeamsCost                 float64 `json:"teamsCost" bson:"teamsCost" firestore:"teamsCost"`
	ObserversCost             float64 `json:"observersCost" bson:"observersCost" firestore:"observersCost"`
	SingleRoomsCost           float64 `json:"singleRoomsCost" bson:"singleRoomsCost" firestore:"singleRoomsCost"`
	Subtotal                  float64 `json:"subtotal" bson:"subtotal" firestore:"subtotal"`
	PaidBefore                float64 `json:"paid_before" bson:"paid_before" firestore:"paid_before"`
	TotalBank                 float64 `json:"totalBank" bson:"totalBank" firestore:"totalBank"`
}

// PaymentState est le sous-document "payment" persisté pour un pays
type PaymentState struct {
	Registration *RegistrationDetail  `json:"registration,omitempty" bson:"registration,omitempty" firestore:"registration,omitempty"`
	Confirmation *PaymentConfirmation `json:"confirmation,omitempty" bson:"confirmation,omitempty" firestore:"confirmation,omitempty"`
	Pricing      *PriceBreakdown      `json:"pricing,omitempty" bson:"pricing,omitempty" firestore:"pricing,omitempty"`
	Step         PaymentStep          `json:"step" bson:"step" firestore:"step"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at,omitempty" firestore:"updated_at,omitempty"`
}

// PaymentPatch décrit une écriture fusionnée : un champ nil n'est pas modifié
type PaymentPatch struct {
	Registration *RegistrationDetail
	Confirmation *PaymentConfirmation
	Pricing      *PriceBreakdown
	Step         *PaymentStep
}

// IsEmpty indique si le patch ne modifie rien
func (p PaymentPatch) IsEmpty() bool {
	return p.Registration == nil && p.Confirmation == nil && p.Pricing == nil && p.Step == nil
}
