package models

import "time"

// Country représente le document d'un pays participant
// L'identifiant est celui du compte pays (principal)
type Country struct {
	ID          string        `json:"id" bson:"_id" firestore:"-"`
	CountryName string        `json:"country_name,omitempty" bson:"country_name,omitempty" firestore:"country_name,omitempty"`
	CountryCode string        `json:"country_code,omitempty" bson:"country_code,omitempty" firestore:"country_code,omitempty"`
	Payment     *PaymentState `json:"payment,omitempty" bson:"payment,omitempty" firestore:"payment,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at,omitempty" firestore:"updated_at,omitempty"`
}

// DisplayName retourne le nom du pays, ou son identifiant à défaut
func (c *Country) DisplayName() string {
	if c.CountryName != "" {
		return c.CountryName
	}
	return c.ID
}

// AdminPaymentRow est une ligne du tableau des paiements côté admin
type AdminPaymentRow struct {
	ID                string      `json:"id"`
	CountryName       string      `json:"country_name"`
	CountryCode       string      `json:"country_code"`
	Step              PaymentStep `json:"step"`
	Plan              Plan        `json:"plan,omitempty"`
	Subtotal          *float64    `json:"subtotal,omitempty"`
	TotalBank         *float64    `json:"totalBank,omitempty"`
	PaidBefore        float64     `json:"paid_before"`
	NeedInvoice       bool        `json:"need_invoice"`
	TransactionNumber string      `json:"transaction_number,omitempty"`
	UpdatedAt         *time.Time  `json:"updated_at,omitempty"`
}

// NewAdminPaymentRow construit la ligne admin à partir du document pays
func NewAdminPaymentRow(c *Country) AdminPaymentRow {
	row := AdminPaymentRow{
		ID:          c.ID,
		CountryName: c.DisplayName(),
		CountryCode: c.CountryCode,
	}
	if row.CountryCode == "" {
		row.CountryCode = "—"
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		row.UpdatedAt = &updated
	}

	p := c.Payment
	if p == nil {
		return row
	}
	row.Step = p.Step
	if p.Registration != nil {
		row.Plan = p.Registration.Plan
		row.PaidBefore = p.Registration.PaidBefore
	}
	if p.Pricing != nil {
		subtotal, total := p.Pricing.Subtotal, p.Pricing.TotalBank
		row.Subtotal = &subtotal
		row.TotalBank = &total
	}
	if p.Confirmation != nil {
		row.NeedInvoice = p.Confirmation.NeedInvoice
		row.TransactionNumber = p.Confirmation.TransactionNumber
	}
	return row
}

// CountryProfile est la vue admin détaillée d'un pays
type CountryProfile struct {
	ID          string        `json:"id"`
	CountryName string        `json:"country_name,omitempty"`
	CountryCode string        `json:"country_code,omitempty"`
	Payment     *PaymentState `json:"payment,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PaidBeforeRequest représente la requête admin de rapprochement des paiements antérieurs
type PaidBeforeRequest struct {
	PaidBefore *float64 `json:"paid_before"`
}
