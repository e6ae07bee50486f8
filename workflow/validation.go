package workflow

import (
	"strings"

	"olympiad-registration-backend/models"
	"olympiad-registration-backend/utils"
)

// Taille maximale d'une preuve de paiement
const MaxProofSize = 5 << 20

var proofContentTypes = []string{"image/*", "application/pdf"}

// RegistrationInput représente les champs saisis à l'étape 1.
// La formule, la catégorie et paid_before ne viennent jamais du client.
type RegistrationInput struct {
	NumberOfTeams       *int `json:"number_of_teams"`
	AdditionalObservers *int `json:"additional_observers"`
	SingleRoomRequests  *int `json:"single_room_requests"`
}

// ConfirmationInput représente les champs saisis à l'étape 2
type ConfirmationInput struct {
	TransactionNumber string `json:"transaction_number"`
	OrderNumber       string `json:"order_number"`
	NeedInvoice       bool   `json:"need_invoice"`
	ProofOfPaymentURL string `json:"proof_of_payment_url"`
}

// FormOptions décrit les choix autorisés pour une catégorie de pays
type FormOptions struct {
	TeamChoices  []int `json:"team_choices"`
	MinObservers int   `json:"min_observers"`
}

// OptionsFor retourne les choix du formulaire pour une catégorie
func OptionsFor(status models.CountryStatus) FormOptions {
	opts := FormOptions{TeamChoices: []int{1, 2}}
	if status == models.StatusNotAccredited {
		opts.TeamChoices = []int{1}
	}
	if status == models.StatusFutureHost {
		opts.MinObservers = 1
	}
	return opts
}

func validateRegistration(in RegistrationInput, status models.CountryStatus) error {
	opts := OptionsFor(status)
	maxTeams := opts.TeamChoices[len(opts.TeamChoices)-1]

	fields := utils.CollectFields(
		utils.ValidateIntRange("number_of_teams", in.NumberOfTeams, 1, maxTeams),
		utils.ValidateIntRange("additional_observers", in.AdditionalObservers, opts.MinObservers, utils.NoMax),
		utils.ValidateIntRange("single_room_requests", in.SingleRoomRequests, 0, utils.NoMax),
	)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateConfirmation(in ConfirmationInput, owns func(string) bool) error {
	var proofErr error
	switch {
	case strings.TrimSpace(in.ProofOfPaymentURL) == "":
		proofErr = utils.ValidationError{Field: "proof_of_payment_url", Message: "proof of payment required"}
	case owns != nil && !owns(in.ProofOfPaymentURL):
		proofErr = utils.ValidationError{Field: "proof_of_payment_url", Message: "proof of payment must be uploaded first"}
	}

	fields := utils.CollectFields(
		utils.ValidateRequired("transaction_number", in.TransactionNumber),
		proofErr,
	)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateProof(f ProofFile) error {
	var nameErr error
	if strings.TrimSpace(f.Name) == "" {
		nameErr = utils.ValidationError{Field: "file", Message: "file name is required"}
	}

	fields := utils.CollectFields(
		nameErr,
		utils.ValidateContentType("file", f.ContentType, proofContentTypes...),
		utils.ValidateFileSize("file", f.Size, MaxProofSize),
	)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
