package models

import "strings"

// Role représente le rôle résolu du principal courant
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleAdmin     Role = "admin"
	RoleCountry   Role = "country"
)

// Principal représente l'utilisateur authentifié fourni par le fournisseur d'identité
type Principal struct {
	ID         string `json:"id"`
	Email      string `json:"email,omitempty"`
	Role       Role   `json:"role"`
	CountryKey string `json:"country_key,omitempty"`
}

// RoleClaims sont les revendications booléennes posées par le fournisseur d'identité
type RoleClaims struct {
	Admin      bool   `json:"admin,omitempty"`
	Country    bool   `json:"country,omitempty"`
	CountryKey string `json:"countryKey,omitempty"`
}

// PrincipalFromClaims résout le rôle typé à partir des revendications.
// Toute revendication incomplète donne un principal anonyme.
func PrincipalFromClaims(id, email string, claims RoleClaims) *Principal {
	p := &Principal{
		ID:         strings.TrimSpace(id),
		Email:      email,
		Role:       RoleAnonymous,
		CountryKey: strings.TrimSpace(claims.CountryKey),
	}
	if p.ID == "" {
		p.CountryKey = ""
		return p
	}

	switch {
	case claims.Admin:
		p.Role = RoleAdmin
	case claims.Country && p.CountryKey != "":
		p.Role = RoleCountry
	default:
		p.CountryKey = ""
	}
	return p
}

// IsAuthenticated indique si le principal n'est pas anonyme
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.Role != RoleAnonymous && p.ID != ""
}

// IsAdmin indique si le principal est administrateur
func (p *Principal) IsAdmin() bool {
	return p.IsAuthenticated() && p.Role == RoleAdmin
}

// HasCountry indique si le principal est rattaché à un pays
func (p *Principal) HasCountry() bool {
	return p.IsAuthenticated() && p.CountryKey != ""
}
