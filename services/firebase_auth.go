package services

import (
	"context"
	"fmt"

	"olympiad-registration-backend/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// FirebaseTokenVerifier vérifie les ID tokens Firebase et résout le principal
type FirebaseTokenVerifier struct {
	client *auth.Client
}

// NewFirebaseTokenVerifier crée le vérificateur à partir de l'application Firebase
func NewFirebaseTokenVerifier(ctx context.Context, app *firebase.App) (*FirebaseTokenVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du client Firebase Auth: %w", err)
	}
	return &FirebaseTokenVerifier{client: client}, nil
}

// Verify vérifie le token et mappe les custom claims admin, country et countryKey
func (v *FirebaseTokenVerifier) Verify(ctx context.Context, idToken string) (*models.Principal, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("token Firebase invalide: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	return models.PrincipalFromClaims(token.UID, email, roleClaims(token.Claims)), nil
}

// roleClaims lit les revendications de rôle. Un type inattendu vaut absence.
func roleClaims(claims map[string]interface{}) models.RoleClaims {
	var rc models.RoleClaims
	rc.Admin, _ = claims["admin"].(bool)
	rc.Country, _ = claims["country"].(bool)
	rc.CountryKey, _ = claims["countryKey"].(string)
	return rc
}
