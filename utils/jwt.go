package utils

import (
	"context"
	"fmt"
	"time"

	"olympiad-registration-backend/models"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL durée de validité par défaut d'un token émis localement
const DefaultTokenTTL = 24 * time.Hour

// Claims représente les revendications JWT personnalisées
type Claims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Admin      bool   `json:"admin,omitempty"`
	Country    bool   `json:"country,omitempty"`
	CountryKey string `json:"countryKey,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken génère un token JWT portant les revendications de rôle
func GenerateToken(userID, email string, roles models.RoleClaims, secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := &Claims{
		UserID:     userID,
		Email:      email,
		Admin:      roles.Admin,
		Country:    roles.Country,
		CountryKey: roles.CountryKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("erreur lors de la signature du token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken valide un token JWT et retourne les revendications
func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Vérifier la méthode de signature
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature invalide: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("erreur lors du parsing du token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token invalide")
	}

	return claims, nil
}

// JWTVerifier vérifie les tokens HS256 signés avec le secret partagé
type JWTVerifier struct {
	Secret string
}

// Verify valide le token et résout le principal
func (v JWTVerifier) Verify(_ context.Context, tokenString string) (*models.Principal, error) {
	claims, err := ValidateToken(tokenString, v.Secret)
	if err != nil {
		return nil, err
	}
	return models.PrincipalFromClaims(claims.UserID, claims.Email, models.RoleClaims{
		Admin:      claims.Admin,
		Country:    claims.Country,
		CountryKey: claims.CountryKey,
	}), nil
}
