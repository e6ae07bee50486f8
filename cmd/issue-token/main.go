package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"olympiad-registration-backend/models"
	"olympiad-registration-backend/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "identifiant du compte (document countries/<id>)")
	email := flag.String("email", "", "email porté par le token")
	country := flag.String("country", "", "clé du pays (ex: japan) pour un compte pays")
	admin := flag.Bool("admin", false, "émettre un token administrateur")
	ttl := flag.Duration("ttl", utils.DefaultTokenTTL, "durée de validité")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("❌ JWT_SECRET est requis")
	}
	if *userID == "" {
		log.Fatal("❌ -user est requis")
	}
	if !*admin && *country == "" {
		log.Fatal("❌ -country ou -admin est requis")
	}

	roles := models.RoleClaims{Admin: *admin, Country: *country != "", CountryKey: *country}
	principal := models.PrincipalFromClaims(*userID, *email, roles)

	token, err := utils.GenerateToken(*userID, *email, roles, secret, *ttl)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	log.Printf("🔐 Token %s émis pour %s (expire dans %s)", principal.Role, *userID, ttl.Round(time.Minute))
	fmt.Println(token)
}
