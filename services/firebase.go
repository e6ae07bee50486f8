package services

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FirebaseOptions regroupe les paramètres d'initialisation du SDK Admin
type FirebaseOptions struct {
	CredentialsFile string
	ProjectID       string
	StorageBucket   string
}

// NewFirebaseApp initialise le SDK Firebase Admin
func NewFirebaseApp(ctx context.Context, opts FirebaseOptions) (*firebase.App, error) {
	conf := &firebase.Config{
		ProjectID:     opts.ProjectID,
		StorageBucket: opts.StorageBucket,
	}

	var clientOpt option.ClientOption

	// FIREBASE_CREDENTIALS_JSON prioritaire (déploiement cloud)
	credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
	if credentialsJSON != "" {
		log.Println("📦 Utilisation des credentials Firebase depuis FIREBASE_CREDENTIALS_JSON")
		clientOpt = option.WithCredentialsJSON([]byte(credentialsJSON))
	} else {
		log.Printf("📦 Utilisation des credentials Firebase depuis le fichier: %s", opts.CredentialsFile)
		clientOpt = option.WithCredentialsFile(opts.CredentialsFile)
	}

	app, err := firebase.NewApp(ctx, conf, clientOpt)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'initialisation de Firebase: %w", err)
	}

	log.Println("✓ Firebase Admin initialisé")
	return app, nil
}
