package config

import (
	"fmt"
	"os"
	"strings"

	"olympiad-registration-backend/models"

	"github.com/joho/godotenv"
)

// Valeurs acceptées pour les sélecteurs de fournisseurs
const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"

	UploadCloudinary = "cloudinary"
	UploadFirebase   = "firebase"
)

// Config contient toutes les configurations de l'application
type Config struct {
	Port        string
	Host        string
	Environment string
	CORSOrigins []string

	StoreBackend string
	MongoURI     string
	MongoDB      string

	AuthProvider string
	JWTSecret    string

	FirebaseCredentialsFile string
	FirebaseProjectID       string
	FirebaseStorageBucket   string

	UploadProvider         string
	CloudinaryCloudName    string
	CloudinaryUploadPreset string

	SlackWebhookURL string

	// Tarifs : fichier YAML optionnel, puis surcharge des dates de bascule
	PricingFile  string
	EarlyBirdEnd models.FlexibleTime
	RegularEnd   models.FlexibleTime
}

// Load charge la configuration depuis les variables d'environnement
func Load() (*Config, error) {
	// Charger le fichier .env s'il existe
	_ = godotenv.Load()

	config := &Config{
		Port:                    getEnv("PORT", "8090"),
		Host:                    getEnv("HOST", "0.0.0.0"), // 0.0.0.0 pour serveur cloud
		Environment:             getEnv("ENVIRONMENT", "development"),
		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "olympiad_registration"),
		AuthProvider:            strings.ToLower(getEnv("AUTH_PROVIDER", AuthJWT)),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebase-service-account.json"),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		UploadProvider:          strings.ToLower(getEnv("UPLOAD_PROVIDER", UploadCloudinary)),
		CloudinaryCloudName:     getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryUploadPreset:  getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		SlackWebhookURL:         getEnv("SLACK_WEBHOOK_URL", ""),
		PricingFile:             getEnv("PRICING_FILE", ""),
	}

	// Parser les origines CORS
	origins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	originsList := strings.Split(origins, ",")
	config.CORSOrigins = make([]string, 0, len(originsList))
	for _, origin := range originsList {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			config.CORSOrigins = append(config.CORSOrigins, trimmed)
		}
	}

	var err error
	if config.EarlyBirdEnd, err = models.ParseFlexibleTime(os.Getenv("EARLY_BIRD_END")); err != nil {
		return nil, fmt.Errorf("EARLY_BIRD_END: %w", err)
	}
	if config.RegularEnd, err = models.ParseFlexibleTime(os.Getenv("REGULAR_END")); err != nil {
		return nil, fmt.Errorf("REGULAR_END: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate vérifie les exigences propres à chaque fournisseur
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI est requis")
		}
	case StoreFirestore:
	default:
		return fmt.Errorf("STORE_BACKEND invalide: %s", c.StoreBackend)
	}

	switch c.AuthProvider {
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET est requis")
		}
	case AuthFirebase:
	default:
		return fmt.Errorf("AUTH_PROVIDER invalide: %s", c.AuthProvider)
	}

	switch c.UploadProvider {
	case UploadCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryUploadPreset == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME et CLOUDINARY_UPLOAD_PRESET sont requis")
		}
	case UploadFirebase:
		if c.FirebaseStorageBucket == "" {
			return fmt.Errorf("FIREBASE_STORAGE_BUCKET est requis")
		}
	default:
		return fmt.Errorf("UPLOAD_PROVIDER invalide: %s", c.UploadProvider)
	}

	if !c.EarlyBirdEnd.IsZero() && !c.RegularEnd.IsZero() && !c.EarlyBirdEnd.Before(c.RegularEnd.Time) {
		return fmt.Errorf("EARLY_BIRD_END doit précéder REGULAR_END")
	}
	return nil
}

// NeedsFirebase indique si un fournisseur configuré s'appuie sur le SDK Firebase
func (c *Config) NeedsFirebase() bool {
	return c.StoreBackend == StoreFirestore || c.AuthProvider == AuthFirebase || c.UploadProvider == UploadFirebase
}

// getEnv récupère une variable d'environnement avec une valeur par défaut
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
