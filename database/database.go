package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB est l'instance de connexion à la base de données MongoDB
var DB *mongo.Database
var Client *mongo.Client

// Connect établit la connexion à la base de données MongoDB
func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("erreur lors de la connexion à MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("erreur lors du ping MongoDB: %w", err)
	}

	Client = client
	DB = client.Database(dbName)

	log.Println("✓ Connexion à MongoDB établie")

	if err = createIndexes(); err != nil {
		return fmt.Errorf("erreur lors de la création des index: %w", err)
	}

	return nil
}

// Ping vérifie que la connexion MongoDB est active
func Ping() error {
	if Client == nil {
		return fmt.Errorf("client MongoDB non initialisé")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return Client.Ping(ctx, nil)
}

// Close ferme la connexion à la base de données
func Close() error {
	if Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return Client.Disconnect(ctx)
	}
	return nil
}

// createIndexes crée les index nécessaires
func createIndexes() error {
	if DB == nil {
		return fmt.Errorf("base MongoDB non initialisée")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	countries := DB.Collection(CountriesCollection)

	// Recherche admin par code pays
	codeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: FieldCountryCode, Value: 1}},
		Options: options.Index().SetSparse(true),
	}
	if _, err := countries.Indexes().CreateOne(ctx, codeIndex); err != nil {
		return fmt.Errorf("erreur lors de la création de l'index country_code: %w", err)
	}

	// Tableau de suivi trié par étape
	stepIndex := mongo.IndexModel{
		Keys: bson.D{{Key: FieldPaymentStep, Value: 1}},
	}
	if _, err := countries.Indexes().CreateOne(ctx, stepIndex); err != nil {
		return fmt.Errorf("erreur lors de la création de l'index payment.step: %w", err)
	}

	log.Println("✓ Index MongoDB créés")
	return nil
}
