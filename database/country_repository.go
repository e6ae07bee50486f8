package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"olympiad-registration-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CountryRepository gère les documents pays dans MongoDB
type CountryRepository struct {
	collection *mongo.Collection
}

// NewCountryRepository crée un nouveau repository pays
func NewCountryRepository(db *mongo.Database) *CountryRepository {
	return &CountryRepository{
		collection: db.Collection(CountriesCollection),
	}
}

// GetCountry récupère un pays par son identifiant (nil si absent)
func (r *CountryRepository) GetCountry(ctx context.Context, id string) (*models.Country, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var country models.Country
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&country)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("erreur lors de la lecture du pays %s: %w", id, err)
	}
	return &country, nil
}

// SavePayment fusionne le patch dans le sous-document payment (upsert)
func (r *CountryRepository) SavePayment(ctx context.Context, id string, patch models.PaymentPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, paymentUpdate(patch), options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement du paiement %s: %w", id, err)
	}
	return nil
}

// ListCountries récupère tous les pays (console admin)
func (r *CountryRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: FieldCountryName, Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la liste des pays: %w", err)
	}
	defer cursor.Close(ctx)

	var countries []models.Country
	if err = cursor.All(ctx, &countries); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des pays: %w", err)
	}
	return countries, nil
}

// SetPaidBefore écrit le montant déjà réglé sans toucher au reste de l'inscription
func (r *CountryRepository) SetPaidBefore(ctx context.Context, id string, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		BSONSet: bson.M{FieldPaidBefore: amount},
		BSONCurrentDate: bson.M{
			FieldPaymentUpdatedAt: true,
			FieldUpdatedAt:        true,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("erreur lors de la mise à jour de paid_before %s: %w", id, err)
	}
	return nil
}

// paymentUpdate construit le $set sur chemins pointés : seuls les champs du patch sont écrits.
// Les horodatages sont posés par le serveur via $currentDate.
func paymentUpdate(patch models.PaymentPatch) bson.M {
	set := bson.M{}
	if patch.Registration != nil {
		set[FieldPaymentRegistration] = patch.Registration
	}
	if patch.Confirmation != nil {
		set[FieldPaymentConfirmation] = patch.Confirmation
	}
	if patch.Pricing != nil {
		set[FieldPaymentPricing] = patch.Pricing
	}
	if patch.Step != nil {
		set[FieldPaymentStep] = *patch.Step
	}

	return bson.M{
		BSONSet: set,
		BSONCurrentDate: bson.M{
			FieldPaymentUpdatedAt: true,
			FieldUpdatedAt:        true,
		},
	}
}
