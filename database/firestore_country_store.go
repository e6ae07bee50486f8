package database

import (
	"context"
	"fmt"
	"time"

	"olympiad-registration-backend/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreCountryStore gère les documents pays dans Firestore (countries/<id>)
type FirestoreCountryStore struct {
	client *firestore.Client
}

// NewFirestoreCountryStore crée le magasin Firestore
func NewFirestoreCountryStore(client *firestore.Client) *FirestoreCountryStore {
	return &FirestoreCountryStore{client: client}
}

func (s *FirestoreCountryStore) doc(id string) *firestore.DocumentRef {
	return s.client.Collection(CountriesCollection).Doc(id)
}

// GetCountry récupère un pays par son identifiant (nil si absent)
func (s *FirestoreCountryStore) GetCountry(ctx context.Context, id string) (*models.Country, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snap, err := s.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("erreur lors de la lecture du pays %s: %w", id, err)
	}

	var country models.Country
	if err := snap.DataTo(&country); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage du pays %s: %w", id, err)
	}
	country.ID = snap.Ref.ID
	return &country, nil
}

// SavePayment fusionne le patch dans le champ payment
func (s *FirestoreCountryStore) SavePayment(ctx context.Context, id string, patch models.PaymentPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.doc(id).Set(ctx, paymentFields(patch), firestore.MergeAll); err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement du paiement %s: %w", id, err)
	}
	return nil
}

// ListCountries récupère tous les pays (console admin)
func (s *FirestoreCountryStore) ListCountries(ctx context.Context) ([]models.Country, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	iter := s.client.Collection(CountriesCollection).Documents(ctx)
	defer iter.Stop()

	var countries []models.Country
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erreur lors de la liste des pays: %w", err)
		}

		var country models.Country
		if err := snap.DataTo(&country); err != nil {
			return nil, fmt.Errorf("erreur lors du décodage du pays %s: %w", snap.Ref.ID, err)
		}
		country.ID = snap.Ref.ID
		countries = append(countries, country)
	}
	return countries, nil
}

// SetPaidBefore écrit le montant déjà réglé sans toucher au reste de l'inscription
func (s *FirestoreCountryStore) SetPaidBefore(ctx context.Context, id string, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data := map[string]interface{}{
		FieldPayment: map[string]interface{}{
			"registration": map[string]interface{}{"paid_before": amount},
			FieldUpdatedAt: firestore.ServerTimestamp,
		},
		FieldUpdatedAt: firestore.ServerTimestamp,
	}
	if _, err := s.doc(id).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("erreur lors de la mise à jour de paid_before %s: %w", id, err)
	}
	return nil
}

// paymentFields construit les données fusionnées : chaque sous-objet présent remplace l'ancien,
// les autres champs de payment sont conservés
func paymentFields(patch models.PaymentPatch) map[string]interface{} {
	payment := map[string]interface{}{
		FieldUpdatedAt: firestore.ServerTimestamp,
	}
	if patch.Registration != nil {
		payment["registration"] = *patch.Registration
	}
	if patch.Confirmation != nil {
		payment["confirmation"] = *patch.Confirmation
	}
	if patch.Pricing != nil {
		payment["pricing"] = *patch.Pricing
	}
	if patch.Step != nil {
		payment["step"] = int(*patch.Step)
	}

	return map[string]interface{}{
		FieldPayment:   payment,
		FieldUpdatedAt: firestore.ServerTimestamp,
	}
}

// Ping vérifie l'accès à la collection des pays
func (s *FirestoreCountryStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(CountriesCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore injoignable: %w", err)
	}
	return nil
}
