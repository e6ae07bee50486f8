package workflow

import (
	"context"
	"sort"
	"strings"

	"olympiad-registration-backend/models"
	"olympiad-registration-backend/pricing"
	"olympiad-registration-backend/utils"
)

// AdminStore ajoute les lectures et écritures réservées à l'administration
type AdminStore interface {
	Store
	ListCountries(ctx context.Context) ([]models.Country, error)
	// SetPaidBefore écrit payment.registration.paid_before par fusion
	SetPaidBefore(ctx context.Context, id string, amount float64) error
}

// AdminService expose la console de suivi des paiements
type AdminService struct {
	store AdminStore
}

// NewAdminService crée le service d'administration
func NewAdminService(store AdminStore) *AdminService {
	return &AdminService{store: store}
}

func requireAdmin(p *models.Principal) error {
	if !p.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !p.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

// ListPayments retourne une ligne par pays, triée par nom de pays
func (a *AdminService) ListPayments(ctx context.Context, p *models.Principal) ([]models.AdminPaymentRow, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	countries, err := a.store.ListCountries(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}

	rows := make([]models.AdminPaymentRow, 0, len(countries))
	for i := range countries {
		rows = append(rows, models.NewAdminPaymentRow(&countries[i]))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ni, nj := strings.ToLower(rows[i].CountryName), strings.ToLower(rows[j].CountryName)
		if ni != nj {
			return ni < nj
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

// CountryProfile retourne l'état complet du paiement d'un pays
func (a *AdminService) CountryProfile(ctx context.Context, p *models.Principal, id string) (*models.CountryProfile, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return a.profile(ctx, id)
}

func (a *AdminService) profile(ctx context.Context, id string) (*models.CountryProfile, error) {
	country, err := a.store.GetCountry(ctx, id)
	if err != nil {
		return nil, persistenceError(err)
	}
	if country == nil {
		return nil, ErrCountryNotFound
	}
	return &models.CountryProfile{
		ID:          country.ID,
		CountryName: country.CountryName,
		CountryCode: country.CountryCode,
		Payment:     country.Payment,
		UpdatedAt:   country.UpdatedAt,
	}, nil
}

// SetPaidBefore enregistre le montant déjà réglé par un pays (rapprochement bancaire).
// Le snapshot de prix est recalculé à la prochaine étape validée par le pays.
func (a *AdminService) SetPaidBefore(ctx context.Context, p *models.Principal, id string, amount *float64) (*models.CountryProfile, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if fields := utils.CollectFields(utils.ValidateAmount("paid_before", amount)); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	country, err := a.store.GetCountry(ctx, id)
	if err != nil {
		return nil, persistenceError(err)
	}
	if country == nil {
		return nil, ErrCountryNotFound
	}

	if err := a.store.SetPaidBefore(ctx, id, pricing.Round2(*amount)); err != nil {
		return nil, persistenceError(err)
	}
	return a.profile(ctx, id)
}
