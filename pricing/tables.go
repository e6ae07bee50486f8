package pricing

import (
	"fmt"
	"os"
	"time"

	"olympiad-registration-backend/models"

	"gopkg.in/yaml.v3"
)

// Tables contient la configuration tarifaire injectable (dates de bascule, grilles, listes de pays)
type Tables struct {
	EarlyBirdEnd models.FlexibleTime `yaml:"early_bird_end"`
	RegularEnd   models.FlexibleTime `yaml:"regular_end"`

	// Frais de la première équipe par formule et catégorie (early bird et regular uniquement)
	FirstTeamFees map[models.Plan]map[models.CountryStatus]float64 `yaml:"first_team_fees"`
	// Prix d'affichage de la première équipe pour un pays "général"
	PlanBase map[models.Plan]float64 `yaml:"plan_base"`

	LateSurchargePerTeamPerMonth float64 `yaml:"late_surcharge_per_team_per_month"`
	LateMonthDays                int     `yaml:"late_month_days"`
	ObserverFee                  float64 `yaml:"observer_fee"`
	SingleRoomFee                float64 `yaml:"single_room_fee"`

	AccreditedCountries []string `yaml:"accredited_countries"`
	PreviousHosts       []string `yaml:"previous_hosts"`
	FutureHost          string   `yaml:"future_host"`
}

// DefaultTables retourne la grille intégrée.
// Les listes de pays sont des exemples, à remplacer via PRICING_FILE.
func DefaultTables() Tables {
	return Tables{
		EarlyBirdEnd: models.FlexibleTime{Time: time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)},
		RegularEnd:   models.FlexibleTime{Time: time.Date(2026, 4, 30, 23, 59, 59, 0, time.UTC)},
		FirstTeamFees: map[models.Plan]map[models.CountryStatus]float64{
			models.PlanEarlyBird: {
				models.StatusNotAccredited:   88000,
				models.StatusNotPreviousHost: 83500,
				models.StatusPreviousHost:    75500,
				models.StatusFutureHost:      79500,
			},
			models.PlanRegular: {
				models.StatusNotAccredited:   100000,
				models.StatusNotPreviousHost: 95500,
				models.StatusPreviousHost:    91500,
				models.StatusFutureHost:      93500,
			},
		},
		PlanBase: map[models.Plan]float64{
			models.PlanEarlyBird: 83500,
			models.PlanRegular:   95500,
			models.PlanLate:      95500,
		},
		LateSurchargePerTeamPerMonth: 1000,
		LateMonthDays:                31,
		ObserverFee:                  24000,
		SingleRoomFee:                16000,
		AccreditedCountries: []string{
			"usa", "china", "japan", "uk", "germany", "france", "netherlands",
			"poland", "bulgaria", "hungary", "india", "brazil", "canada", "taiwan",
		},
		PreviousHosts: []string{"usa", "china", "japan", "uk"},
		FutureHost:    "taiwan",
	}
}

// LoadTables charge la grille depuis un fichier YAML, par-dessus les valeurs par défaut
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("erreur lors de la lecture du fichier de tarifs %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return Tables{}, fmt.Errorf("erreur lors du parsing du fichier de tarifs %s: %w", path, err)
	}
	if err := tables.Validate(); err != nil {
		return Tables{}, err
	}
	return tables, nil
}

// Validate vérifie que la grille est complète et cohérente
func (t Tables) Validate() error {
	if t.EarlyBirdEnd.IsZero() || t.RegularEnd.IsZero() {
		return fmt.Errorf("tarifs: early_bird_end et regular_end sont requis")
	}
	if !t.EarlyBirdEnd.Before(t.RegularEnd.Time) {
		return fmt.Errorf("tarifs: early_bird_end doit précéder regular_end")
	}
	for plan, fees := range t.FirstTeamFees {
		if !plan.Valid() {
			return fmt.Errorf("tarifs: formule inconnue %q", plan)
		}
		for status := range fees {
			if !status.Valid() {
				return fmt.Errorf("tarifs: catégorie inconnue %q", status)
			}
		}
	}
	for plan := range t.PlanBase {
		if !plan.Valid() {
			return fmt.Errorf("tarifs: formule inconnue %q", plan)
		}
	}
	for _, plan := range []models.Plan{models.PlanEarlyBird, models.PlanRegular} {
		for _, status := range models.CountryStatuses {
			fee, ok := t.FirstTeamFees[plan][status]
			if !ok {
				return fmt.Errorf("tarifs: frais manquant pour %q / %q", plan, status)
			}
			if fee < 0 {
				return fmt.Errorf("tarifs: frais négatif pour %q / %q", plan, status)
			}
		}
	}
	if t.LateSurchargePerTeamPerMonth < 0 || t.ObserverFee < 0 || t.SingleRoomFee < 0 {
		return fmt.Errorf("tarifs: les frais unitaires ne peuvent pas être négatifs")
	}
	if t.LateMonthDays <= 0 {
		return fmt.Errorf("tarifs: late_month_days doit être positif")
	}
	return nil
}
