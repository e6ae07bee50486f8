package pricing

import (
	"math"
	"time"

	"olympiad-registration-backend/models"
)

// DecidePlan choisit la formule selon la date courante et les deux dates de bascule
func DecidePlan(now, earlyEnd, regularEnd time.Time) models.Plan {
	if !now.After(earlyEnd) {
		return models.PlanEarlyBird
	}
	if !now.After(regularEnd) {
		return models.PlanRegular
	}
	return models.PlanLate
}

// DecideCountryStatus classe un pays.
// Ordre de priorité : futur hôte, puis accréditation, puis ancien hôte.
func DecideCountryStatus(countryKey string, accredited, previousHosts []string, futureHost string) models.CountryStatus {
	if futureHost != "" && countryKey == futureHost {
		return models.StatusFutureHost
	}
	if !contains(accredited, countryKey) {
		return models.StatusNotAccredited
	}
	if contains(previousHosts, countryKey) {
		return models.StatusPreviousHost
	}
	return models.StatusNotPreviousHost
}

// MonthsLate retourne le nombre de mois de retard après la date limite "regular".
// Arrondi au mois le plus proche, minimum 1 dès que la date est dépassée.
func MonthsLate(now, regularEnd time.Time, monthDays int) int {
	if !now.After(regularEnd) {
		return 0
	}
	month := time.Duration(monthDays) * 24 * time.Hour
	raw := float64(now.Sub(regularEnd)) / float64(month)
	rounded := int(math.Floor(raw + 0.5))
	if rounded < 1 {
		return 1
	}
	return rounded
}

func contains(list []string, key string) bool {
	if key == "" {
		return false
	}
	for _, k := range list {
		if k == key {
			return true
		}
	}
	return false
}
