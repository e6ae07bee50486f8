package pricing

import (
	"math"
	"time"

	"olympiad-registration-backend/models"
)

// Engine calcule les montants à partir d'une grille et d'une horloge
type Engine struct {
	Tables Tables
	Now    func() time.Time
}

// NewEngine crée un moteur branché sur l'horloge système
func NewEngine(tables Tables) *Engine {
	return &Engine{Tables: tables, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// CurrentPlan retourne la formule applicable maintenant
func (e *Engine) CurrentPlan() models.Plan {
	return DecidePlan(e.now(), e.Tables.EarlyBirdEnd.Time, e.Tables.RegularEnd.Time)
}

// CountryStatusFor retourne la catégorie d'un pays
func (e *Engine) CountryStatusFor(countryKey string) models.CountryStatus {
	return DecideCountryStatus(countryKey, e.Tables.AccreditedCountries, e.Tables.PreviousHosts, e.Tables.FutureHost)
}

// MonthsLate retourne le nombre de mois de retard à l'instant courant
func (e *Engine) MonthsLate() int {
	return MonthsLate(e.now(), e.Tables.RegularEnd.Time, e.Tables.LateMonthDays)
}

// lateMonths vaut 0 avant regular_end, même si la formule "late" est imposée
func (e *Engine) lateMonths() int {
	return e.MonthsLate()
}

// FirstTeamFee retourne les frais de la première équipe.
// En "late", frais "regular" de la catégorie + majoration par mois de retard.
func (e *Engine) FirstTeamFee(plan models.Plan, status models.CountryStatus) float64 {
	if plan == models.PlanLate {
		base := e.matrixFee(models.PlanRegular, status)
		return Round2(base + e.Tables.LateSurchargePerTeamPerMonth*float64(e.lateMonths()))
	}
	return Round2(e.matrixFee(plan, status))
}

func (e *Engine) matrixFee(plan models.Plan, status models.CountryStatus) float64 {
	if fee, ok := e.Tables.FirstTeamFees[plan][status]; ok {
		return fee
	}
	return e.Tables.PlanBase[plan]
}

// Calculate calcule le détail des montants d'un détail d'inscription.
// Les entrées hors contrat (nombre d'équipes hors {1,2}) ne sont pas défendues ici.
func (e *Engine) Calculate(d models.RegistrationDetail) models.PriceBreakdown {
	firstTeam := e.FirstTeamFee(d.Plan, d.CountryStatus)

	multiplier := 1.0
	if d.NumberOfTeams == 2 {
		multiplier = 3
	}
	teamsCost := firstTeam * multiplier
	// La majoration est comptée deux fois par le x3 : on la retire une fois
	if d.Plan == models.PlanLate && d.NumberOfTeams == 2 {
		teamsCost -= e.Tables.LateSurchargePerTeamPerMonth * float64(e.lateMonths())
	}

	includedObservers := 0
	if d.CountryStatus == models.StatusFutureHost {
		includedObservers = 1
	}
	observersCost := float64(d.AdditionalObservers-includedObservers) * e.Tables.ObserverFee
	singleRoomsCost := float64(d.SingleRoomRequests) * e.Tables.SingleRoomFee

	subtotal := teamsCost + observersCost + singleRoomsCost

	return models.PriceBreakdown{
		PlanBaseFirstTeam:         Round2(e.Tables.PlanBase[d.Plan]),
		FirstTeamAfterAdjustments: Round2(firstTeam),
		TeamsCost:                 Round2(teamsCost),
		ObserversCost:             Round2(observersCost),
		SingleRoomsCost:           Round2(singleRoomsCost),
		Subtotal:                  Round2(subtotal),
		PaidBefore:                Round2(d.PaidBefore),
		TotalBank:                 Round2(Round2(subtotal) - Round2(d.PaidBefore)),
	}
}

// Round2 arrondit au centime (demi vers le haut)
func Round2(n float64) float64 {
	return math.Floor(n*100+0.5) / 100
}
