package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"olympiad-registration-backend/models"
	"olympiad-registration-backend/pricing"

	"github.com/robfig/cron/v3"
)

// PlanGauge reçoit la formule active (métriques)
type PlanGauge interface {
	SetCurrentPlan(plan models.Plan)
}

// PlanWatcher surveille les bascules de formule (early bird, regular, late)
type PlanWatcher struct {
	engine *pricing.Engine
	gauge  PlanGauge
	slack  *SlackService
	cron   *cron.Cron

	mu      sync.Mutex
	current models.Plan
}

// NewPlanWatcher crée une nouvelle instance
func NewPlanWatcher(engine *pricing.Engine, gauge PlanGauge, slack *SlackService) *PlanWatcher {
	return &PlanWatcher{
		engine: engine,
		gauge:  gauge,
		slack:  slack,
		cron:   cron.New(),
	}
}

// Start démarre le cron job
func (w *PlanWatcher) Start() error {
	w.Check()
	if _, err := w.cron.AddFunc("@every 1m", func() { w.Check() }); err != nil {
		return fmt.Errorf("erreur lors de la programmation du suivi des formules: %w", err)
	}
	w.cron.Start()
	log.Println("✓ Cron job formules démarré (vérification toutes les minutes)")
	return nil
}

// Stop arrête le cron job
func (w *PlanWatcher) Stop() {
	<-w.cron.Stop().Done()
}

// Check relit la formule active et signale un changement. Retourne true en cas de bascule.
func (w *PlanWatcher) Check() bool {
	plan := w.engine.CurrentPlan()

	w.mu.Lock()
	previous := w.current
	w.current = plan
	w.mu.Unlock()

	if w.gauge != nil {
		w.gauge.SetCurrentPlan(plan)
	}
	if previous == plan {
		return false
	}
	if previous == "" {
		log.Printf("📅 Formule active: %s", plan)
		return false
	}

	log.Printf("📅 Bascule de formule: %s -> %s", previous, plan)
	if plan == models.PlanLate {
		log.Printf("⚠️  Majoration de retard active (%.0f par équipe et par mois)", w.engine.Tables.LateSurchargePerTeamPerMonth)
	}
	if err := w.slack.Send(context.Background(), Attachment{
		Color: "good",
		Title: "📅 Pricing plan changed",
		Text:  fmt.Sprintf("%s -> %s", previous, plan),
	}); err != nil {
		log.Printf("❌ Erreur lors de l'envoi de l'alerte Slack: %v", err)
	}
	return true
}

// Current retourne la dernière formule observée
func (w *PlanWatcher) Current() models.Plan {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}
