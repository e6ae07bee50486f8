package metrics

import (
	"net/http"

	"olympiad-registration-backend/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics regroupe les métriques Prometheus du parcours de paiement
type Metrics struct {
	Transitions *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Uploads     *prometheus.CounterVec
	CurrentPlan *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New crée et enregistre les métriques sur le registre fourni
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_workflow_transitions_total",
			Help: "Total number of persisted payment step transitions by target step",
		}, []string{"step"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_workflow_failures_total",
			Help: "Total number of failed workflow operations by operation and reason",
		}, []string{"operation", "reason"}),

		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_proof_uploads_total",
			Help: "Total number of proof of payment uploads by result",
		}, []string{"result"}), // result: "ok", "error"

		CurrentPlan: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "registration_current_plan",
			Help: "Pricing plan currently in effect (1 for the active plan, 0 otherwise)",
		}, []string{"plan"}),

		gatherer: gatherer,
	}
}

// NewDefault enregistre les métriques sur le registre global
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// ObserveTransition compte une transition d'étape enregistrée
func (m *Metrics) ObserveTransition(step models.PaymentStep) {
	if m != nil {
		m.Transitions.WithLabelValues(step.String()).Inc()
	}
}

// ObserveFailure compte un échec d'opération
func (m *Metrics) ObserveFailure(operation, reason string) {
	if m != nil {
		m.Failures.WithLabelValues(operation, reason).Inc()
	}
}

// ObserveUpload compte un envoi de preuve
func (m *Metrics) ObserveUpload(result string) {
	if m != nil {
		m.Uploads.WithLabelValues(result).Inc()
	}
}

// SetCurrentPlan positionne la jauge de la formule active
func (m *Metrics) SetCurrentPlan(current models.Plan) {
	if m == nil {
		return
	}
	for _, plan := range models.Plans {
		value := 0.0
		if plan == current {
			value = 1
		}
		m.CurrentPlan.WithLabelValues(string(plan)).Set(value)
	}
}

// Handler expose les métriques au format Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
