package workflow

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"olympiad-registration-backend/models"
	"olympiad-registration-backend/pricing"
)

// Store est le magasin de documents pays
type Store interface {
	// GetCountry retourne nil, nil si le pays n'existe pas
	GetCountry(ctx context.Context, id string) (*models.Country, error)
	// SavePayment fusionne le patch dans payment avec un horodatage serveur
	SavePayment(ctx context.Context, id string, patch models.PaymentPatch) error
}

// Uploader stocke les preuves de paiement
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, name, contentType, pathHint string) (string, error)
	// Owns indique si l'URL a été produite par ce service de stockage
	Owns(url string) bool
}

// Recorder reçoit les événements du parcours (métriques)
type Recorder interface {
	ObserveTransition(step models.PaymentStep)
	ObserveFailure(operation, reason string)
	ObserveUpload(result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(models.PaymentStep) {}
func (nopRecorder) ObserveFailure(string, string)        {}
func (nopRecorder) ObserveUpload(string)                 {}

// ProofFile représente un fichier de preuve reçu du client
type ProofFile struct {
	Reader      io.Reader
	Name        string
	ContentType string
	Size        int64
}

// View est l'état du parcours renvoyé au client
type View struct {
	Step         models.PaymentStep          `json:"step"`
	StepName     string                      `json:"step_name"`
	Form         models.RegistrationDetail   `json:"form"`
	Pricing      models.PriceBreakdown       `json:"pricing"`
	Options      FormOptions                 `json:"options"`
	Registration *models.RegistrationDetail  `json:"registration,omitempty"`
	Confirmation *models.PaymentConfirmation `json:"confirmation,omitempty"`
	Snapshot     *models.PriceBreakdown      `json:"pricing_snapshot,omitempty"`
}

// Review est le récapitulatif affiché avant confirmation de l'étape 1
type Review struct {
	Registration models.RegistrationDetail `json:"registration"`
	Pricing      models.PriceBreakdown     `json:"pricing"`
}

// Service pilote le parcours d'inscription et de paiement d'un pays
type Service struct {
	store    Store
	uploader Uploader
	engine   *pricing.Engine
	recorder Recorder
	inflight sync.Map
}

// NewService crée le service de parcours
func NewService(store Store, uploader Uploader, engine *pricing.Engine) *Service {
	return &Service{
		store:    store,
		uploader: uploader,
		engine:   engine,
		recorder: nopRecorder{},
	}
}

// WithRecorder branche un Recorder (métriques)
func (s *Service) WithRecorder(r Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

func (s *Service) now() time.Time {
	if s.engine.Now != nil {
		return s.engine.Now()
	}
	return time.Now()
}

func (s *Service) observe(operation string, err error) {
	if err != nil {
		s.recorder.ObserveFailure(operation, failureReason(err))
	}
}

func requireCountry(p *models.Principal) error {
	if !p.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !p.HasCountry() {
		return ErrNoCountry
	}
	return nil
}

// acquire empêche deux transitions simultanées pour un même pays
func (s *Service) acquire(id string) (func(), error) {
	if _, busy := s.inflight.LoadOrStore(id, struct{}{}); busy {
		return nil, ErrTransitionInProgress
	}
	return func() { s.inflight.Delete(id) }, nil
}

func (s *Service) loadState(ctx context.Context, id string) (*models.PaymentState, error) {
	country, err := s.store.GetCountry(ctx, id)
	if err != nil {
		return nil, persistenceError(err)
	}
	if country == nil || country.Payment == nil {
		return &models.PaymentState{}, nil
	}
	return country.Payment, nil
}

// savedRegistration retourne l'inscription persistée si elle est complète
func savedRegistration(state *models.PaymentState) *models.RegistrationDetail {
	if state.Registration == nil || state.Registration.NumberOfTeams == 0 {
		return nil
	}
	return state.Registration
}

func persistedPaidBefore(state *models.PaymentState) float64 {
	if state.Registration == nil {
		return 0
	}
	return state.Registration.PaidBefore
}

// detailFor construit le détail d'inscription faisant foi : formule et catégorie
// recalculées, paid_before repris du document
func (s *Service) detailFor(p *models.Principal, teams, observers, rooms int, state *models.PaymentState) models.RegistrationDetail {
	return models.RegistrationDetail{
		Plan:                s.engine.CurrentPlan(),
		CountryStatus:       s.engine.CountryStatusFor(p.CountryKey),
		NumberOfTeams:       teams,
		AdditionalObservers: observers,
		SingleRoomRequests:  rooms,
		PaidBefore:          persistedPaidBefore(state),
	}
}

func (s *Service) view(p *models.Principal, state *models.PaymentState, step models.PaymentStep) *View {
	status := s.engine.CountryStatusFor(p.CountryKey)
	opts := OptionsFor(status)

	form := s.detailFor(p, 1, opts.MinObservers, 0, state)
	if saved := savedRegistration(state); saved != nil {
		form.NumberOfTeams = saved.NumberOfTeams
		form.AdditionalObservers = saved.AdditionalObservers
		form.SingleRoomRequests = saved.SingleRoomRequests
	}
	// La catégorie a pu changer depuis l'enregistrement : on ramène le formulaire dans les bornes actuelles
	if maxTeams := opts.TeamChoices[len(opts.TeamChoices)-1]; form.NumberOfTeams > maxTeams {
		form.NumberOfTeams = maxTeams
	}
	if form.AdditionalObservers < opts.MinObservers {
		form.AdditionalObservers = opts.MinObservers
	}

	return &View{
		Step:         step,
		StepName:     step.String(),
		Form:         form,
		Pricing:      s.engine.Calculate(form),
		Options:      opts,
		Registration: savedRegistration(state),
		Confirmation: state.Confirmation,
		Snapshot:     state.Pricing,
	}
}

// Load reprend le parcours à l'étape persistée, ou à l'étape 1 avec les valeurs par défaut
func (s *Service) Load(ctx context.Context, p *models.Principal) (view *View, err error) {
	defer func() { s.observe("load", err) }()

	if err := requireCountry(p); err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	step := state.Step
	if step < models.StepRegistrationDetail {
		step = models.StepRegistrationDetail
	}
	if step > models.StepWaitingForVerification {
		step = models.StepWaitingForVerification
	}
	// Une étape avancée sans inscription enregistrée n'est pas reprise
	if step > models.StepRegistrationDetail && savedRegistration(state) == nil {
		step = models.StepRegistrationDetail
	}
	return s.view(p, state, step), nil
}

// Preview recalcule les montants pendant la saisie
func (s *Service) Preview(ctx context.Context, p *models.Principal, in RegistrationInput) (*models.PriceBreakdown, error) {
	review, err := s.review(ctx, p, in)
	if err != nil {
		s.observe("preview", err)
		return nil, err
	}
	return &review.Pricing, nil
}

// ReviewRegistration retourne le récapitulatif soumis à confirmation, sans rien enregistrer
func (s *Service) ReviewRegistration(ctx context.Context, p *models.Principal, in RegistrationInput) (review *Review, err error) {
	defer func() { s.observe("review_registration", err) }()
	return s.review(ctx, p, in)
}

func (s *Service) review(ctx context.Context, p *models.Principal, in RegistrationInput) (*Review, error) {
	if err := requireCountry(p); err != nil {
		return nil, err
	}
	if err := validateRegistration(in, s.engine.CountryStatusFor(p.CountryKey)); err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	detail := s.detailFor(p, *in.NumberOfTeams, *in.AdditionalObservers, *in.SingleRoomRequests, state)
	return &Review{Registration: detail, Pricing: s.engine.Calculate(detail)}, nil
}

// SaveRegistrationDetails enregistre l'étape 1 après confirmation explicite et passe à l'étape 2
func (s *Service) SaveRegistrationDetails(ctx context.Context, p *models.Principal, in RegistrationInput, confirmed bool) (view *View, err error) {
	defer func() { s.observe("save_registration", err) }()

	if err := requireCountry(p); err != nil {
		return nil, err
	}
	if err := validateRegistration(in, s.engine.CountryStatusFor(p.CountryKey)); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	release, err := s.acquire(p.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.loadState(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if state.Step > models.StepPaymentConfirmation {
		return nil, ErrInvalidTransition
	}

	detail := s.detailFor(p, *in.NumberOfTeams, *in.AdditionalObservers, *in.SingleRoomRequests, state)
	breakdown := s.engine.Calculate(detail)
	next := models.StepPaymentConfirmation

	patch := models.PaymentPatch{Registration: &detail, Pricing: &breakdown, Step: &next}
	if err := s.store.SavePayment(ctx, p.ID, patch); err != nil {
		return nil, persistenceError(err)
	}
	s.recorder.ObserveTransition(next)

	saved := *state
	saved.Registration, saved.Pricing, saved.Step = &detail, &breakdown, next
	return s.view(p, &saved, next), nil
}

// UploadProof envoie la preuve de paiement et retourne son URL de téléchargement
func (s *Service) UploadProof(ctx context.Context, p *models.Principal, f ProofFile) (url string, err error) {
	defer func() { s.observe("upload_proof", err) }()

	if err := requireCountry(p); err != nil {
		return "", err
	}
	if err := validateProof(f); err != nil {
		return "", err
	}

	hint := fmt.Sprintf("payment-proofs/%s/%d_%s", p.CountryKey, s.now().UnixMilli(), cleanFileName(f.Name))
	url, err = s.uploader.Upload(ctx, f.Reader, f.Name, f.ContentType, hint)
	if err != nil {
		s.recorder.ObserveUpload("error")
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	s.recorder.ObserveUpload("ok")
	return url, nil
}

// SubmitPaymentConfirmation enregistre l'étape 2 et passe en attente de vérification
func (s *Service) SubmitPaymentConfirmation(ctx context.Context, p *models.Principal, in ConfirmationInput, acknowledged bool) (view *View, err error) {
	defer func() { s.observe("submit_confirmation", err) }()

	if err := requireCountry(p); err != nil {
		return nil, err
	}
	if !acknowledged {
		return nil, ErrAcknowledgementRequired
	}
	if err := validateConfirmation(in, s.uploader.Owns); err != nil {
		return nil, err
	}

	release, err := s.acquire(p.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.loadState(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	saved := savedRegistration(state)
	if saved == nil || state.Step != models.StepPaymentConfirmation {
		return nil, ErrInvalidTransition
	}

	detail := s.detailFor(p, saved.NumberOfTeams, saved.AdditionalObservers, saved.SingleRoomRequests, state)
	breakdown := s.engine.Calculate(detail)
	confirmation := models.PaymentConfirmation{
		TransactionNumber: strings.TrimSpace(in.TransactionNumber),
		OrderNumber:       strings.TrimSpace(in.OrderNumber),
		NeedInvoice:       in.NeedInvoice,
		ProofOfPaymentURL: in.ProofOfPaymentURL,
	}
	next := models.StepWaitingForVerification

	patch := models.PaymentPatch{
		Registration: &detail,
		Confirmation: &confirmation,
		Pricing:      &breakdown,
		Step:         &next,
	}
	if err := s.store.SavePayment(ctx, p.ID, patch); err != nil {
		return nil, persistenceError(err)
	}
	s.recorder.ObserveTransition(next)

	updated := *state
	updated.Registration, updated.Confirmation, updated.Pricing, updated.Step = &detail, &confirmation, &breakdown, next
	return s.view(p, &updated, next), nil
}

// Finish termine le parcours côté client : rien n'est enregistré
func (s *Service) Finish(ctx context.Context, p *models.Principal) (view *View, err error) {
	defer func() { s.observe("finish", err) }()

	if err := requireCountry(p); err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if state.Step != models.StepWaitingForVerification || savedRegistration(state) == nil {
		return nil, ErrInvalidTransition
	}
	return s.view(p, state, models.StepPaymentCompleted), nil
}

func cleanFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "." || base == "/" {
		return "proof"
	}
	return base
}
