package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"olympiad-registration-backend/models"
	"olympiad-registration-backend/pricing"
)

var errStoreDown = errors.New("store down")

type memStore struct {
	mu         sync.Mutex
	countries  map[string]*models.Country
	getErr     error
	saveErr    error
	saves      int
	beforeSave func()
}

func newMemStore(countries ...*models.Country) *memStore {
	m := &memStore{countries: map[string]*models.Country{}}
	for _, c := range countries {
		m.countries[c.ID] = c
	}
	return m
}

func cloneCountry(c *models.Country) *models.Country {
	out := *c
	if c.Payment != nil {
		p := *c.Payment
		if p.Registration != nil {
			r := *p.Registration
			p.Registration = &r
		}
		if p.Confirmation != nil {
			cf := *p.Confirmation
			p.Confirmation = &cf
		}
		if p.Pricing != nil {
			pr := *p.Pricing
			p.Pricing = &pr
		}
		out.Payment = &p
	}
	return &out
}

func (m *memStore) GetCountry(_ context.Context, id string) (*models.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.countries[id]
	if !ok {
		return nil, nil
	}
	return cloneCountry(c), nil
}

func (m *memStore) SavePayment(_ context.Context, id string, patch models.PaymentPatch) error {
	if m.beforeSave != nil {
		m.beforeSave()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++

	c, ok := m.countries[id]
	if !ok {
		c = &models.Country{ID: id}
		m.countries[id] = c
	}
	if c.Payment == nil {
		c.Payment = &models.PaymentState{}
	}
	if patch.Registration != nil {
		r := *patch.Registration
		c.Payment.Registration = &r
	}
	if patch.Confirmation != nil {
		cf := *patch.Confirmation
		c.Payment.Confirmation = &cf
	}
	if patch.Pricing != nil {
		pr := *patch.Pricing
		c.Payment.Pricing = &pr
	}
	if patch.Step != nil {
		c.Payment.Step = *patch.Step
	}
	c.Payment.UpdatedAt = time.Now()
	c.UpdatedAt = c.Payment.UpdatedAt
	return nil
}

func (m *memStore) ListCountries(context.Context) ([]models.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]models.Country, 0, len(m.countries))
	for _, c := range m.countries {
		out = append(out, *cloneCountry(c))
	}
	return out, nil
}

func (m *memStore) SetPaidBefore(_ context.Context, id string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	c, ok := m.countries[id]
	if !ok {
		c = &models.Country{ID: id}
		m.countries[id] = c
	}
	if c.Payment == nil {
		c.Payment = &models.PaymentState{}
	}
	if c.Payment.Registration == nil {
		c.Payment.Registration = &models.RegistrationDetail{}
	}
	c.Payment.Registration.PaidBefore = amount
	return nil
}

func (m *memStore) step(id string) models.PaymentStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.countries[id]; ok && c.Payment != nil {
		return c.Payment.Step
	}
	return models.StepRegistrationDetail
}

const fakeUploadPrefix = "https://files.example.test/"

type fakeUploader struct {
	err      error
	lastHint string
	lastBody string
}

func (u *fakeUploader) Upload(_ context.Context, file io.Reader, _, _, pathHint string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.lastHint, u.lastBody = pathHint, string(body)
	return fakeUploadPrefix + pathHint, nil
}

func (u *fakeUploader) Owns(url string) bool {
	return strings.HasPrefix(url, fakeUploadPrefix)
}

type countingRecorder struct {
	mu          sync.Mutex
	transitions []models.PaymentStep
	failures    map[string]int
	uploads     map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{failures: map[string]int{}, uploads: map[string]int{}}
}

func (r *countingRecorder) ObserveTransition(step models.PaymentStep) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, step)
}

func (r *countingRecorder) ObserveFailure(operation, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[operation+"/"+reason]++
}

func (r *countingRecorder) ObserveUpload(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[result]++
}

// Date figée pendant la période early bird
var frozenNow = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func testEngine() *pricing.Engine {
	e := pricing.NewEngine(pricing.DefaultTables())
	e.Now = func() time.Time { return frozenNow }
	return e
}

func countryPrincipal(id, key string) *models.Principal {
	return &models.Principal{ID: id, Role: models.RoleCountry, CountryKey: key}
}

func adminPrincipal() *models.Principal {
	return &models.Principal{ID: "admin-1", Role: models.RoleAdmin}
}

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func input(teams, observers, rooms int) RegistrationInput {
	return RegistrationInput{
		NumberOfTeams:       intp(teams),
		AdditionalObservers: intp(observers),
		SingleRoomRequests:  intp(rooms),
	}
}
