package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"olympiad-registration-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *memStore) (*Service, *fakeUploader, *countingRecorder) {
	uploader := &fakeUploader{}
	recorder := newCountingRecorder()
	svc := NewService(store, uploader, testEngine()).WithRecorder(recorder)
	return svc, uploader, recorder
}

func countryAtStep(id string, step models.PaymentStep, reg *models.RegistrationDetail) *models.Country {
	return &models.Country{
		ID:          id,
		CountryName: "France",
		Payment:     &models.PaymentState{Registration: reg, Step: step},
	}
}

func TestLoad_SansEtatPersiste(t *testing.T) {
	svc, _, _ := newTestService(newMemStore())

	view, err := svc.Load(context.Background(), countryPrincipal("uid-fr", "france"))
	require.NoError(t, err)

	assert.Equal(t, models.StepRegistrationDetail, view.Step)
	assert.Equal(t, models.PlanEarlyBird, view.Form.Plan)
	assert.Equal(t, models.StatusNotPreviousHost, view.Form.CountryStatus)
	assert.Equal(t, 1, view.Form.NumberOfTeams)
	assert.Equal(t, 0, view.Form.AdditionalObservers)
	assert.Equal(t, 0, view.Form.SingleRoomRequests)
	assert.Equal(t, 83500.0, view.Pricing.TotalBank)
	assert.Nil(t, view.Registration)
	assert.Equal(t, []int{1, 2}, view.Options.TeamChoices)
}

func TestLoad_FuturHoteUnObservateurParDefaut(t *testing.T) {
	svc, _, _ := newTestService(newMemStore())

	view, err := svc.Load(context.Background(), countryPrincipal("uid-tw", "taiwan"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFutureHost, view.Form.CountryStatus)
	assert.Equal(t, 1, view.Form.AdditionalObservers)
	assert.Equal(t, 1, view.Options.MinObservers)
	assert.Equal(t, 0.0, view.Pricing.ObserversCost)
}

func TestLoad_NonAccrediteUneSeuleEquipe(t *testing.T) {
	svc, _, _ := newTestService(newMemStore())

	view, err := svc.Load(context.Background(), countryPrincipal("uid-x", "narnia"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, view.Options.TeamChoices)
}

func TestLoad_RepriseEtapePersistee(t *testing.T) {
	saved := &models.RegistrationDetail{
		Plan:                models.PlanRegular,
		CountryStatus:       models.StatusNotAccredited,
		NumberOfTeams:       2,
		AdditionalObservers: 1,
		SingleRoomRequests:  1,
	}
	store := newMemStore(countryAtStep("uid-fr", models.StepPaymentConfirmation, saved))
	svc, _, _ := newTestService(store)

	view, err := svc.Load(context.Background(), countryPrincipal("uid-fr", "france"))
	require.NoError(t, err)

	assert.Equal(t, models.StepPaymentConfirmation, view.Step)
	assert.Equal(t, "payment_confirmation", view.StepName)
	require.NotNil(t, view.Registration)
	assert.Equal(t, 2, view.Form.NumberOfTeams)
	// Formule et catégorie recalculées, jamais reprises du document
	assert.Equal(t, models.PlanEarlyBird, view.Form.Plan)
	assert.Equal(t, models.StatusNotPreviousHost, view.Form.CountryStatus)
	assert.Equal(t, 83500.0*3+24000+16000, view.Pricing.Subtotal)
}

func TestLoad_ValeursRameneesALaCategorieActuelle(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		saved         models.RegistrationDetail
		wantTeams     int
		wantObservers int
		wantSubtotal  float64
	}{
		{
			name:         "pays devenu non accrédité",
			key:          "narnia",
			saved:        models.RegistrationDetail{NumberOfTeams: 2, SingleRoomRequests: 1},
			wantTeams:    1,
			wantSubtotal: 88000 + 16000,
		},
		{
			name:          "pays devenu futur hôte",
			key:           "taiwan",
			saved:         models.RegistrationDetail{NumberOfTeams: 1},
			wantTeams:     1,
			wantObservers: 1,
			wantSubtotal:  79500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := tt.saved
			store := newMemStore(countryAtStep("uid-x", models.StepPaymentConfirmation, &saved))
			svc, _, _ := newTestService(store)

			view, err := svc.Load(context.Background(), countryPrincipal("uid-x", tt.key))
			require.NoError(t, err)

			assert.Equal(t, tt.wantTeams, view.Form.NumberOfTeams)
			assert.Equal(t, tt.wantObservers, view.Form.AdditionalObservers)
			assert.Equal(t, tt.wantSubtotal, view.Pricing.Subtotal)
			assert.GreaterOrEqual(t, view.Pricing.ObserversCost, 0.0)
			// L'enregistrement persisté reste renvoyé tel quel
			require.NotNil(t, view.Registration)
			assert.Equal(t, tt.saved.NumberOfTeams, view.Registration.NumberOfTeams)
		})
	}
}

func TestLoad_PaidBeforeSeulRepartEtapeUne(t *testing.T) {
	reg := &models.RegistrationDetail{PaidBefore: 5000}
	store := newMemStore(countryAtStep("uid-fr", models.StepPaymentConfirmation, reg))
	svc, _, _ := newTestService(store)

	view, err := svc.Load(context.Background(), countryPrincipal("uid-fr", "france"))
	require.NoError(t, err)

	assert.Equal(t, models.StepRegistrationDetail, view.Step)
	assert.Nil(t, view.Registration)
	assert.Equal(t, 1, view.Form.NumberOfTeams)
	assert.Equal(t, 5000.0, view.Form.PaidBefore)
	assert.Equal(t, 78500.0, view.Pricing.TotalBank)
}

func TestLoad_Erreurs(t *testing.T) {
	store := newMemStore()
	svc, _, recorder := newTestService(store)
	ctx := context.Background()

	_, err := svc.Load(ctx, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, "Not authenticated", err.Error())

	_, err = svc.Load(ctx, &models.Principal{ID: "u", Role: models.RoleAnonymous})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.Load(ctx, adminPrincipal())
	assert.ErrorIs(t, err, ErrNoCountry)

	store.getErr = errStoreDown
	_, err = svc.Load(ctx, countryPrincipal("uid-fr", "france"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errStoreDown)

	assert.Equal(t, 3, recorder.failures["load/auth"])
	assert.Equal(t, 1, recorder.failures["load/persistence"])
}

func TestPreview_PaidBeforeDuDocument(t *testing.T) {
	reg := &models.RegistrationDetail{PaidBefore: 1000}
	svc, _, _ := newTestService(newMemStore(countryAtStep("uid-fr", models.StepRegistrationDetail, reg)))

	breakdown, err := svc.Preview(context.Background(), countryPrincipal("uid-fr", "france"), input(1, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, breakdown.PaidBefore)
	assert.Equal(t, 83500.0+48000+16000, breakdown.Subtotal)
	assert.Equal(t, breakdown.Subtotal-1000, breakdown.TotalBank)
}

func TestReviewRegistration_SansPersistance(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestService(store)

	review, err := svc.ReviewRegistration(context.Background(), countryPrincipal("uid-us", "usa"), input(2, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPreviousHost, review.Registration.CountryStatus)
	assert.Equal(t, 75500.0*3, review.Pricing.TeamsCost)
	assert.Equal(t, 0, store.saves)
}

func TestSaveRegistrationDetails_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		in    RegistrationInput
		field string
	}{
		{"trois équipes", "france", input(3, 0, 0), "number_of_teams"},
		{"zéro équipe", "france", input(0, 0, 0), "number_of_teams"},
		{"deux équipes non accrédité", "narnia", input(2, 0, 0), "number_of_teams"},
		{"observateurs négatifs", "france", input(1, -1, 0), "additional_observers"},
		{"futur hôte sans observateur", "taiwan", input(1, 0, 0), "additional_observers"},
		{"chambres négatives", "france", input(1, 0, -2), "single_room_requests"},
		{"champ manquant", "france", RegistrationInput{NumberOfTeams: intp(1), AdditionalObservers: intp(0)}, "single_room_requests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc, _, _ := newTestService(store)

			_, err := svc.SaveRegistrationDetails(context.Background(), countryPrincipal("uid", tt.key), tt.in, true)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "erreur = %v", err)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Equal(t, 0, store.saves)
		})
	}
}

func TestSaveRegistrationDetails_ConfirmationRequise(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestService(store)

	_, err := svc.SaveRegistrationDetails(context.Background(), countryPrincipal("uid-fr", "france"), input(1, 0, 0), false)

	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, models.StepRegistrationDetail, store.step("uid-fr"))
}

func TestSaveRegistrationDetails_Succes(t *testing.T) {
	reg := &models.RegistrationDetail{PaidBefore: 2000}
	store := newMemStore(countryAtStep("uid-fr", models.StepRegistrationDetail, reg))
	svc, _, recorder := newTestService(store)

	view, err := svc.SaveRegistrationDetails(context.Background(), countryPrincipal("uid-fr", "france"), input(2, 1, 1), true)
	require.NoError(t, err)

	assert.Equal(t, models.StepPaymentConfirmation, view.Step)
	assert.Equal(t, models.StepPaymentConfirmation, store.step("uid-fr"))

	persisted := store.countries["uid-fr"].Payment
	require.NotNil(t, persisted.Registration)
	require.NotNil(t, persisted.Pricing)
	assert.Equal(t, models.PlanEarlyBird, persisted.Registration.Plan)
	assert.Equal(t, 2000.0, persisted.Registration.PaidBefore)
	assert.Equal(t, 2, persisted.Registration.NumberOfTeams)
	assert.Equal(t, 83500.0*3+24000+16000-2000, persisted.Pricing.TotalBank)
	assert.Equal(t, []models.PaymentStep{models.StepPaymentConfirmation}, recorder.transitions)
}

func TestSaveRegistrationDetails_ReenregistrementEtapeDeux(t *testing.T) {
	saved := &models.RegistrationDetail{NumberOfTeams: 1}
	store := newMemStore(countryAtStep("uid-fr", models.StepPaymentConfirmation, saved))
	svc, _, _ := newTestService(store)

	view, err := svc.SaveRegistrationDetails(context.Background(), countryPrincipal("uid-fr", "france"), input(2, 0, 0), true)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Registration.NumberOfTeams)
}

func TestSaveRegistrationDetails_ApresSoumission(t *testing.T) {
	saved := &models.RegistrationDetail{NumberOfTeams: 1}
	store := newMemStore(countryAtStep("uid-fr", models.StepWaitingForVerification, saved))
	svc, _, _ := newTestService(store)

	_, err := svc.SaveRegistrationDetails(context.Background(), countryPrincipal("uid-fr", "france"), input(2, 0, 0), true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, store.saves)
}

func TestSaveRegistrationDetails_EchecPersistance(t *testing.T) {
	store := newMemStore()
	store.saveErr = errStoreDown
	svc, _, recorder := newTestService(store)

	view, err := svc.SaveRegistrationDetails(context.Background(), countryPrincipal("uid-fr", "france"), input(1, 0, 0), true)

	assert.Nil(t, view)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, models.StepRegistrationDetail, store.step("uid-fr"))
	assert.Empty(t, recorder.transitions)
	assert.Equal(t, 1, recorder.failures["save_registration/persistence"])

	// Nouvel essai avec les mêmes valeurs une fois le magasin rétabli
	store.saveErr = nil
	view, err = svc.SaveRegistrationDetails(context.Background(), countryPrincipal("uid-fr", "france"), input(1, 0, 0), true)
	require.NoError(t, err)
	assert.Equal(t, models.StepPaymentConfirmation, view.Step)
}

func TestSaveRegistrationDetails_TransitionEnCours(t *testing.T) {
	store := newMemStore()
	entered := make(chan struct{})
	release := make(chan struct{})
	store.beforeSave = func() {
		close(entered)
		<-release
	}
	svc, _, _ := newTestService(store)
	p := countryPrincipal("uid-fr", "france")

	done := make(chan error, 1)
	go func() {
		_, err := svc.SaveRegistrationDetails(context.Background(), p, input(1, 0, 0), true)
		done <- err
	}()
	<-entered

	_, err := svc.SaveRegistrationDetails(context.Background(), p, input(2, 0, 0), true)
	assert.ErrorIs(t, err, ErrTransitionInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.countries["uid-fr"].Payment.Registration.NumberOfTeams)
}

func TestUploadProof(t *testing.T) {
	svc, uploader, recorder := newTestService(newMemStore())
	p := countryPrincipal("uid-fr", "france")

	url, err := svc.UploadProof(context.Background(), p, ProofFile{
		Reader:      strings.NewReader("%PDF-1.4"),
		Name:        "virement mars.pdf",
		ContentType: "application/pdf",
		Size:        8,
	})
	require.NoError(t, err)

	assert.True(t, uploader.Owns(url))
	assert.Equal(t, "payment-proofs/france/1768471200000_virement_mars.pdf", uploader.lastHint)
	assert.Equal(t, "%PDF-1.4", uploader.lastBody)
	assert.Equal(t, 1, recorder.uploads["ok"])
}

func TestUploadProof_Refus(t *testing.T) {
	tests := []struct {
		name string
		file ProofFile
	}{
		{"type non supporté", ProofFile{Reader: strings.NewReader("x"), Name: "a.zip", ContentType: "application/zip", Size: 1}},
		{"trop volumineux", ProofFile{Reader: strings.NewReader("x"), Name: "a.png", ContentType: "image/png", Size: MaxProofSize + 1}},
		{"fichier vide", ProofFile{Reader: strings.NewReader(""), Name: "a.png", ContentType: "image/png", Size: 0}},
		{"sans nom", ProofFile{Reader: strings.NewReader("x"), Name: " ", ContentType: "image/png", Size: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, uploader, _ := newTestService(newMemStore())
			_, err := svc.UploadProof(context.Background(), countryPrincipal("uid-fr", "france"), tt.file)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "erreur = %v", err)
			assert.Contains(t, verr.Fields, "file")
			assert.Empty(t, uploader.lastHint)
		})
	}
}

func TestUploadProof_EchecStockage(t *testing.T) {
	svc, uploader, recorder := newTestService(newMemStore())
	uploader.err = errors.New("bucket unavailable")

	_, err := svc.UploadProof(context.Background(), countryPrincipal("uid-fr", "france"), ProofFile{
		Reader: strings.NewReader("x"), Name: "a.png", ContentType: "image/png", Size: 1,
	})
	assert.ErrorIs(t, err, ErrUpload)
	assert.Equal(t, 1, recorder.uploads["error"])

	_, err = svc.UploadProof(context.Background(), nil, ProofFile{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func confirmationInput(url string) ConfirmationInput {
	return ConfirmationInput{TransactionNumber: " TX-42 ", OrderNumber: "ORD-1", NeedInvoice: true, ProofOfPaymentURL: url}
}

func TestSubmitPaymentConfirmation_AccuseRequis(t *testing.T) {
	store := newMemStore(countryAtStep("uid-fr", models.StepPaymentConfirmation, &models.RegistrationDetail{NumberOfTeams: 1}))
	svc, _, _ := newTestService(store)

	_, err := svc.SubmitPaymentConfirmation(context.Background(), countryPrincipal("uid-fr", "france"), confirmationInput(fakeUploadPrefix+"p.pdf"), false)
	assert.ErrorIs(t, err, ErrAcknowledgementRequired)
	assert.Equal(t, 0, store.saves)
}

func TestSubmitPaymentConfirmation_SansPreuve(t *testing.T) {
	store := newMemStore(countryAtStep("uid-fr", models.StepPaymentConfirmation, &models.RegistrationDetail{NumberOfTeams: 1}))
	svc, _, _ := newTestService(store)

	_, err := svc.SubmitPaymentConfirmation(context.Background(), countryPrincipal("uid-fr", "france"), confirmationInput(""), true)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "proof of payment required", verr.Fields["proof_of_payment_url"])
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, models.StepPaymentConfirmation, store.step("uid-fr"))
}

func TestSubmitPaymentConfirmation_Validation(t *testing.T) {
	store := newMemStore(countryAtStep("uid-fr", models.StepPaymentConfirmation, &models.RegistrationDetail{NumberOfTeams: 1}))
	svc, _, _ := newTestService(store)

	in := confirmationInput("https://elsewhere.test/proof.pdf")
	in.TransactionNumber = "  "
	_, err := svc.SubmitPaymentConfirmation(context.Background(), countryPrincipal("uid-fr", "france"), in, true)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "transaction_number")
	assert.Contains(t, verr.Fields, "proof_of_payment_url")
}

func TestSubmitPaymentConfirmation_Succes(t *testing.T) {
	reg := &models.RegistrationDetail{Plan: models.PlanLate, NumberOfTeams: 1, SingleRoomRequests: 1, PaidBefore: 500}
	store := newMemStore(countryAtStep("uid-fr", models.StepPaymentConfirmation, reg))
	svc, _, recorder := newTestService(store)

	view, err := svc.SubmitPaymentConfirmation(context.Background(), countryPrincipal("uid-fr", "france"), confirmationInput(fakeUploadPrefix+"p.pdf"), true)
	require.NoError(t, err)

	assert.Equal(t, models.StepWaitingForVerification, view.Step)
	persisted := store.countries["uid-fr"].Payment
	assert.Equal(t, models.StepWaitingForVerification, persisted.Step)
	require.NotNil(t, persisted.Confirmation)
	assert.Equal(t, "TX-42", persisted.Confirmation.TransactionNumber)
	assert.True(t, persisted.Confirmation.NeedInvoice)
	assert.Equal(t, models.PlanEarlyBird, persisted.Registration.Plan)
	assert.Equal(t, 83500.0+16000-500, persisted.Pricing.TotalBank)
	assert.Equal(t, []models.PaymentStep{models.StepWaitingForVerification}, recorder.transitions)
}

func TestSubmitPaymentConfirmation_MauvaiseEtape(t *testing.T) {
	tests := []struct {
		name    string
		country *models.Country
	}{
		{"aucun document", nil},
		{"étape une", countryAtStep("uid-fr", models.StepRegistrationDetail, &models.RegistrationDetail{NumberOfTeams: 1})},
		{"déjà soumis", countryAtStep("uid-fr", models.StepWaitingForVerification, &models.RegistrationDetail{NumberOfTeams: 1})},
		{"étape deux sans inscription", countryAtStep("uid-fr", models.StepPaymentConfirmation, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			if tt.country != nil {
				store = newMemStore(tt.country)
			}
			svc, _, _ := newTestService(store)

			_, err := svc.SubmitPaymentConfirmation(context.Background(), countryPrincipal("uid-fr", "france"), confirmationInput(fakeUploadPrefix+"p.pdf"), true)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, 0, store.saves)
		})
	}
}

func TestFinish(t *testing.T) {
	store := newMemStore(countryAtStep("uid-fr", models.StepWaitingForVerification, &models.RegistrationDetail{NumberOfTeams: 1}))
	svc, _, _ := newTestService(store)
	p := countryPrincipal("uid-fr", "france")

	view, err := svc.Finish(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, models.StepPaymentCompleted, view.Step)
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, models.StepWaitingForVerification, store.step("uid-fr"))

	// Au rechargement, le parcours reprend en attente de vérification
	reloaded, err := svc.Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, models.StepWaitingForVerification, reloaded.Step)
}

func TestFinish_AvantSoumission(t *testing.T) {
	store := newMemStore(countryAtStep("uid-fr", models.StepPaymentConfirmation, &models.RegistrationDetail{NumberOfTeams: 1}))
	svc, _, _ := newTestService(store)

	_, err := svc.Finish(context.Background(), countryPrincipal("uid-fr", "france"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestParcoursComplet(t *testing.T) {
	store := newMemStore(&models.Country{ID: "uid-jp", CountryName: "Japan"})
	svc, _, recorder := newTestService(store)
	ctx := context.Background()
	p := countryPrincipal("uid-jp", "japan")

	view, err := svc.Load(ctx, p)
	require.NoError(t, err)
	require.Equal(t, models.StepRegistrationDetail, view.Step)

	_, err = svc.SaveRegistrationDetails(ctx, p, input(2, 1, 0), true)
	require.NoError(t, err)

	url, err := svc.UploadProof(ctx, p, ProofFile{Reader: strings.NewReader("img"), Name: "proof.png", ContentType: "image/png", Size: 3})
	require.NoError(t, err)

	_, err = svc.SubmitPaymentConfirmation(ctx, p, ConfirmationInput{TransactionNumber: "TX-1", ProofOfPaymentURL: url}, true)
	require.NoError(t, err)

	view, err = svc.Finish(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, models.StepPaymentCompleted, view.Step)
	assert.Equal(t, 75500.0*3+24000, view.Snapshot.TotalBank)
	assert.Equal(t, []models.PaymentStep{models.StepPaymentConfirmation, models.StepWaitingForVerification}, recorder.transitions)
}

func TestCleanFileName(t *testing.T) {
	tests := map[string]string{
		"proof.pdf":             "proof.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\scan 1.png`: "scan_1.png",
		"":                      "proof",
		"reçu.jpg":              "re_u.jpg",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanFileName(in), in)
	}
}
