package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"olympiad-registration-backend/config"
	"olympiad-registration-backend/database"
	"olympiad-registration-backend/handlers"
	"olympiad-registration-backend/metrics"
	"olympiad-registration-backend/middleware"
	"olympiad-registration-backend/pricing"
	"olympiad-registration-backend/services"
	"olympiad-registration-backend/utils"
	"olympiad-registration-backend/workflow"

	firebase "firebase.google.com/go/v4"
	"github.com/gorilla/mux"
)

func main() {
	ctx := context.Background()

	// Charger la configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erreur lors du chargement de la configuration: %v", err)
	}

	engine, err := loadPricing(cfg)
	if err != nil {
		log.Fatalf("❌ Erreur lors du chargement des tarifs: %v", err)
	}

	// Firebase Admin (store, identité ou stockage selon la configuration)
	var app *firebase.App
	if cfg.NeedsFirebase() {
		app, err = services.NewFirebaseApp(ctx, services.FirebaseOptions{
			CredentialsFile: cfg.FirebaseCredentialsFile,
			ProjectID:       cfg.FirebaseProjectID,
			StorageBucket:   cfg.FirebaseStorageBucket,
		})
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	// Stockage des pays
	var store workflow.AdminStore
	var ping func(ctx context.Context) error
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			log.Fatalf("❌ Erreur de connexion à Firestore: %v", err)
		}
		defer client.Close()
		fs := database.NewFirestoreCountryStore(client)
		store, ping = fs, fs.Ping
		log.Println("✓ Connexion à Firestore établie")
	default:
		if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
			log.Fatalf("❌ Erreur de connexion à MongoDB: %v", err)
		}
		defer database.Close()
		store = database.NewCountryRepository(database.DB)
		ping = func(context.Context) error { return database.Ping() }
	}

	// Vérification des tokens
	var verifier middleware.TokenVerifier
	if cfg.AuthProvider == config.AuthFirebase {
		verifier, err = services.NewFirebaseTokenVerifier(ctx, app)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Println("✓ Authentification: Firebase Auth")
	} else {
		verifier = utils.JWTVerifier{Secret: cfg.JWTSecret}
		log.Println("✓ Authentification: JWT HS256")
	}

	uploader, err := services.NewUploader(ctx, services.UploaderOptions{
		Provider:               cfg.UploadProvider,
		CloudinaryCloudName:    cfg.CloudinaryCloudName,
		CloudinaryUploadPreset: cfg.CloudinaryUploadPreset,
		StorageBucket:          cfg.FirebaseStorageBucket,
	}, app)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	m := metrics.NewDefault()
	slackService := services.NewSlackService(cfg.SlackWebhookURL)

	// Suivi des bascules de formule
	planWatcher := services.NewPlanWatcher(engine, m, slackService)
	if err := planWatcher.Start(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer planWatcher.Stop()

	// Créer les handlers
	paymentHandler := handlers.NewPaymentHandler(workflow.NewService(store, uploader, engine).WithRecorder(m))
	adminPaymentHandler := handlers.NewAdminPaymentHandler(workflow.NewAdminService(store))
	healthHandler := handlers.NewHealthHandler(cfg.Environment, cfg.StoreBackend, ping)

	// Créer le routeur
	router := mux.NewRouter()
	router.Use(middleware.Logging(slackService))
	router.Use(middleware.CORS(cfg.CORSOrigins, slackService))

	// Routes publiques
	router.HandleFunc("/api/health", healthHandler.Health).Methods("GET", "OPTIONS")
	router.Handle("/metrics", m.Handler()).Methods("GET")

	// Routes protégées
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth(verifier))

	// Parcours d'inscription et de paiement (compte pays)
	paymentRouter := protected.PathPrefix("/payment").Subrouter()
	paymentRouter.Use(middleware.RequireCountry())
	paymentRouter.HandleFunc("", paymentHandler.Load).Methods("GET", "OPTIONS")
	paymentRouter.HandleFunc("/preview", paymentHandler.Preview).Methods("POST", "OPTIONS")
	paymentRouter.HandleFunc("/registration/review", paymentHandler.Review).Methods("POST", "OPTIONS")
	paymentRouter.HandleFunc("/registration", paymentHandler.SaveRegistration).Methods("POST", "OPTIONS")
	paymentRouter.HandleFunc("/proof", paymentHandler.UploadProof).Methods("POST", "OPTIONS")
	paymentRouter.HandleFunc("/confirmation", paymentHandler.SubmitConfirmation).Methods("POST", "OPTIONS")
	paymentRouter.HandleFunc("/finish", paymentHandler.Finish).Methods("POST", "OPTIONS")

	// Routes Admin (protégées par Auth + RequireAdmin)
	adminRouter := protected.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.RequireAdmin())
	adminRouter.HandleFunc("/payments", adminPaymentHandler.ListPayments).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/countries/{country_id}/payment", adminPaymentHandler.CountryPayment).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/countries/{country_id}/paid-before", adminPaymentHandler.SetPaidBefore).Methods("PUT", "OPTIONS")

	// Démarrer le serveur
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Serveur démarré sur http://%s", addr)
		log.Printf("📝 Environnement: %s", cfg.Environment)
		log.Printf("🗄️  Base de données: %s", cfg.StoreBackend)
		log.Printf("💶 Formule active: %s", engine.CurrentPlan())
		log.Println("📋 Routes disponibles:")
		log.Println("   GET    /api/health                              - Health check")
		log.Println("   GET    /metrics                                 - Métriques Prometheus")
		log.Println("")
		log.Println("   🌍 Parcours pays (authentifié):")
		log.Println("   GET    /api/payment                             - Reprendre le parcours")
		log.Println("   POST   /api/payment/preview                     - Calcul des montants")
		log.Println("   POST   /api/payment/registration/review         - Récapitulatif avant confirmation")
		log.Println("   POST   /api/payment/registration                - Enregistrer l'étape 1")
		log.Println("   POST   /api/payment/proof                       - Envoyer la preuve de paiement")
		log.Println("   POST   /api/payment/confirmation                - Enregistrer l'étape 2")
		log.Println("   POST   /api/payment/finish                      - Terminer")
		log.Println("")
		log.Println("   👑 Routes Admin:")
		log.Println("   GET    /api/admin/payments                      - Tableau des paiements")
		log.Println("   GET    /api/admin/countries/{id}/payment        - Détail d'un pays")
		log.Println("   PUT    /api/admin/countries/{id}/paid-before    - Montant déjà réglé")
		log.Println("\n✨ Le serveur est prêt à recevoir des requêtes!")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Erreur du serveur: %v", err)
		}
	}()

	// Attendre le signal d'arrêt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Arrêt du serveur...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Erreur lors de l'arrêt du serveur: %v", err)
	}
	log.Println("✓ Serveur arrêté proprement")
}

// loadPricing charge la grille (fichier optionnel) puis applique les dates de bascule de l'environnement
func loadPricing(cfg *config.Config) (*pricing.Engine, error) {
	tables := pricing.DefaultTables()
	if cfg.PricingFile != "" {
		loaded, err := pricing.LoadTables(cfg.PricingFile)
		if err != nil {
			return nil, err
		}
		tables = loaded
		log.Printf("✓ Grille tarifaire chargée depuis %s", cfg.PricingFile)
	}
	if !cfg.EarlyBirdEnd.IsZero() {
		tables.EarlyBirdEnd = cfg.EarlyBirdEnd
	}
	if !cfg.RegularEnd.IsZero() {
		tables.RegularEnd = cfg.RegularEnd
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	log.Printf("✓ Bascules tarifaires: early bird jusqu'au %s, regular jusqu'au %s",
		tables.EarlyBirdEnd.Format(time.RFC3339), tables.RegularEnd.Format(time.RFC3339))
	return pricing.NewEngine(tables), nil
}
