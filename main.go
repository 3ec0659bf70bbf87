package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	"github.com/bilwininc-ship-it/aianaliz/handlers"
	"github.com/bilwininc-ship-it/aianaliz/internal/database"
	"github.com/bilwininc-ship-it/aianaliz/internal/football"
	"github.com/bilwininc-ship-it/aianaliz/internal/play"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/product"
	"github.com/bilwininc-ship-it/aianaliz/middleware"
	"github.com/bilwininc-ship-it/aianaliz/services"

	_ "net/http/pprof"
)

var (
	dbStore          database.Store
	authClient       *fbauth.Client
	purchaseService  *services.PurchaseService
	matchPoolService *services.MatchPoolService
)

// unavailableVerifier stands in when the Play client could not be
// initialized; every verification reports not-verified, matching the
// error-means-false contract.
type unavailableVerifier struct{}

func (unavailableVerifier) VerifyPurchase(ctx context.Context, purchaseToken, productID string) bool {
	log.Println("Play verifier unavailable, rejecting purchase verification")
	return false
}

func (unavailableVerifier) VerifySubscription(ctx context.Context, purchaseToken, subscriptionID string) bool {
	log.Println("Play verifier unavailable, rejecting subscription verification")
	return false
}

// firebaseCredentials resolves the service account for the Firebase app:
// FIREBASE_SERVICE_ACCOUNT_JSON (Base64 encoded) first, then a local key
// file, then ambient default credentials.
func firebaseCredentials() []option.ClientOption {
	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			log.Fatal("Failed to decode FIREBASE_SERVICE_ACCOUNT_JSON:", err)
		}
		log.Println("Firebase: using credentials from FIREBASE_SERVICE_ACCOUNT_JSON")
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}
	if _, err := os.Stat("./serviceAccountKey.json"); err == nil {
		log.Println("Firebase: using credentials from ./serviceAccountKey.json")
		return []option.ClientOption{option.WithCredentialsFile("./serviceAccountKey.json")}
	}
	log.Println("Firebase: using default credentials")
	return nil
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbURL := os.Getenv("FIREBASE_DATABASE_URL")
	if dbURL == "" {
		log.Fatal("FIREBASE_DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: dbURL}, firebaseCredentials()...)
	if err != nil {
		log.Fatal("Failed to initialize Firebase app:", err)
	}

	dbClient, err := app.Database(ctx)
	if err != nil {
		log.Fatal("Failed to create Realtime Database client:", err)
	}
	dbStore = database.NewFirebaseStore(dbClient)
	log.Println("Successfully connected to Realtime Database")

	authClient, err = app.Auth(ctx)
	if err != nil {
		log.Fatal("Failed to create Auth client:", err)
	}

	catalog := product.DefaultCatalog()
	if raw := os.Getenv("PRODUCT_CATALOG_JSON"); raw != "" {
		catalog, err = product.CatalogFromJSON([]byte(raw))
		if err != nil {
			log.Fatal("Failed to parse PRODUCT_CATALOG_JSON:", err)
		}
		log.Printf("Product catalog loaded from environment (%d products)", len(catalog))
	}

	var verifier services.PurchaseVerifier
	playVerifier, err := play.NewVerifier(context.Background())
	if err != nil {
		log.Printf("Warning: Could not initialize Play verifier: %v", err)
		verifier = unavailableVerifier{}
	} else {
		verifier = playVerifier
		log.Println("Play verifier initialized successfully")
	}

	ledgerService := services.NewLedgerService(dbStore, catalog)
	purchaseService = services.NewPurchaseService(verifier, ledgerService)
	matchPoolService = services.NewMatchPoolService(dbStore, football.NewClient())

	middleware.InitPrometheus()
}

func main() {
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	matchPoolHandler := handlers.NewMatchPoolHandler(matchPoolService)

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		// A read of any path exercises the database connection; the
		// value itself does not matter.
		var probe json.RawMessage
		if err := dbStore.Get(ctx, "healthcheck", &probe); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "aianaliz-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	// The refresh trigger stays unauthenticated; schedulers hit it
	// without credentials. The rate limiter is its throttle.
	api.HandleFunc("/matchpool/refresh", matchPoolHandler.RefreshPool).Methods("POST")
	api.HandleFunc("/matchpool/status", matchPoolHandler.PoolStatus).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.FirebaseAuthMiddleware(authClient))

	protected.HandleFunc("/purchase/credits", purchaseHandler.VerifyAndAddCredits).Methods("POST")
	protected.HandleFunc("/purchase/premium", purchaseHandler.VerifyAndSetPremium).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
