package main

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	"flexFitAPI/handlers"
	"flexFitAPI/middleware"
	"flexFitAPI/services"

	_ "net/http/pprof"
)

var (
	firestoreClient  *firestore.Client
	recordStore      *services.FirestoreRecordStore
	sessionManager   *services.SessionManager
	dashboardService *services.DashboardService
	summaryLoaders   *services.SummaryLoaderRegistry
	rewardService    *services.RewardService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app, err := firebase.NewApp(ctx, nil, firebaseCredentials())
	if err != nil {
		log.Fatal("Failed to initialize Firebase app:", err)
	}

	firestoreClient, err = app.Firestore(ctx)
	if err != nil {
		log.Fatal("Failed to create Firestore client:", err)
	}
	log.Println("Successfully connected to Firestore")

	collection := os.Getenv("ACTIVITY_COLLECTION")
	if collection == "" {
		collection = "user_stats"
	}

	recordStore = services.NewFirestoreRecordStore(firestoreClient, collection)
	sessionManager = services.NewSessionManager(recordStore)
	dashboardService = services.NewDashboardService(recordStore)
	summaryLoaders = services.NewSummaryLoaderRegistry(dashboardService)
	rewardService = services.NewRewardService(dashboardService)

	middleware.InitPrometheus()
}

// firebaseCredentials prefers the Base64 encoded service account from
// the environment and falls back to a local key file.
func firebaseCredentials() option.ClientOption {
	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			log.Fatal("Failed to decode FIREBASE_SERVICE_ACCOUNT_JSON:", err)
		}
		log.Println("Firebase: using credentials from FIREBASE_SERVICE_ACCOUNT_JSON")
		return option.WithCredentialsJSON(decoded)
	}

	log.Println("Firebase: using local service account key file")
	return option.WithCredentialsFile("./serviceAccountKey.json")
}

func main() {
	defer func() {
		log.Println("Closing Firestore client...")
		firestoreClient.Close()
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler()
	sessionHandler := handlers.NewSessionHandler(sessionManager)
	liveSessionHandler := handlers.NewLiveSessionHandler(sessionManager)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, summaryLoaders)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	exerciseHandler := handlers.NewExerciseHandler()

	r := mux.NewRouter()

	// Registered on the root router: the upgrade needs a hijackable
	// response writer, which the monitoring wrapper is not.
	r.HandleFunc("/api/v1/sessions/ws", liveSessionHandler.Connect)

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()
	go sessionManager.ReapIdle()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "flexFit-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")

	protected.HandleFunc("/sessions", sessionHandler.StartSession).Methods("POST")
	protected.HandleFunc("/sessions/{sessionId}", sessionHandler.GetSession).Methods("GET")
	protected.HandleFunc("/sessions/{sessionId}/increment", sessionHandler.Increment).Methods("POST")
	protected.HandleFunc("/sessions/{sessionId}", sessionHandler.EndSession).Methods("DELETE")

	protected.HandleFunc("/dashboard/days", dashboardHandler.GetDays).Methods("GET")
	protected.HandleFunc("/dashboard/summary", dashboardHandler.GetDailySummary).Methods("GET")
	protected.HandleFunc("/dashboard/select", dashboardHandler.SelectDay).Methods("POST")
	protected.HandleFunc("/dashboard/selected", dashboardHandler.GetSelectedSummary).Methods("GET")

	protected.HandleFunc("/rewards", rewardHandler.GetRewards).Methods("GET")
	protected.HandleFunc("/rewards/claim", rewardHandler.ClaimVoucher).Methods("POST")

	protected.HandleFunc("/exercises", exerciseHandler.GetExercises).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
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
		WriteTimeout: 10 * time.Second,
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

	// Flush live counting sessions so in-flight counts survive the
	// process exit.
	sessionManager.TerminateAll(shutdownCtx)

	log.Println("Server shutdown complete")
}
