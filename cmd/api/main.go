package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/database"
	"lending-service/internal/handler"
	"lending-service/internal/middleware"
	"lending-service/internal/repository"
	"lending-service/internal/service"
	"lending-service/pkg/scheduler"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Apply schema migrations
	if err := database.Migrate(cfg); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	repos := repository.NewRepository(db)

	// Initialize services
	services := service.NewService(service.Dependencies{
		Repos:  repos,
		Logger: log,
		Config: cfg,
	})

	// Initialize handlers
	handlers := handler.NewHandler(handler.Dependencies{
		Services: services,
		Logger:   log,
		Config:   cfg,
	})

	// Initialize router
	router := mux.NewRouter()

	// Gateway callback routes with webhook authentication
	callbacks := router.PathPrefix("/callbacks").Subrouter()
	callbacks.Use(middleware.WebhookAuthMiddleware(cfg.Webhook))
	callbacks.Use(middleware.LogMiddleware(log))
	callbacks.HandleFunc("/payments", handlers.Webhook.PaymentCallback).Methods(http.MethodPost)

	// Operator routes with JWT authentication
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	api.Use(middleware.LogMiddleware(log))

	// Loan endpoints
	api.HandleFunc("/loans", handlers.Loan.Disburse).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}", handlers.Loan.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/outstanding", handlers.Loan.Outstanding).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/payments", handlers.Loan.InitiatePayment).Methods(http.MethodPost)

	// Borrower endpoints
	api.HandleFunc("/borrowers/{id}/eligibility", handlers.Borrower.Eligibility).Methods(http.MethodGet)

	// Provider endpoints
	api.HandleFunc("/providers/{id}/trial-balance", handlers.Provider.TrialBalance).Methods(http.MethodGet)

	// Portfolio maintenance endpoints
	api.HandleFunc("/npl/run", handlers.NPL.Run).Methods(http.MethodPost)

	// Start the NPL scan scheduler
	nplScheduler := scheduler.NewScheduler(services.NPL, log)
	nplScheduler.Start(time.Duration(cfg.Scheduler.NPLScanHours) * time.Hour)
	defer nplScheduler.Stop()

	// Configure and start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline context for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server gracefully stopped")
}
