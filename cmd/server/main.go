package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/fleetmate/loan-ledger/internal/config"
	"github.com/fleetmate/loan-ledger/internal/handler"
	"github.com/fleetmate/loan-ledger/internal/report"
	"github.com/fleetmate/loan-ledger/internal/repository"
	"github.com/fleetmate/loan-ledger/internal/service"
	"github.com/fleetmate/loan-ledger/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	paymentRepo := repository.NewPaymentRepository(db)
	truckRepo := repository.NewTruckRepository(db)

	// Initialize services
	truckDirectory := service.NewTruckDirectory(truckRepo, redisClient, cfg.Redis.TruckCacheTTL)
	ledgerService := service.NewLedgerService(paymentRepo, truckDirectory, report.NewExcelExporter())
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(ledgerHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(ledgerHandler *handler.LedgerHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware, response.CORSMiddleware)

	// Health checks
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// Loan ledger
	router.HandleFunc("/addLoanCalculation", ledgerHandler.AddLoanCalculation).Methods("POST")
	router.HandleFunc("/getAllLoanCalculationsByTruckId", ledgerHandler.GetAllLoanCalculationsByTruckID).Methods("GET")
	router.HandleFunc("/getAllLoanCalculationsByUserId", ledgerHandler.GetAllLoanCalculationsByUserID).Methods("GET")
	router.HandleFunc("/deleteLoanCalculationById/{id}", ledgerHandler.DeleteLoanCalculationByID).Methods("DELETE")
	router.HandleFunc("/downloadLoanCalculationExcel", ledgerHandler.DownloadLoanCalculationExcel).Methods("GET")
	router.HandleFunc("/downloadAllLoanCalculationExcel", ledgerHandler.DownloadAllLoanCalculationExcel).Methods("GET")

	return router
}
