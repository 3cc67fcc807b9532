package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/fleetmate/loan-ledger/internal/config"
	"github.com/fleetmate/loan-ledger/internal/report"
	"github.com/fleetmate/loan-ledger/internal/repository"
	"github.com/fleetmate/loan-ledger/internal/service"
)

func main() {
	_ = godotenv.Load()

	log.Println("Starting ledger scheduler...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	truckDirectory := service.NewTruckDirectory(repository.NewTruckRepository(db), redisClient, cfg.Redis.TruckCacheTTL)
	ledgerService := service.NewLedgerService(repository.NewPaymentRepository(db), truckDirectory, report.NewExcelExporter())

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	_, err = c.AddFunc(cfg.Scheduler.BalanceCron, func() {
		runBalanceSweep(truckDirectory, ledgerService)
	})
	if err != nil {
		log.Fatalf("Error scheduling balance sweep job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

// runBalanceSweep warms the truck directory cache and logs the outstanding
// balance of every financed truck.
func runBalanceSweep(directory *service.TruckDirectory, ledger *service.LedgerService) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	trucks, err := directory.Warm(ctx)
	if err != nil {
		log.Printf("Balance sweep failed to list financed trucks: %v", err)
		return
	}

	for _, truck := range trucks {
		view, err := ledger.TruckLedger(ctx, truck.ID, nil)
		if err != nil {
			log.Printf("Balance sweep failed for truck %s: %v", truck.RegistrationNo, err)
			continue
		}
		log.Printf("truck=%s financed=%s paid=%s left=%s",
			truck.RegistrationNo,
			view.TotalFinanceAmount.StringFixed(2),
			view.TotalFinanceAmount.Add(view.TotalAdditionalCharges).Sub(view.PaymentLeft).StringFixed(2),
			view.PaymentLeft.StringFixed(2),
		)
	}

	log.Printf("Balance sweep completed for %d trucks", len(trucks))
}
