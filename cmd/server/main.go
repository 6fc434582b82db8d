package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "shopledger/internal/adapters/web"
	"shopledger/internal/app"
	"shopledger/internal/core"
	"shopledger/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	wholesalerService := core.NewWholesalerService(pool)
	billService := core.NewBillService(pool)
	paymentService := core.NewPaymentService(pool)
	balanceService := core.NewBalanceService(pool)

	svc := app.NewAppService(pool, wholesalerService, billService, paymentService, balanceService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
