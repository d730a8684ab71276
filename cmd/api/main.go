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

	"github.com/identity-api/internal/config"
	"github.com/identity-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/identity-api/internal/infrastructure/jwt"
	"github.com/identity-api/internal/infrastructure/memory"
	"github.com/identity-api/internal/infrastructure/smtp"
	transporthttp "github.com/identity-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Token signing is load-bearing for both flows — refuse to start without keys.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	deps := &transporthttp.Deps{
		Mailer:      smtp.NewMailer(cfg),
		JWTProvider: jwtProvider,
	}

	switch cfg.StoreBackend {
	case "memory":
		log.Println("WARN: using in-memory stores; all state is lost on restart")
		deps.OtpStore = memory.NewOtpStore(cfg.OtpTTL)
		deps.UserRepo = memory.NewUserStore()
		deps.UsedResetTokens = memory.NewUsedResetTokenStore()
	default:
		// Bootstrap DynamoDB tables (creates them if they don't exist).
		client := dynamo.NewClient(cfg)
		dynamo.Bootstrap(context.Background(), client, cfg.DynamoTables)
		deps.OtpStore = dynamo.NewOtpRepo(client, cfg.DynamoTables.Otps, cfg.OtpTTL)
		deps.UserRepo = dynamo.NewUserRepo(client, cfg.DynamoTables.Users)
		deps.UsedResetTokens = dynamo.NewUsedResetTokenRepo(client, cfg.DynamoTables.UsedResetTokens)
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, store=%s)", cfg.AppPort, cfg.AppEnv, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
