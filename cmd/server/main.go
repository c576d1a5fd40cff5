package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	"github.com/talobank/backend/internal/config"
	"github.com/talobank/backend/internal/database"
	"github.com/talobank/backend/internal/dialog"
	"github.com/talobank/backend/internal/gateway"
	"github.com/talobank/backend/internal/handlers"
	mW "github.com/talobank/backend/internal/middleware"
	"github.com/talobank/backend/internal/services"
	"github.com/talobank/backend/internal/store"
)

func main() {
	// Initialize config
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("gateway.base_url", "GATEWAY_BASE_URL")
	viper.BindEnv("gateway.token", "GATEWAY_TOKEN")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize infrastructure
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	cfg := config.LoadEngineConfig()
	st := store.New(db)

	// Initialize services
	issuer := services.NewIssuerService(cfg, st.AccountNumberExists, st.CardNumberExists)
	rates := services.NewRatesService(redisClient, cfg)
	transfer := services.NewTransferService(st.DB(), rates)
	accrual := services.NewAccrualService(st.DB(), cfg)
	messenger := gateway.NewClient()

	engine := dialog.New(dialog.Deps{
		Config:    cfg,
		Messenger: messenger,
		Parties:   st,
		Accounts:  st,
		Cards:     st,
		Ledger:    st,
		Issuer:    issuer,
		Transfer:  transfer,
		Rates:     rates,
	})

	webhookHandler := handlers.NewWebhookHandler(engine)
	adminHandler := handlers.NewAdminHandler(st)

	// The accrual job ticks daily; its elapsed-calendar-month guard turns
	// that into an effectively monthly run per account.
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	go accrual.RunLoop(jobCtx, 24*time.Hour)

	// Setup router
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Post("/webhook", webhookHandler.HandleEvent)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/admin/login", adminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/admin/parties", adminHandler.ListParties)
			r.Get("/admin/accounts", adminHandler.ListAccounts)
			r.Get("/admin/cards", adminHandler.ListCards)
			r.Get("/admin/ledger", adminHandler.ListLedger)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	stopJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
