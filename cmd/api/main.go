package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kunalsh/splitledger/internal/config"
	"github.com/kunalsh/splitledger/internal/database"
	"github.com/kunalsh/splitledger/internal/expense"
	expensesplit "github.com/kunalsh/splitledger/internal/expense/split"
	"github.com/kunalsh/splitledger/internal/group"
	"github.com/kunalsh/splitledger/internal/settlement"
	"github.com/kunalsh/splitledger/internal/user"
	"github.com/kunalsh/splitledger/pkg/logging"
	mw "github.com/kunalsh/splitledger/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("connected to database")

	// Split strategy factory
	splitFactory := expensesplit.NewFactory()

	// Repositories
	groupRepo := group.NewRepository(db)
	expenseRepo := expense.NewRepository(db)
	settlementRepo := settlement.NewRepository(db)

	// Services
	groupService := group.NewService(groupRepo, expenseRepo, cfg.OpTimeout)
	expenseService := expense.NewService(expenseRepo, groupRepo, splitFactory, cfg.OpTimeout)
	settlementService := settlement.NewService(settlementRepo, groupRepo, expenseRepo, cfg.OpTimeout)
	userService := user.NewService(groupRepo, expenseService, cfg.OpTimeout)

	// Handlers
	groupHandler := group.NewHandler(groupService, expenseService, settlementService)
	expenseHandler := expense.NewHandler(expenseService, settlementService)
	userHandler := user.NewHandler(userService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RequireIdentity)

		// Mount feature routers
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/users", userHandler.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server starting", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
