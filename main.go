package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/auth"
	"github.com/propertyconnect/engine/pkg/chain"
	"github.com/propertyconnect/engine/pkg/config"
	"github.com/propertyconnect/engine/pkg/database"
	"github.com/propertyconnect/engine/pkg/handlers"
	"github.com/propertyconnect/engine/pkg/llm"
	"github.com/propertyconnect/engine/pkg/middleware"
	"github.com/propertyconnect/engine/pkg/places"
	"github.com/propertyconnect/engine/pkg/repositories"
	"github.com/propertyconnect/engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.Bool("chat_enabled", cfg.Chat.IsAvailable()),
		zap.Bool("notary_rpc", cfg.Ethereum.RPCURL != ""))

	ctx := context.Background()

	db, err := database.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(&cfg.Database, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		logger.Fatal("failed to build token service", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db)
	agentRepo := repositories.NewAgentRepository(db)
	buyerRepo := repositories.NewBuyerRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	metricRepo := repositories.NewMetricRepository(db)

	notary := chain.NewNotary(&cfg.Ethereum, logger)
	placesClient := places.NewClient(&cfg.Places, logger)
	chatClient := llm.NewClient(&cfg.Chat, logger)

	authService := services.NewAuthService(userRepo, buyerRepo, tokens, logger)
	userService := services.NewUserService(userRepo, agentRepo, buyerRepo, propertyRepo, logger)
	agentService := services.NewAgentService(agentRepo, propertyRepo, metricRepo, logger)
	propertyService := services.NewPropertyService(propertyRepo, agentRepo, transactionRepo, notary, placesClient, logger)
	reviewService := services.NewReviewService(reviewRepo, agentRepo, propertyRepo, logger)
	notaryService := services.NewNotaryService(notary, propertyRepo, userRepo, agentRepo, transactionRepo, metricRepo, logger)
	chatService := services.NewChatService(chatClient, logger)

	authMiddleware := auth.NewMiddleware(tokens, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, userService, logger).RegisterRoutes(mux, authMiddleware, limiter)
	handlers.NewUsersHandler(userService, propertyService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAgentsHandler(agentService, reviewService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPropertiesHandler(propertyService, reviewService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewChatHandler(chatService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewBlockchainHandler(notaryService, logger).RegisterRoutes(mux, authMiddleware, limiter)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("starting propertyconnect-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
