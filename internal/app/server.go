// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"postsaathi-service/internal/config"
	"postsaathi-service/internal/db"
	adminHandler "postsaathi-service/internal/handlers/admin"
	authHandler "postsaathi-service/internal/handlers/auth"
	customerHandler "postsaathi-service/internal/handlers/customer"
	dashboardHandler "postsaathi-service/internal/handlers/dashboard"
	investmentHandler "postsaathi-service/internal/handlers/investment"
	uploadHandler "postsaathi-service/internal/handlers/upload"
	"postsaathi-service/internal/middleware"
	"postsaathi-service/internal/pkg/fieldcrypt"
	"postsaathi-service/internal/pkg/ratelimit"
	"postsaathi-service/internal/pkg/token"
	"postsaathi-service/internal/repository/postgres"
	"postsaathi-service/internal/scheduler"
	authUsecase "postsaathi-service/internal/service/auth"
	customersvc "postsaathi-service/internal/service/customer"
	"postsaathi-service/internal/service/followup"
	investmentsvc "postsaathi-service/internal/service/investment"
	"postsaathi-service/internal/service/notify"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	stopScheduler context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	// ----- Redis (optional) -----
	rdb, err := connectRedis(s.cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		logger.Info("connected to Redis", zap.String("addr", s.cfg.RedisAddr))
	} else {
		logger.Warn("Redis not configured, rate limiting and scan locking disabled")
	}

	// ----- Field encryption -----
	codec, err := fieldcrypt.New(s.cfg.EncryptionKey, logger)
	if err != nil {
		return fmt.Errorf("failed to build field codec: %w", err)
	}

	// ----- Tokens -----
	if s.cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be configured")
	}
	secret := []byte(s.cfg.JWTSecret)
	tokenGenerator := token.NewGenerator(secret, s.cfg.JWTIssuer, s.cfg.TokenTTL)
	tokenVerifier := token.NewVerifier(secret, s.cfg.JWTIssuer)

	// ----- Notification sinks -----
	smsSender := notify.NewTwilioSender(
		s.cfg.TwilioAccountSID,
		s.cfg.TwilioAuthToken,
		s.cfg.TwilioFromNumber,
		logger,
	)
	whatsapp := notify.NewWhatsAppNotifier(s.cfg.WhatsAppToken, s.cfg.WhatsAppPhoneID, logger)

	// ----- Repositories -----
	agentRepo := postgres.NewAgentRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	investmentRepo := postgres.NewInvestmentRepository(pool)
	scanStore := postgres.NewScanStore(pool)

	// ----- Services -----
	limiter := ratelimit.NewLimiter(rdb)
	authService := authUsecase.NewService(
		agentRepo,
		codec,
		tokenGenerator,
		tokenVerifier,
		smsSender,
		limiter,
		s.cfg.AdminSecret,
		s.cfg.EncryptAgentMobile,
		logger,
	)
	customerService := customersvc.NewService(customerRepo, codec, logger)
	investmentService := investmentsvc.NewService(investmentRepo, customerRepo, agentRepo, logger)

	var locker *redislock.Client
	if rdb != nil && s.cfg.ScanUseLock {
		locker = redislock.New(rdb)
	}
	engine := followup.NewEngine(scanStore, codec, whatsapp, locker, s.cfg.EncryptAgentMobile, logger)

	// ----- Scheduler -----
	schedulerCtx, cancel := context.WithCancel(context.Background())
	s.stopScheduler = cancel
	daily := scheduler.NewDaily(s.cfg.ScanHour, func(ctx context.Context) error {
		_, err := engine.RunPass(ctx)
		return err
	}, logger)
	go daily.Run(schedulerCtx)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	customerHandlerInst := customerHandler.NewCustomerHandler(customerService)
	investmentHandlerInst := investmentHandler.NewInvestmentHandler(investmentService)
	uploadHandlerInst := uploadHandler.NewUploadHandler(customerService, investmentService, logger)
	dashboardHandlerInst := dashboardHandler.NewDashboardHandler(investmentService)
	adminHandlerInst := adminHandler.NewAdminHandler(authService, investmentService, engine, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:       authHandlerInst,
		CustomerHandler:   customerHandlerInst,
		InvestmentHandler: investmentHandlerInst,
		UploadHandler:     uploadHandlerInst,
		DashboardHandler:  dashboardHandlerInst,
		AdminHandler:      adminHandlerInst,
		AuthMiddleware:    authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Stop halts background work; in-flight HTTP requests are left to the
// process supervisor.
func (s *Server) Stop() {
	if s.stopScheduler != nil {
		s.stopScheduler()
	}
}

// connectRedis returns nil without error when no address is configured;
// everything that depends on Redis degrades gracefully.
func connectRedis(cfg config.AppConfig) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client, err := db.NewRedisClient(db.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		PoolSize: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
