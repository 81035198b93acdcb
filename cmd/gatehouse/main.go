package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gatehouse-dev/gatehouse/config"
	"github.com/gatehouse-dev/gatehouse/flow"
	"github.com/gatehouse-dev/gatehouse/logger"
	"github.com/gatehouse-dev/gatehouse/mail"
	"github.com/gatehouse-dev/gatehouse/persistence"
	"github.com/gatehouse-dev/gatehouse/session"
	"github.com/gatehouse-dev/gatehouse/token"
	"github.com/gatehouse-dev/gatehouse/web"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()

	logger.Log.Info("Starting Gatehouse",
		zap.Int("port", cfg.Port),
		zap.String("db_type", cfg.DBType),
	)

	store, err := persistence.NewStorage(cfg.DBType, cfg.DSN, nil)
	if err != nil {
		logger.Log.Fatal("failed to initialize storage", zap.Error(err))
	}
	if !cfg.SkipAutoMigrate {
		if err := store.(*persistence.Repository).AutoMigrate(); err != nil {
			logger.Log.Fatal("failed to migrate schema", zap.Error(err))
		}
	}

	var mailer mail.Mailer
	switch cfg.MailProvider {
	case "sendgrid":
		mailer = mail.NewSendGridMailer(cfg.MailAPIKey, cfg.MailSender)
	default:
		mailer = mail.NewLogMailer(logger.Log)
	}

	codec := token.NewCodec(cfg.SecretKey)
	hasher := flow.NewBcryptHasher(cfg.BcryptCost)
	sessions := session.NewManager(store)

	h := web.NewHandler(
		store,
		sessions,
		flow.NewRegistrationManager(store, hasher),
		flow.NewLoginManager(store, hasher),
		flow.NewVerificationManager(store, codec, mailer, cfg.BaseURL),
		flow.NewRecoveryManager(store, codec, mailer, hasher, cfg.BaseURL),
		flow.NewAccountManager(store),
	)

	e := echo.New()
	e.HideBanner = true
	e.Renderer = web.NewRenderer()
	e.HTTPErrorHandler = h.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimit),
			Burst:     int(cfg.RateLimit) * 2,
			ExpiresIn: 3 * time.Minute,
		}),
	}))

	h.RegisterRoutes(e)

	logger.Log.Info("Server is starting", zap.Int("port", cfg.Port))
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Log.Fatal("server failed to start", zap.Error(err))
	}
}
