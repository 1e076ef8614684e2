package main

import (
	"os"
	"time"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"museumvisit/internal/config"
	"museumvisit/internal/database"
	"museumvisit/internal/middleware"
	"museumvisit/internal/modules/booking"
	"museumvisit/internal/modules/checkin"
	"museumvisit/internal/modules/feed"
	"museumvisit/internal/modules/qr"
	"museumvisit/internal/modules/token"
	"museumvisit/internal/notification"
	"museumvisit/internal/repository"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	bookingRepo := repository.NewBookingRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	notifs := notification.NewLogSender(&log)
	hub := feed.NewHub()
	defer hub.Close()

	codec := qr.NewCodec(cfg.QRSecret)
	qrService := qr.NewService(codec, visitorRepo, tokenRepo, bookingRepo)

	bookingService := booking.NewService(
		bookingRepo, visitorRepo, tokenRepo,
		qrService, notifs, &log,
		cfg.SlotCapacity, cfg.PartyLimit, cfg.TokenTTL,
	)
	bookingHandler := booking.NewHandler(bookingService)

	tokenService := token.NewService(
		tokenRepo, bookingRepo, visitorRepo,
		qrService, notifs, &log, cfg.TokenTTL,
	)
	tokenHandler := token.NewHandler(tokenService)

	checkinService := checkin.NewService(
		qrService, visitorRepo, tokenRepo,
		bookingService, hub, notifs, &log,
	)
	checkinHandler := checkin.NewHandler(checkinService)
	feedHandler := feed.NewHandler(hub, &log)

	r := gin.New()
	r.Use(middleware.RequestLogger(&log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.MaxAge = 10 * time.Minute
	r.Use(cors.New(corsCfg))

	v1 := r.Group("/api/v1")
	{
		bookingHandler.RegisterRoutes(v1)
		tokenHandler.RegisterRoutes(v1)
		checkinHandler.RegisterRoutes(v1)
		feedHandler.RegisterRoutes(v1)
	}

	log.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}
