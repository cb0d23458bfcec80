// Package server assembles the HTTP router from the repositories, services
// and handlers of every module.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"ignitegigs/internal/config"
	"ignitegigs/internal/email"
	"ignitegigs/internal/gateway"
	"ignitegigs/internal/middleware"
	"ignitegigs/internal/modules/auth"
	"ignitegigs/internal/modules/booking"
	"ignitegigs/internal/modules/dispute"
	"ignitegigs/internal/modules/notification"
	"ignitegigs/internal/modules/payment"
	"ignitegigs/internal/modules/review"
	"ignitegigs/internal/pkg/jwt"
	"ignitegigs/internal/pkg/response"
	"ignitegigs/internal/ratelimit"
	"ignitegigs/internal/repository"
)

type Options struct {
	Config  *config.Config
	DB      *gorm.DB
	Gateway gateway.Gateway
	Mailer  email.Sender
	// Guard defaults to a fresh in-memory guard.
	Guard *ratelimit.Guard
	Log   zerolog.Logger
}

type Server struct {
	Router     *gin.Engine
	Hub        *notification.Hub
	Dispatcher *notification.Dispatcher
	Sweeper    *payment.RefundSweeper
	Tokens     *jwt.Service
}

func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil || opts.DB == nil || opts.Gateway == nil || opts.Mailer == nil {
		return nil, errors.New("server: config, db, gateway and mailer are required")
	}
	guard := opts.Guard
	if guard == nil {
		guard = ratelimit.NewGuard()
	}

	renderer, err := email.NewRenderer(cfg.AppURL)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(opts.DB)
	performerRepo := repository.NewPerformerRepository(opts.DB)
	bookingRepo := repository.NewBookingRepository(opts.DB)
	messageRepo := repository.NewMessageRepository(opts.DB)
	disputeRepo := repository.NewDisputeRepository(opts.DB)
	notificationRepo := repository.NewNotificationRepository(opts.DB)
	reviewRepo := repository.NewReviewRepository(opts.DB)

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := notification.NewHub()
	dispatcher := notification.NewDispatcher(userRepo, notificationRepo, renderer, opts.Mailer, hub, opts.Log)

	authService := auth.NewService(userRepo, tokens, guard, opts.Log)
	bookingService := booking.NewService(bookingRepo, performerRepo, userRepo, messageRepo, dispatcher, opts.Log)
	paymentService := payment.NewService(bookingRepo, bookingService, performerRepo, opts.Gateway, dispatcher, payment.Config{
		Currency:         cfg.Currency,
		WebhookSecret:    cfg.StripeWebhookSecret,
		WebhookTolerance: cfg.WebhookTolerance,
	}, opts.Log)
	disputeService := dispute.NewService(disputeRepo, bookingRepo, bookingService, dispatcher, opts.Log)
	reviewService := review.NewService(reviewRepo, bookingRepo, performerRepo, bookingService, dispatcher, opts.Log)
	notificationService := notification.NewService(notificationRepo)
	sweeper := payment.NewRefundSweeper(bookingRepo, opts.Gateway, opts.Log)

	authHandler := auth.NewHandler(authService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService)
	sweepHandler := payment.NewSweepHandler(sweeper, cfg.RefundBatch)
	disputeHandler := dispute.NewHandler(disputeService)
	reviewHandler := review.NewHandler(reviewService)
	notificationHandler := notification.NewHandler(notificationService, hub, tokens, opts.Log)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins...))

	r.GET("/health", health(opts.DB, hub))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// The gateway retries from a small set of addresses; limiting it would
	// turn a burst of deliveries into lost confirmations.
	paymentHandler.RegisterWebhook(v1)

	internal := v1.Group("/internal")
	internal.Use(middleware.InternalTokenAuth(cfg.InternalToken, cfg.InternalAllowedIPs))
	sweepHandler.RegisterInternalRoutes(internal)

	public := v1.Group("")
	public.Use(middleware.RateLimit(guard, ratelimit.Default))
	authHandler.RegisterPublicRoutes(public,
		middleware.RateLimit(guard, ratelimit.Login),
		middleware.RateLimit(guard, ratelimit.Signup),
	)
	notificationHandler.RegisterWS(public)
	reviewHandler.RegisterRoutes(public, nil)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(tokens), middleware.RateLimit(guard, ratelimit.API))
	{
		authHandler.RegisterProtectedRoutes(protected)
		bookingHandler.RegisterRoutes(protected, middleware.RateLimit(guard, ratelimit.Booking))
		paymentHandler.RegisterRoutes(protected)
		disputeHandler.RegisterRoutes(protected, middleware.RateLimit(guard, ratelimit.Contact))
		notificationHandler.RegisterRoutes(protected)
		reviewHandler.RegisterRoutes(nil, protected)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	disputeHandler.RegisterAdminRoutes(admin)

	return &Server{
		Router:     r,
		Hub:        hub,
		Dispatcher: dispatcher,
		Sweeper:    sweeper,
		Tokens:     tokens,
	}, nil
}

func health(db *gorm.DB, hub *notification.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is not reachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"status":       "ok",
			"ws_clients":   hub.OnlineCount(),
			"generated_at": time.Now().UTC(),
		})
	}
}
