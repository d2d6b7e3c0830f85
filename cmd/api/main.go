package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/learnhub/learnhub-api/internal/config"
	"github.com/learnhub/learnhub-api/internal/domain/auth"
	"github.com/learnhub/learnhub-api/internal/domain/course"
	"github.com/learnhub/learnhub-api/internal/domain/dashboard"
	"github.com/learnhub/learnhub-api/internal/domain/enrollment"
	"github.com/learnhub/learnhub-api/internal/domain/payment"
	"github.com/learnhub/learnhub-api/internal/domain/quiz"
	"github.com/learnhub/learnhub-api/internal/domain/review"
	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/domain/user"
	"github.com/learnhub/learnhub-api/internal/domain/wallet"
	"github.com/learnhub/learnhub-api/internal/domain/wishlist"
	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/database"
	"github.com/learnhub/learnhub-api/internal/pkg/imaging"
	"github.com/learnhub/learnhub-api/internal/pkg/jwt"
	"github.com/learnhub/learnhub-api/internal/pkg/lock"
	"github.com/learnhub/learnhub-api/internal/pkg/logger"
	pkgresponse "github.com/learnhub/learnhub-api/internal/pkg/response"
	"github.com/learnhub/learnhub-api/internal/pkg/storage"
	"github.com/learnhub/learnhub-api/internal/pkg/voucher"
	"github.com/learnhub/learnhub-api/internal/scheduler"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting LearnHub API")

	db, err := database.NewPostgres(cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.Close("postgres", db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if redis != nil {
		defer database.Close("redis", redis)
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// Course covers are optional: a broken storage config disables uploads instead of the API.
	blobs, err := storage.New(storage.Config{
		Driver:      cfg.StorageDriver,
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		S3PublicURL: cfg.S3PublicURL,
		LocalPath:   cfg.LocalStoragePath,
		LocalURL:    cfg.LocalStorageURL,
	})
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StorageDriver).Msg("Storage unavailable, cover uploads disabled")
		blobs = nil
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	courseRepo := course.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	enrollmentRepo := enrollment.NewRepository(db)
	quizRepo := quiz.NewRepository(db)
	statisticsRepo := statistics.NewRepository(db)
	reviewRepo := review.NewRepository(db)
	dashboardRepo := dashboard.NewRepository(db)
	wishlistRepo := wishlist.NewRepository(db)

	// ---------- Services ----------
	statisticsService := statistics.NewService(statisticsRepo)
	authService := auth.NewService(userRepo, jwtService)
	courseService := course.NewService(courseRepo, statisticsService, blobs, imaging.NewProcessor(imaging.DefaultConfig()))
	paymentService := payment.NewService(paymentRepo)
	voucherTimeout := time.Duration(cfg.VoucherTimeoutSeconds) * time.Second
	vouchers := voucher.NewClient(cfg.VoucherBaseURL, cfg.VoucherAccountPhone, voucherTimeout)
	// the voucher lock outlives a full provider round trip
	walletService := wallet.NewService(walletRepo, statisticsService, vouchers, lock.New(redis, "lock:", voucherTimeout+5*time.Second))
	enrollmentService := enrollment.NewService(enrollmentRepo, statisticsService)
	quizService := quiz.NewService(quizRepo, lock.New(redis, "lock:quiz:", cfg.QuizLockTTL))
	reviewService := review.NewService(reviewRepo, statisticsService)
	dashboardService := dashboard.NewService(dashboardRepo)
	userService := user.NewService(userRepo)
	wishlistService := wishlist.NewService(wishlistRepo)

	// ---------- Background jobs ----------
	jobs := scheduler.New(time.Minute)
	if err := jobs.AddVoucherReconcile(cfg.VoucherReconcileSchedule, walletService); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule voucher reconciliation")
	}
	jobs.Start()

	h := handlers{
		auth:       auth.NewHandler(authService),
		course:     course.NewHandler(courseService),
		enrollment: enrollment.NewHandler(enrollmentService),
		quiz:       quiz.NewHandler(quizService),
		wallet:     wallet.NewHandler(walletService),
		payment:    payment.NewHandler(paymentService),
		statistics: statistics.NewHandler(statisticsService),
		review:     review.NewHandler(reviewService),
		dashboard:  dashboard.NewHandler(dashboardService),
		user:       user.NewHandler(userService),
		wishlist:   wishlist.NewHandler(wishlistService),
	}

	r := newRouter(cfg, jwtService, h)
	if cfg.StorageDriver == "local" && blobs != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalStoragePath))))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	jobs.Stop(ctx)
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type handlers struct {
	auth       *auth.Handler
	course     *course.Handler
	enrollment *enrollment.Handler
	quiz       *quiz.Handler
	wallet     *wallet.Handler
	payment    *payment.Handler
	statistics *statistics.Handler
	review     *review.Handler
	dashboard  *dashboard.Handler
	user       *user.Handler
	wishlist   *wishlist.Handler
}

func newRouter(cfg *config.Config, jwtService *jwt.Service, h handlers) chi.Router {
	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", h.auth.Routes(authMiddleware))
		r.Mount("/courses", h.course.Routes(authMiddleware, optionalAuth))
		r.Mount("/enrollments", h.enrollment.Routes(authMiddleware))
		r.Mount("/quizzes", h.quiz.Routes(authMiddleware))
		r.Mount("/wallet", h.wallet.Routes(authMiddleware))
		r.Mount("/payments", h.payment.Routes(authMiddleware))
		r.Mount("/statistics", h.statistics.Routes())
		r.Mount("/reviews", h.review.Routes(authMiddleware))
		r.Mount("/dashboard", dashboard.Routes(h.dashboard, authMiddleware))
		r.Mount("/users", h.user.Routes(authMiddleware))
		r.Mount("/wishlist", h.wishlist.Routes(authMiddleware))
	})

	return r
}
