package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/HammerMeetNail/braincast/internal/assets"
	"github.com/HammerMeetNail/braincast/internal/config"
	"github.com/HammerMeetNail/braincast/internal/database"
	"github.com/HammerMeetNail/braincast/internal/handlers"
	"github.com/HammerMeetNail/braincast/internal/logging"
	"github.com/HammerMeetNail/braincast/internal/middleware"
	"github.com/HammerMeetNail/braincast/internal/services"
	"github.com/HammerMeetNail/braincast/internal/workers"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.Default
	level := logging.ParseLevel(cfg.Server.LogLevel)
	if cfg.Server.Debug {
		level = logging.LevelDebug
	}
	logging.SetDefaultLevel(level)
	logger.Info("Starting BrainCast server", logging.Fields{"env": cfg.Server.Environment})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to PostgreSQL", logging.Fields{"host": cfg.Database.Host, "port": cfg.Database.Port})
	db, err := database.ConnectPostgres(ctx, cfg.Database, database.DefaultPoolSettings)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	logger.Info("Running database migrations")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations", cfg.Server.Debug)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Closing migrator", logging.Fields{"error": err.Error()})
	}

	logger.Info("Connecting to Redis", logging.Fields{"addr": cfg.Redis.Addr()})
	redisDB, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	// Services
	dbAdapter := services.NewPoolAdapter(db.Pool)

	var notifyWG sync.WaitGroup
	notificationService := services.NewNotificationService(dbAdapter, services.NotificationConfig{
		AppURL:      cfg.Notifications.AppURL,
		Timeout:     cfg.Notifications.Timeout,
		Concurrency: cfg.Notifications.Concurrency,
	})
	notificationService.SetAsync(func(fn func()) {
		notifyWG.Add(1)
		go func() {
			defer notifyWG.Done()
			fn()
		}()
	})

	sessionService := services.NewSessionService(dbAdapter, redisDB.Client, cfg.Auth.SessionTTL)
	verifier := services.NewIdentityVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	friendService := services.NewFriendService(dbAdapter, notificationService)
	challengeService := services.NewChallengeService(dbAdapter, notificationService)
	quizService := services.NewQuizService(dbAdapter)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(sessionService, verifier, notificationService, cfg.Server.Secure)
	adminHandler := handlers.NewAdminHandler(cfg.Admin.PasswordHash, cfg.Server.Secure)
	friendHandler := handlers.NewFriendHandler(friendService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	quizHandler := handlers.NewQuizHandler(quizService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	manifest := assets.NewManifest("web/static")
	if err := manifest.Load(); err != nil {
		return fmt.Errorf("loading asset manifest: %w", err)
	}
	pageHandler, err := handlers.NewPageHandler("web/templates", cfg.Notifications.AppURL, manifest)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	// Middleware
	metrics := middleware.NewMetrics()
	authMiddleware := middleware.NewAuthMiddleware(sessionService)
	routeGate := middleware.NewRouteGate(metrics.Registerer())
	signInLimiter := middleware.NewSignInRateLimiter(redisDB.Client, cfg.Auth.SignInPerMinute)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	cacheControl := middleware.NewCacheControl()
	requestLogger := middleware.NewRequestLogger(logger)
	requireAuth := authMiddleware.RequireAuth

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.Handle("GET /metrics", metrics.Handler())

	// Sign-in
	mux.HandleFunc("GET /api/auth/nonce", authHandler.Nonce)
	mux.Handle("POST /api/auth/signin", signInLimiter.Middleware(http.HandlerFunc(authHandler.SignIn)))
	mux.HandleFunc("POST /api/auth/signout", authHandler.SignOut)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.Handle("POST /api/admin/login", signInLimiter.Middleware(http.HandlerFunc(adminHandler.Login)))
	mux.HandleFunc("POST /api/admin/logout", adminHandler.Logout)

	// Friends
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(friendHandler.List)))
	mux.HandleFunc("POST /api/friends", friendHandler.SendRequest)
	mux.HandleFunc("POST /api/friends/{id}/accept", friendHandler.Accept)
	mux.HandleFunc("POST /api/friends/{id}/decline", friendHandler.Decline)

	// Challenges
	mux.Handle("GET /api/challenges", requireAuth(http.HandlerFunc(challengeHandler.List)))
	mux.HandleFunc("POST /api/challenges", challengeHandler.Create)
	mux.HandleFunc("POST /api/challenges/{id}/decline", challengeHandler.Decline)
	mux.HandleFunc("PATCH /api/challenges/{id}", challengeHandler.Update)

	// Quizzes
	mux.HandleFunc("GET /api/categories", quizHandler.Categories)
	mux.HandleFunc("GET /api/quizzes", quizHandler.List)
	mux.HandleFunc("POST /api/quizzes", quizHandler.Create)
	mux.HandleFunc("GET /api/quizzes/{id}", quizHandler.Get)

	// Notification tokens
	mux.HandleFunc("POST /api/notifications/tokens", notificationHandler.RegisterToken)
	mux.HandleFunc("DELETE /api/notifications/tokens", notificationHandler.RemoveTokens)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))

	// Pages share one shell; the route gate below decides who may see them.
	for _, page := range []string{"/{$}", "/login", "/quiz/{id}", "/profile", "/social", "/create", "/admin", "/admin/login"} {
		mux.HandleFunc("GET "+page, pageHandler.Index)
	}
	mux.HandleFunc("GET /", pageHandler.NotFound)

	// Build middleware chain (outermost last)
	var handler http.Handler = mux
	handler = routeGate.Apply(handler)
	handler = authMiddleware.Authenticate(handler)
	handler = cacheControl.Apply(handler)
	handler = securityHeaders.Apply(handler)
	handler = metrics.Apply(handler)
	handler = requestLogger.Apply(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanup, err := workers.NewCleanup(sessionService, cfg.Jobs.CleanupInterval, logger)
	if err != nil {
		return fmt.Errorf("scheduling cleanup: %w", err)
	}
	cleanup.Start()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", logging.Fields{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		_ = cleanup.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server.SetKeepAlivesEnabled(false)
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Could not gracefully shut down the server", logging.Fields{"error": err.Error()})
	}
	if err := cleanup.Stop(); err != nil {
		logger.Warn("Stopping scheduler", logging.Fields{"error": err.Error()})
	}
	notifyWG.Wait()
	logger.Info("Server stopped")
	return nil
}
