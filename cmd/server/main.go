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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/unclebandit/framestorm-backend/internal/config"
	"github.com/unclebandit/framestorm-backend/internal/controller"
	"github.com/unclebandit/framestorm-backend/internal/dashboard"
	"github.com/unclebandit/framestorm-backend/internal/db"
	"github.com/unclebandit/framestorm-backend/internal/generator"
	"github.com/unclebandit/framestorm-backend/internal/handler"
	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/middleware"
	"github.com/unclebandit/framestorm-backend/internal/queue"
	"github.com/unclebandit/framestorm-backend/internal/repository"
	"github.com/unclebandit/framestorm-backend/internal/service"
	"github.com/unclebandit/framestorm-backend/internal/session"
	"github.com/unclebandit/framestorm-backend/internal/storage"
)

func main() {
	log := logger.Get("server")

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on OS environment variables")
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.WithError(err).Fatal("failed to init logger")
	}
	log = logger.Get("server")

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	socialRepo := &repository.SocialAccountRepository{DB: conn}
	activityRepo := &repository.ActivityRepository{DB: conn}
	recorder := service.NewActivityRecorder(activityRepo)

	// Activity queue: RabbitMQ when configured, otherwise in process
	var q queue.Queue
	if cfg.Queue.URL != "" {
		amqpQueue, err := queue.DialAMQP(cfg.Queue.URL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to queue")
		}
		defer amqpQueue.Close()
		q = amqpQueue
	} else {
		mem := queue.NewInMemoryQueue()
		queue.StartActivitySubscriber(mem, cfg.Queue.Topic, recorder.Handle)
		q = mem
	}
	events := &queue.Events{Queue: q, Topic: cfg.Queue.Topic}

	var blobs storage.BlobStore
	switch cfg.Storage.Backend {
	case "disk":
		blobs = &storage.DiskStore{Root: cfg.Storage.DiskRoot, Bucket: cfg.Storage.Bucket, MaxBytes: cfg.Storage.MaxUploadBytes}
	default:
		blobs = &storage.PostgresStore{
			Repo:     &repository.BlobRepository{DB: conn},
			Bucket:   cfg.Storage.Bucket,
			MaxBytes: cfg.Storage.MaxUploadBytes,
		}
	}

	catalog := generator.DefaultCatalog()
	var gen generator.Generator
	switch cfg.Generation.Backend {
	case "gemini":
		gen, err = generator.NewGemini(ctx, cfg.Generation.GeminiAPIKey, cfg.Generation.GeminiModel, catalog)
		if err != nil {
			log.WithError(err).Fatal("failed to create gemini client")
		}
	default:
		gen = generator.NewSimulated(generator.Delays{
			Video:     cfg.Generation.VideoDelay,
			Blog:      cfg.Generation.BlogDelay,
			Instagram: cfg.Generation.InstagramDelay,
		}, catalog)
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		Blobs:        blobs,
		Events:       events,
	}
	socialService := &service.SocialService{
		Repo:        socialRepo,
		Events:      events,
		UploadDelay: cfg.Social.UploadDelay,
	}
	dash := dashboard.NewManager(campaignService, gen, events)
	sessions := session.NewProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	// Janitor: idle dashboard sessions, expired revocations and idle rate limiters
	janitor := cron.New()
	if err := dash.ScheduleSweep(janitor, cfg.Session.SweepSchedule, cfg.Session.IdleTTL); err != nil {
		log.WithError(err).Fatal("failed to schedule janitor")
	}
	if _, err := janitor.AddFunc(cfg.Session.SweepSchedule, func() {
		if n := sessions.PurgeExpired(); n > 0 {
			log.WithField("tokens", n).Debug("purged expired revocations")
		}
	}); err != nil {
		log.WithError(err).Fatal("failed to schedule janitor")
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	if _, err := janitor.AddFunc(cfg.Session.SweepSchedule, func() {
		if n := limiter.EvictIdle(cfg.Session.IdleTTL); n > 0 {
			log.WithField("buckets", n).Debug("evicted idle rate limiters")
		}
	}); err != nil {
		log.WithError(err).Fatal("failed to schedule janitor")
	}
	janitor.Start()
	defer janitor.Stop()

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		Dashboard:       dash,
		MaxUploadBytes:  cfg.Storage.MaxUploadBytes,
	}
	dashboardController := &controller.DashboardController{
		Dashboard:      dash,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		WaitTimeout:    cfg.Server.WriteTimeout - time.Second,
	}
	socialController := &controller.SocialController{SocialService: socialService}
	promptController := &controller.PromptController{Catalog: catalog}
	sessionController := &controller.SessionController{Sessions: sessions, Dashboard: dash}
	activityHandler := &handler.ActivityHandler{Campaigns: campaignService, Activity: recorder}
	health := &handler.Health{DB: conn}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer, middleware.RequestLogger)

	r.Get("/health", health.Live)
	r.Get("/health/db", health.Database)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		// Reads
		r.Get("/campaigns", campaignController.ListCampaigns)
		r.Get("/campaigns/{id}", campaignController.GetCampaignDetails)
		r.Get("/campaigns/{id}/activity", activityHandler.ListCampaignActivity)
		r.Get("/dashboard", dashboardController.Get)
		r.Get("/social/{platform}", socialController.GetAccount)
		r.Get("/prompts", promptController.ListPrompts)

		// Mutations are rate limited per owner
		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			r.Post("/campaigns", campaignController.CreateCampaign)
			r.Post("/dashboard", dashboardController.Open)
			r.Delete("/dashboard", dashboardController.Close)
			r.Put("/dashboard/tab", dashboardController.SetTab)
			r.Post("/dashboard/generate", dashboardController.Generate)
			r.Put("/social/{platform}", socialController.SaveAccount)
			r.Post("/social/{platform}/upload", socialController.Upload)
			r.Post("/session/sign-out", sessionController.SignOut)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		// Use h2c so we can serve HTTP/2 without TLS
		Handler: h2c.NewHandler(r, &http2.Server{}),
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":       server.Addr,
			"storage":    cfg.Storage.Backend,
			"generation": cfg.Generation.Backend,
			"queue":      queueKind(cfg.Queue.URL),
		}).Info("server running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	awaitBackground(dash, q)
}

// awaitBackground lets in-flight generations finish, then flushes activity
// events still held by the in-process queue.
func awaitBackground(dash interface{ Wait() }, q queue.Queue) {
	dash.Wait()
	if mem, ok := q.(*queue.InMemoryQueue); ok {
		mem.Drain()
	}
}

func queueKind(url string) string {
	if url == "" {
		return "memory"
	}
	return "amqp"
}
