package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/handlers"
	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/services"
	"alfredoptarigan/mock-interview/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	catalog := config.DefaultCatalog()
	if cfg.Interview.CatalogPath != "" {
		catalog, err = config.LoadCatalog(cfg.Interview.CatalogPath)
		if err != nil {
			log.Fatalf("❌ Failed to load interview catalog: %v", err)
		}
	}
	log.Printf("✅ Interview catalog loaded (%d roles)", len(catalog.Roles))

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	resumeRepo := repositories.NewResumeRepository(db)
	interviewRepo := repositories.NewInterviewRepository(db)
	log.Println("✅ Repositories initialized successfully")

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	ctx := context.Background()

	// AI is optional: every AI path falls back to the catalog and heuristics.
	var gemini services.GeminiService
	if cfg.AI.GeminiAPIKey != "" {
		gemini, err = services.NewGeminiService(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, cfg.AI.EmbeddingModel)
		if err != nil {
			log.Printf("⚠️  Gemini unavailable: %v", err)
			gemini = nil
		}
	}

	llm, err := services.NewLLMClient(cfg.AI, gemini)
	if err != nil {
		log.Printf("⚠️  AI disabled, using heuristic scoring: %v", err)
		llm = nil
	} else {
		log.Printf("✅ AI provider ready (%s / %s)", llm.Provider(), llm.Model())
	}

	var knowledgeBase services.KnowledgeBase
	if gemini != nil {
		knowledgeBase, err = services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zlog)
		if err == nil {
			err = knowledgeBase.InitCollection(ctx)
		}
		if err != nil {
			log.Printf("⚠️  Qdrant unavailable, continuing without rubric context: %v", err)
			knowledgeBase = nil
		} else {
			log.Println("✅ Qdrant initialized successfully")
		}
	}

	callOpts := services.CallOptions{
		Timeout: cfg.AI.Timeout,
		Retry: services.RetryPolicy{
			Attempts:     cfg.AI.MaxRetries + 1,
			InitialDelay: cfg.AI.RetryInitialWait,
		},
	}

	var (
		rubrics     services.ContextRetriever
		transcriber services.Transcriber
	)
	jobProviders := []services.JobProvider{services.NewSyntheticJobProvider(catalog)}
	if cfg.Jobs.AdzunaAppID != "" && cfg.Jobs.AdzunaAPIKey != "" {
		jobProviders = append(jobProviders, services.NewAdzunaJobProvider(services.AdzunaConfig{
			BaseURL: cfg.Jobs.AdzunaBaseURL,
			AppID:   cfg.Jobs.AdzunaAppID,
			APIKey:  cfg.Jobs.AdzunaAPIKey,
			Country: cfg.Jobs.AdzunaCountry,
		}, nil))
	}
	if gemini != nil {
		transcriber = gemini
		if knowledgeBase != nil {
			rubrics = services.NewRubricRetriever(gemini, knowledgeBase, cfg.Interview.RubricContexts)
			jobProviders = append(jobProviders, services.NewVectorJobProvider(gemini, knowledgeBase))
		}
	}

	jobSearcher := services.NewMultiJobSearcher(services.NewMatchScorer(catalog.MatchWeights), zlog, jobProviders...)

	store := session.NewMemoryStore()
	archiver := services.NewArchiver(interviewRepo, store, services.ArchiverOptions{
		Concurrency:   cfg.Worker.Concurrency,
		QueueSize:     cfg.Worker.QueueSize,
		IdleTTL:       cfg.Interview.IdleTTL,
		SweepInterval: cfg.Interview.SweepInterval,
	}, zlog)

	interviewService := services.NewInterviewService(
		store,
		services.NewResumeParser(catalog, cfg.Storage.MaxFileSize),
		services.NewQuestionBank(llm, catalog, callOpts, zlog),
		services.NewAnswerEvaluator(llm, rubrics, services.NewHeuristicScorer(catalog), callOpts, zlog),
		services.NewReportAssembler(catalog, jobSearcher, cfg.Jobs.SearchTimeout, cfg.Jobs.MatchLimit, zlog),
		transcriber,
		services.Persistence{
			Interviews: interviewRepo,
			Resumes:    resumeRepo,
			Storage:    storageService,
			Archiver:   archiver,
		},
		services.InterviewOptions{
			QuestionCount:     cfg.Interview.QuestionCount,
			TranscribeTimeout: cfg.AI.TranscribeTimeout,
		},
		zlog,
	)
	log.Println("✅ Services initialized successfully")

	archiver.Start(ctx)
	log.Println("✅ Archiver started successfully")

	aiProvider := "none"
	if llm != nil {
		aiProvider = llm.Provider()
	}

	sessionHandler := handlers.NewSessionHandler(interviewService, cfg.Storage.MaxFileSize)
	answerHandler := handlers.NewAnswerHandler(interviewService)
	reportHandler := handlers.NewReportHandler(interviewService, cfg.Interview.ReportTimeout)
	healthHandler := handlers.NewHealthHandler(store, aiProvider)
	log.Println("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:      "Mock Interview API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")
	handlers.RegisterRoutes(api, sessionHandler, answerHandler, reportHandler, healthHandler)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Mock Interview API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"GET /api/v1/sessions/:id/question",
				"POST /api/v1/sessions/:id/answers",
				"GET /api/v1/sessions/:id/report",
				"GET /api/v1/health",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr), zap.String("ai_provider", aiProvider))
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

	archiver.Stop()
	log.Println("👋 Server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := handlers.HTTPStatus(err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
