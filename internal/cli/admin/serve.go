package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/deckray/internal/api/handlers"
	"github.com/cloo-solutions/deckray/internal/config"
	"github.com/cloo-solutions/deckray/internal/database"
	"github.com/cloo-solutions/deckray/internal/domain"
	"github.com/cloo-solutions/deckray/internal/ingest"
	"github.com/cloo-solutions/deckray/internal/openai"
	"github.com/cloo-solutions/deckray/internal/repository"
	"github.com/cloo-solutions/deckray/internal/server"
	"github.com/cloo-solutions/deckray/internal/service"
	"github.com/cloo-solutions/deckray/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the deckray API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	var retrievalSvc *service.RetrievalService
	var embeddingSvc *service.EmbeddingService

	var inferenceClient *openai.Client
	if cfg.HasOpenAI() {
		inferenceClient = openai.NewClientWithConfig(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			RequestTimeout: time.Duration(cfg.InferenceTimeoutSecs) * time.Second,
		})
		embeddingSvc = service.NewEmbeddingService(inferenceClient)
	} else {
		log.Println("no OpenAI API key configured, model analyses will use fallbacks")
	}

	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		if embeddingSvc != nil {
			rulesRepo, err := repository.NewRulesRepository(pool, cfg.RulesCollection)
			if err != nil {
				return fmt.Errorf("failed to create rules repository: %w", err)
			}
			retrievalSvc = service.NewRetrievalService(rulesRepo, embeddingSvc)
			if err := retrievalSvc.Initialize(ctx); err != nil {
				return fmt.Errorf("failed to initialize retrieval store: %w", err)
			}
			log.Printf("retrieval store ready (collection %s)", cfg.RulesCollection)
		}
	} else {
		log.Println("no database configured, retrieval-augmented analysis disabled")
	}

	converter := ingest.NewPDFConverter(cfg.PdftoppmPath)

	var extractor *service.VisualFeatureExtractor
	if inferenceClient != nil {
		extractor = service.NewVisualFeatureExtractor(inferenceClient, cfg.CaptionModel)
	} else {
		extractor = service.NewVisualFeatureExtractor(nil, "")
	}

	analyzerCfg := service.AnalyzerConfig{
		Converter:      converter,
		Extractor:      extractor,
		ReasoningModel: cfg.ReasoningModel,
	}
	if inferenceClient != nil {
		analyzerCfg.Completer = inferenceClient
	}
	if retrievalSvc != nil {
		analyzerCfg.Retriever = retrievalSvc
	}
	analyzer := service.NewAnalyzer(analyzerCfg)
	analyzer.Initialize()

	analyzeHandler := handlers.NewAnalyzeHandler(analyzer)
	var rulesHandler *handlers.RulesHandler
	if retrievalSvc != nil {
		rulesHandler = handlers.NewRulesHandler(retrievalSvc)
	} else {
		rulesHandler = handlers.NewRulesHandler(&NoOpRulesService{})
	}
	modelHandler := handlers.NewModelHandler()

	routerCfg := server.RouterConfig{
		AnalyzeHandler: analyzeHandler,
		RulesHandler:   rulesHandler,
		ModelHandler:   modelHandler,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// NoOpRulesService stands in when no database or embedding backend is
// configured.
type NoOpRulesService struct{}

func (s *NoOpRulesService) AddDocuments(ctx context.Context, docs []string, ids []int64) (int, error) {
	return 0, domain.NewDomainError(domain.ErrCodeConfiguration, "rules service not configured: DATABASE_URL and OPENAI_API_KEY required")
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
