package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/ai"
	"github.com/fundscope/fundscope/internal/config"
	"github.com/fundscope/fundscope/internal/db"
	"github.com/fundscope/fundscope/internal/extract"
	"github.com/fundscope/fundscope/internal/filestore"
	"github.com/fundscope/fundscope/internal/handler"
	"github.com/fundscope/fundscope/internal/job"
	"github.com/fundscope/fundscope/internal/middleware"
	"github.com/fundscope/fundscope/internal/pdf"
	"github.com/fundscope/fundscope/internal/repo"
	"github.com/fundscope/fundscope/internal/schedule"
	"github.com/fundscope/fundscope/internal/service"
	"github.com/fundscope/fundscope/internal/task"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "fundscope",
		Short: "fundscope backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run fundscope server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	gen := ai.NewGenerator(aiProvider, cfg.AI.Model)
	embedder := ai.NewEmbedder(aiProvider, cfg.AI.EmbedModel)

	fundRepo := repo.NewFundRepo(conn)
	docRepo := repo.NewDocumentRepo(conn)
	txnRepo := repo.NewTransactionRepo(conn)
	convRepo := repo.NewConversationRepo(conn)
	vectorRepo := repo.NewVectorRepo(conn, embedder, cfg.AI.EmbedDimension)
	if err := vectorRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("init vector schema: %w", err)
	}

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	chunker := ai.NewChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	fallback := extract.NewTextExtractor(gen)
	ingestService := service.NewIngestService(docRepo, txnRepo, vectorRepo, store, pdf.NewFileExtractor(), chunker, fallback)

	dispatcher, err := task.NewDispatcher(cfg.Ingest.Workers, ingestService, docRepo)
	if err != nil {
		return fmt.Errorf("init dispatcher: %w", err)
	}
	defer dispatcher.Release()

	documentService := service.NewDocumentService(docRepo, fundRepo, vectorRepo, store, dispatcher, cfg.MaxUploadSize)
	fundService := service.NewFundService(fundRepo, txnRepo, vectorRepo)
	metricsService := service.NewMetricsService(txnRepo)
	exportService := service.NewExportService(fundRepo, txnRepo, metricsService)
	searchService := service.NewSearchService(vectorRepo, convRepo, gen, cfg.Retrieval)

	scheduler := schedule.NewCronScheduler()
	ttl := time.Duration(cfg.Ingest.ProcessingTTLMinutes) * time.Minute
	if err := scheduler.AddJob(job.NewStuckDocumentJob(docRepo, ttl), "*/5 * * * *"); err != nil {
		return fmt.Errorf("schedule reaper: %w", err)
	}

	deps := handler.RouterDeps{
		Funds:     handler.NewFundHandler(fundService, metricsService),
		Documents: handler.NewDocumentHandler(documentService),
		Chat:      handler.NewChatHandler(searchService),
		Export:    handler.NewExportHandler(exportService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.AllowOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(runCtx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	<-runCtx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
