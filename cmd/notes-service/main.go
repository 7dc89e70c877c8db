package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/config"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/database"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/kafka"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/logger"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/middleware"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/notes"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/observability/metrics"
)

func main() {
	logger.Init("notes-service")
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := notes.LoadComponents(ctx, cfg)
	if err != nil {
		logger.L().WithError(err).Fatal("failed to load parser components")
	}
	defer components.Close()

	opts := notes.Options{
		Parser:           components.Parser,
		Validator:        notes.NewValidator(cfg.AllowedSources, cfg.MaxNoteChars, components.Store),
		Evidence:         components.Evidence,
		Redactor:         components.Redactor,
		BatchConcurrency: cfg.BatchConcurrency,
	}

	var repo *notes.Repository
	if cfg.PersistNotes {
		db, err := database.OpenPostgres(cfg)
		if err != nil {
			logger.L().WithError(err).Fatal("failed to connect to postgres")
		}
		defer database.ClosePostgres(db)

		repo = notes.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.L().WithError(err).Fatal("failed to migrate notes tables")
		}
		opts.Repo = repo
	}

	var consumer *kafka.Consumer
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.NotesOutputTopic)
		defer producer.Close()
		opts.Producer = producer

		if cfg.NotesDLQTopic != "" {
			dlq := kafka.NewProducer(cfg.KafkaBrokers, cfg.NotesDLQTopic)
			defer dlq.Close()
			opts.DLQ = dlq
		}

		if cfg.NotesInputTopic != "" {
			consumer = kafka.NewConsumer(cfg.KafkaBrokers, cfg.NotesInputTopic, cfg.KafkaGroupID)
			defer consumer.Close()
		}
	}

	svc := notes.NewService(opts)
	handler := notes.NewHTTPHandler(svc, components.Store, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.CORS)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ready","formats":%d}`, len(components.Store.Labels()))
	}).Methods(http.MethodGet)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst), middleware.BodyLimit(cfg.MaxRequestBody))
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.L().WithFields(logrus.Fields{
			"host":       cfg.ServerHost,
			"port":       cfg.ServerPort,
			"persist":    cfg.PersistNotes,
			"kafka":      cfg.KafkaEnabled,
			"enrichment": components.Enricher != nil,
		}).Info("Notes Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().WithError(err).Fatal("failed to start server")
		}
	}()

	if consumer != nil {
		go func() {
			if err := consumer.Consume(ctx, svc.HandleEvent); err != nil && ctx.Err() == nil {
				logger.L().WithError(err).Error("note consumer stopped")
			}
		}()
	}

	if repo != nil && cfg.NotesRetention > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					removed, err := repo.CleanupExpired(ctx, cfg.NotesRetention)
					if err != nil {
						logger.L().WithError(err).Warn("retention cleanup failed")
						continue
					}
					if removed > 0 {
						logger.WithField("removed", removed).Info("Expired parsed notes removed")
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("Shutting down Notes Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().WithError(err).Error("server forced to shutdown")
	}

	logger.L().Info("Notes Service stopped")
}
