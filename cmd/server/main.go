package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Skufu/SymptomTriage/internal/advice"
	"github.com/Skufu/SymptomTriage/internal/metrics"
	"github.com/Skufu/SymptomTriage/internal/store"
	"github.com/Skufu/SymptomTriage/internal/triage"
)

type Config struct {
	Port           string
	DatabaseURL    string
	EnableDB       bool
	VocabularyPath string
	ModelPath      string
	StrictAdvice   bool
	RateLimitRPS   int
	RateLimitBurst int
	CORSOrigins    []string
	MaxSymptoms    int
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	svc, err := triage.Load(cfg.VocabularyPath, cfg.ModelPath, advice.Default(), triage.Options{
		StrictAdvice: cfg.StrictAdvice,
		MaxSymptoms:  cfg.MaxSymptoms,
	})
	if err != nil {
		log.Fatalf("model load failed: %v", err)
	}
	coverage := svc.Coverage()
	for _, w := range coverage.Warnings() {
		log.Printf("warning: %s", w)
	}
	metrics.RecordMissingAdvice(len(coverage.Missing))
	log.Printf("model loaded: %d symptoms, %d labels", len(svc.Vocabulary()), len(svc.Labels()))

	ctx := context.Background()
	var (
		db          HealthChecker
		predictions PredictionStore
	)
	if cfg.EnableDB {
		conn, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer conn.Close()

		if err := store.Migrate(ctx, conn.Pool); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		db = conn
		predictions = store.NewPredictionLog(conn)
	}

	router := setupRouter(svc, db, predictions, cfg)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.Printf("server listening on :%s", cfg.Port)
	waitForShutdown(server)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8000"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		EnableDB:       strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		VocabularyPath: getEnv("VOCABULARY_PATH", "artifacts/vocabulary.bin"),
		ModelPath:      getEnv("MODEL_PATH", "artifacts/model.bin"),
		StrictAdvice:   strings.EqualFold(getEnv("STRICT_ADVICE", "false"), "true"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.RateLimitRPS, err = getEnvInt("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}
	if cfg.MaxSymptoms, err = getEnvInt("MAX_SYMPTOMS", 64); err != nil {
		return nil, err
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.VocabularyPath == "" || cfg.ModelPath == "" {
		return nil, fmt.Errorf("VOCABULARY_PATH and MODEL_PATH must not be empty")
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	return cfg, nil
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, val)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
