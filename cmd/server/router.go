package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Skufu/SymptomTriage/internal/apperrors"
	"github.com/Skufu/SymptomTriage/internal/metrics"
	"github.com/Skufu/SymptomTriage/internal/store"
	"github.com/Skufu/SymptomTriage/internal/triage"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PredictionStore is the optional prediction log.
type PredictionStore interface {
	Record(ctx context.Context, e store.Entry) error
	Recent(ctx context.Context, limit int) ([]store.Entry, error)
}

type predictRequest struct {
	Symptoms []string `json:"symptoms" binding:"required"`
}

const requestIDKey = "requestID"

func setupRouter(svc *triage.Service, db HealthChecker, predictions PredictionStore, cfg *Config) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		requestID(),
		metrics.Middleware(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders: []string{"X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Backend is running."})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		model := fmt.Sprintf("loaded (%d labels)", len(svc.Labels()))
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "model": model, "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"model":  model,
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"model":  model,
			"db":     "ok",
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/symptoms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"symptoms": svc.Vocabulary()})
	})

	router.GET("/diseases", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"diseases": svc.Labels()})
	})

	router.POST("/predict", rateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst), predictHandler(svc, predictions))

	router.GET("/predictions/recent", func(c *gin.Context) {
		if predictions == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "prediction log is disabled"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		entries, err := predictions.Recent(c.Request.Context(), limit)
		if err != nil {
			log.Printf("list predictions: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read prediction log"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"predictions": entries})
	})

	return router
}

func predictHandler(svc *triage.Service, predictions PredictionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload predictRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			metrics.RecordPredictionError(http.StatusBadRequest)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: symptoms must be a list of strings"})
			return
		}

		log.Printf("symptoms received: %q", payload.Symptoms)

		result, err := svc.Predict(payload.Symptoms)
		if err != nil {
			status := apperrors.StatusOf(err)
			log.Printf("prediction error: %v", err)
			metrics.RecordPredictionError(status)
			c.JSON(status, gin.H{"error": apperrors.Message(err)})
			return
		}

		if len(result.Unrecognized) > 0 {
			log.Printf("ignored unrecognized symptoms: %q", result.Unrecognized)
		}
		metrics.RecordPrediction(result.Disease, result.Fallback, len(result.Unrecognized))

		if predictions != nil {
			entry := store.NewEntry(c.GetString(requestIDKey), payload.Symptoms, result.Disease, result.Advice, result.Fallback)
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			start := time.Now()
			err := predictions.Record(ctx, entry)
			cancel()
			metrics.RecordPredictionLog(err, time.Since(start))
			if err != nil {
				log.Printf("prediction log write failed: %v", err)
			}
		}

		c.JSON(http.StatusOK, result)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// rateLimit applies one token bucket to every caller. rps 0 disables it.
func rateLimit(rps, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = rps
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// requestID propagates X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
