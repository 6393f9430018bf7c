package handlers

import (
	"context"
	"errors"
	"net/http"

	"opsdash/models"
	"opsdash/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type HealthProvider interface {
	Overview(ctx context.Context) (models.HealthOverview, error)
	JobHealth(ctx context.Context) ([]models.JobHealth, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// GetHealthOverview serves the composite health snapshot.
func GetHealthOverview(hp HealthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := hp.Overview(c.Request.Context())
		if err != nil {
			logEvaluationError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute system health"})
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

// GetJobHealth lists every registered job with its runtime stats.
func GetJobHealth(hp HealthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs, err := hp.JobHealth(c.Request.Context())
		if err != nil {
			logEvaluationError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job health"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"jobs": jobs})
	}
}

func GetRegistry(reg services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"jobs": reg.Jobs()})
	}
}

// Healthz reports process liveness. db may be nil when running without a
// database.
func Healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				log.Warn().Err(err).Msg("database ping failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func logEvaluationError(err error) {
	if errors.Is(err, services.ErrInvalidInput) {
		log.Error().Err(err).Msg("health inputs violate scheduler contract")
		return
	}
	log.Error().Err(err).Msg("health evaluation failed")
}
