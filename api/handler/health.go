package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/stackscout/campaign"
	"github.com/use-agent/stackscout/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// ProgressSource exposes the live campaign progress.
type ProgressSource interface {
	Snapshot() models.Progress
}

// Health returns a handler for GET /api/v1/health.
//
// Reports "done" once the campaign has finished, "healthy" otherwise.
func Health(progress ProgressSource, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if progress.Snapshot().State == campaign.StateDone {
			status = "done"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		})
	}
}
