package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/stackscout/models"
)

// Campaign returns a handler for GET /api/v1/campaign.
func Campaign(progress ProgressSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := progress.Snapshot()
		c.JSON(http.StatusOK, models.CampaignResponse{
			Success:  true,
			Progress: &snap,
		})
	}
}
