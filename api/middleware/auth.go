package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/stackscout/models"
)

// ClientKey is the context key holding the matched key's label ("key-<n>").
// The rate limiter buckets by it; the raw key never leaves this file.
const ClientKey = "api_key"

// Auth guards the status endpoints, which expose the identities being
// rotated. A request must carry one of apiKeys as
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// Keys are compared in constant time against every configured key. An
// empty apiKeys leaves the endpoints open.
func Auth(apiKeys []string) gin.HandlerFunc {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		presented, scheme := presentedKey(c)
		if presented == "" {
			reject(c, scheme, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}

		idx := matchKey(keys, []byte(presented))
		if idx < 0 {
			reject(c, scheme, "invalid API key")
			return
		}

		c.Set(ClientKey, "key-"+strconv.Itoa(idx))
		c.Next()
	}
}

// matchKey returns the index of the configured key equal to presented, or -1.
// Every key is compared so timing does not reveal which one matched.
func matchKey(keys [][]byte, presented []byte) int {
	match := -1
	for i, k := range keys {
		if subtle.ConstantTimeCompare(k, presented) == 1 && match < 0 {
			match = i
		}
	}
	return match
}

// presentedKey reads X-API-Key first, then Authorization: Bearer, and names
// the header it came from.
func presentedKey(c *gin.Context) (key, scheme string) {
	if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
		return key, "x-api-key"
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):]), "bearer"
	}
	return "", "none"
}

func reject(c *gin.Context, scheme, msg string) {
	slog.Warn("status request rejected",
		"path", c.Request.URL.Path,
		"client", c.ClientIP(),
		"scheme", scheme,
		"code", models.ErrCodeUnauthorized,
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.CampaignResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
