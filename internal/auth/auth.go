package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"

	"docgate/internal/db"
	"docgate/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// KeyPrefix is the visible prefix of every issued client key.
const KeyPrefix = "dg_live_"

// ContextKey is the gin context key under which the authenticated
// model.APIKey record is stored.
const ContextKey = "apiKey"

// GenerateKey creates a new client secret and returns it together with its
// SHA-256 hash. The plaintext is never persisted.
func GenerateKey() (key string, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	key = KeyPrefix + base64.RawURLEncoding.EncodeToString(raw)
	return key, HashKey(key), nil
}

// HashKey returns the hex-encoded SHA-256 hash of a client key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// KeyFromContext returns the authenticated key record set by APIKeyMiddleware.
func KeyFromContext(c *gin.Context) (*model.APIKey, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	key, ok := v.(*model.APIKey)
	return key, ok
}

// APIKeyMiddleware authenticates the X-API-Key header against the store and
// places the matching active record in the request context. Inactive keys
// are indistinguishable from unknown ones.
func APIKeyMiddleware(database db.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("X-API-Key")
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key is required", "kind": "auth"})
			return
		}

		key, err := database.FindActiveKeyByHash(HashKey(secret))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key", "kind": "auth"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error", "kind": "internal"})
			return
		}

		c.Set(ContextKey, key)
		c.Next()
	}
}

// AdminAuthMiddleware protects the admin endpoints with HTTP Basic auth.
func AdminAuthMiddleware(adminPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, password, hasAuth := c.Request.BasicAuth()
		if !hasAuth || user != "admin" || password != adminPassword {
			c.Header("WWW-Authenticate", `Basic realm="Restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "kind": "auth"})
			return
		}
		c.Next()
	}
}
