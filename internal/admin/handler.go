package admin

import (
	"errors"
	"net/http"
	"strconv"

	"docgate/internal/auth"
	"docgate/internal/db"
	"docgate/internal/model"
	"docgate/internal/plan"
	"docgate/internal/quota"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the key-management endpoints. These are plain CRUD
// against the key store; the extraction pipeline never calls them.
type Handler struct {
	db db.Service
}

func NewHandler(dbService db.Service) *Handler {
	return &Handler{db: dbService}
}

type createKeyRequest struct {
	Email       string `json:"email" binding:"required"`
	Plan        string `json:"plan"`
	CustomLimit *int   `json:"custom_limit"`
}

type updateKeyRequest struct {
	Plan        *string `json:"plan"`
	CustomLimit *int    `json:"custom_limit"`
	Active      *bool   `json:"active"`
}

// keyView is the masked representation returned by list/get. The secret
// itself cannot be reconstructed from the store.
type keyView struct {
	ID                uint   `json:"id"`
	MaskedKey         string `json:"masked_key"`
	UserEmail         string `json:"user_email"`
	Plan              string `json:"plan"`
	Active            bool   `json:"active"`
	RequestsThisMonth int    `json:"requests_this_month"`
	RequestsCount     int64  `json:"requests_count"`
	Limit             int    `json:"limit"`
	PriceCents        int    `json:"price_cents"`
	LastUsedAt        string `json:"last_used_at,omitempty"`
}

func viewOf(key *model.APIKey) keyView {
	suffix := key.KeySuffix
	if suffix == "" {
		suffix = "****"
	}
	return keyView{
		ID:                key.ID,
		MaskedKey:         auth.KeyPrefix + "****" + suffix,
		UserEmail:         key.UserEmail,
		Plan:              key.Plan,
		Active:            key.Active,
		RequestsThisMonth: key.RequestsThisMonth,
		RequestsCount:     key.RequestsCount,
		Limit:             quota.EffectiveLimit(key),
		PriceCents:        plan.Lookup(key.Plan).PriceCents,
		LastUsedAt:        key.LastUsedAt,
	}
}

func (h *Handler) CreateKeyHandler(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Plan == "" {
		req.Plan = plan.Free
	}
	if !plan.Valid(req.Plan) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan"})
		return
	}

	secret, hash, err := auth.GenerateKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate key"})
		return
	}

	key := &model.APIKey{
		KeyHash:     hash,
		KeySuffix:   secret[len(secret)-4:],
		UserEmail:   req.Email,
		Plan:        req.Plan,
		CustomLimit: req.CustomLimit,
		Active:      true,
	}
	if err := h.db.CreateAPIKey(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create key"})
		return
	}

	// The plaintext secret is returned exactly once.
	c.JSON(http.StatusCreated, gin.H{"key": secret, "key_id": key.ID, "status": "created"})
}

func (h *Handler) ListKeysHandler(c *gin.Context) {
	keys, err := h.db.ListAPIKeys()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list keys"})
		return
	}
	views := make([]keyView, len(keys))
	for i := range keys {
		views[i] = viewOf(&keys[i])
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetKeyHandler(c *gin.Context) {
	key, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(key))
}

func (h *Handler) UpdateKeyHandler(c *gin.Context) {
	key, ok := h.lookup(c)
	if !ok {
		return
	}

	var req updateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Plan != nil {
		if !plan.Valid(*req.Plan) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan"})
			return
		}
		key.Plan = *req.Plan
	}
	if req.CustomLimit != nil {
		key.CustomLimit = req.CustomLimit
	}
	if req.Active != nil {
		key.Active = *req.Active
	}

	if err := h.db.UpdateAPIKey(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update key"})
		return
	}
	c.JSON(http.StatusOK, viewOf(key))
}

func (h *Handler) DeleteKeyHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.db.DeleteAPIKey(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key deleted"})
}

// RotateKeyHandler issues a new secret for an existing record, invalidating
// the old one.
func (h *Handler) RotateKeyHandler(c *gin.Context) {
	key, ok := h.lookup(c)
	if !ok {
		return
	}

	secret, hash, err := auth.GenerateKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate key"})
		return
	}

	key.KeyHash = hash
	key.KeySuffix = secret[len(secret)-4:]
	if err := h.db.UpdateAPIKey(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": secret, "message": "Rotated"})
}

// ResetUsageHandler manually triggers the monthly counter reset that the
// scheduler otherwise runs on the first of each month.
func (h *Handler) ResetUsageHandler(c *gin.Context) {
	if err := h.db.ResetAllMonthlyUsage(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Monthly usage reset"})
}

func (h *Handler) lookup(c *gin.Context) (*model.APIKey, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}
	key, err := h.db.GetAPIKey(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	return key, true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key ID"})
		return 0, false
	}
	return uint(id), true
}
