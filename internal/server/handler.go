package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"docgate/internal/auth"
	"docgate/internal/extract"
	"docgate/internal/model"
	"docgate/internal/preprocess"
	"docgate/internal/prompt"
	"docgate/internal/quota"
	"docgate/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

type extractRequest struct {
	FileData string `json:"file_data" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
	DocType  string `json:"doc_type"`
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"version":  Version,
		"gemini":   len(s.cfg.Gemini.APIKeys) > 0,
		"database": s.db != nil,
	})
}

// extractHandler is the single request lifecycle: the auth middleware has
// already validated the key; from here the request passes the rate
// limiter, the quota guard, preprocessing, prompt selection, the model
// call, schema binding, and usage accounting, short-circuiting on the
// first failure. Mutations already committed by an earlier stage (a window
// reset or count increment) are never rolled back.
func (s *Server) extractHandler(c *gin.Context) {
	key, ok := auth.KeyFromContext(c)
	if !ok {
		s.fail(c, http.StatusInternalServerError, "internal", "Missing key context")
		return
	}

	start := time.Now()

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_input", "Invalid request body")
		return
	}

	if err := s.limiter.Admit(start, key); err != nil {
		var limitErr *ratelimit.LimitExceededError
		if errors.As(err, &limitErr) {
			s.fail(c, http.StatusTooManyRequests, "rate_limit_exceeded", limitErr.Error())
			return
		}
		s.logger.Error("Rate limiter store update failed", "key_id", key.ID, "error", err)
		s.fail(c, http.StatusInternalServerError, "internal", "Internal Server Error")
		return
	}

	if err := quota.Check(key); err != nil {
		var quotaErr *quota.ExceededError
		if errors.As(err, &quotaErr) {
			s.fail(c, http.StatusTooManyRequests, "quota_exceeded", quotaErr.Error())
			return
		}
		s.fail(c, http.StatusInternalServerError, "internal", "Internal Server Error")
		return
	}

	data, mimeType, err := preprocess.Run(req.FileData, req.MimeType, s.cfg.Extraction.MaxPayloadBytes)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	instruction := prompt.For(prompt.ParseType(req.DocType))

	// The model call is bounded by its own wall-clock timeout rather than
	// the request context: a client disconnect must not cancel in-flight
	// accounting.
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Extraction.Timeout)
	defer cancel()

	raw, err := s.invoker.Extract(ctx, instruction, data, mimeType)
	if err != nil {
		var failedErr *extract.FailedError
		if errors.As(err, &failedErr) {
			s.logger.Error("Extraction failed", "key_id", key.ID, "attempts", failedErr.Attempts, "error", failedErr.Err)
			s.fail(c, http.StatusInternalServerError, "extraction_failed", failedErr.Error())
			return
		}
		s.fail(c, http.StatusInternalServerError, "internal", "Internal Server Error")
		return
	}

	// Schema binding happens here, not in the invoker, and is never
	// retried: the model produced valid JSON of the wrong shape, which is
	// a provider fault, not a client one.
	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Error("Extraction result does not bind to the document schema", "key_id", key.ID, "error", err)
		s.fail(c, http.StatusInternalServerError, "extraction_failed", "Extraction result does not match the document schema")
		return
	}

	elapsed := time.Since(start).Milliseconds()

	if err := s.db.IncrementUsage(key.ID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		s.logger.Error("Usage accounting failed", "key_id", key.ID, "error", err)
		s.fail(c, http.StatusInternalServerError, "internal", "Internal Server Error")
		return
	}

	doc.ProcessingTimeMs = elapsed
	c.JSON(http.StatusOK, doc)
}

func (s *Server) fail(c *gin.Context, status int, kind, detail string) {
	c.JSON(status, gin.H{"error": detail, "kind": kind})
}
