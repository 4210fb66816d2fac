// Package api exposes the competitor audit over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/seo-optimizer/competitor-audit/audit"
	"github.com/seo-optimizer/competitor-audit/logging"
	"github.com/seo-optimizer/competitor-audit/middleware"
)

// ComparePath is the route of the comparison endpoint
const ComparePath = "/api/audit/compare"

const (
	msgMissingParams = "Missing required parameters: myUrl, competitorUrl, and keyword are required"
	msgInvalidURL    = "Invalid URL format. Please include http:// or https://"
)

// Comparer runs one audit
type Comparer interface {
	Compare(ctx context.Context, req audit.Request) (audit.Result, error)
}

// Handler serves the audit API
type Handler struct {
	audits Comparer
	stats  *logging.Statistics
	now    func() time.Time
}

// NewHandler creates a Handler. stats may be nil, in which case the statistics
// route reports an empty summary.
func NewHandler(audits Comparer, stats *logging.Statistics) *Handler {
	return &Handler{audits: audits, stats: stats, now: time.Now}
}

// Register mounts every route on r
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/statistics", h.statistics)

		audits := api.Group("/audit")
		audits.POST("/compare", h.compare)
		audits.GET("/test", h.test)
	}
}

type compareRequest struct {
	MyURL         string `json:"myUrl" binding:"required,url"`
	CompetitorURL string `json:"competitorUrl" binding:"required,url"`
	Keyword       string `json:"keyword" binding:"required"`
}

// bindingMessage maps a binding failure to the message returned to clients
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return msgMissingParams
			}
		}
		return msgInvalidURL
	}
	return msgMissingParams
}

func (h *Handler) compare(c *gin.Context) {
	log.Printf("Compare request received from: %s (request %s)", c.ClientIP(), middleware.RequestIDFrom(c))

	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	c.Set(middleware.KeywordKey, req.Keyword)
	c.Set(middleware.CompetitorURLKey, req.CompetitorURL)

	result, err := h.audits.Compare(c.Request.Context(), audit.Request{
		MyURL:         req.MyURL,
		CompetitorURL: req.CompetitorURL,
		Keyword:       req.Keyword,
	})
	switch {
	case errors.Is(err, audit.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Printf("Compare failed for %s vs %s: %v", req.MyURL, req.CompetitorURL, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to analyze pages",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

func (h *Handler) test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Audit API is working!"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) statistics(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, h.stats.GetStatistics())
}
