package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bounded-cache/internal/cache"
	"bounded-cache/internal/events"
	"bounded-cache/internal/health"
	"bounded-cache/internal/logs"
	"bounded-cache/internal/metrics"
)

// Handler holds dependencies for HTTP handlers. The server works on a
// string→string cache; callers store arbitrary payloads as encoded
// strings.
type Handler struct {
	cache    *cache.Cache[string, string]
	metrics  *metrics.Registry
	logger   *logs.Logger
	analyzer *health.Analyzer
	hub      *events.Hub
}

// NewHandler creates a new API handler.
func NewHandler(
	c *cache.Cache[string, string],
	reg *metrics.Registry,
	logger *logs.Logger,
	hub *events.Hub,
) *Handler {
	return &Handler{
		cache:    c,
		metrics:  reg,
		logger:   logger,
		analyzer: health.NewAnalyzer(reg, logger),
		hub:      hub,
	}
}

/* ---------------- PUT /kv/:key ---------------- */

type setRequest struct {
	Value string `json:"value"`
	TTLms int64  `json:"ttl_ms,omitempty"`
}

func (h *Handler) SetKey(c *gin.Context) {
	key := c.Param("key")

	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	ctx := c.Request.Context()
	if req.TTLms > 0 {
		h.cache.SetWithTTL(ctx, key, req.Value, time.Duration(req.TTLms)*time.Millisecond)
	} else {
		h.cache.Set(ctx, key, req.Value)
	}

	h.hub.Publish(events.Event{Op: events.OpSet, Key: key, At: time.Now()})
	c.Status(http.StatusNoContent)
}

/* ---------------- GET /kv/:key ---------------- */

func (h *Handler) GetKey(c *gin.Context) {
	key := c.Param("key")

	value, ok := h.cache.Get(c.Request.Context(), key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "key not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"value": value})
}

/* ---------------- DELETE /kv/:key ---------------- */

func (h *Handler) DeleteKey(c *gin.Context) {
	key := c.Param("key")

	h.cache.Delete(c.Request.Context(), key)
	h.hub.Publish(events.Event{Op: events.OpDelete, Key: key, At: time.Now()})
	c.Status(http.StatusNoContent)
}

/* ---------------- GET /admin/keys ---------------- */

func (h *Handler) ListKeys(c *gin.Context) {
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, gin.H{
		"keys": h.cache.Keys(ctx),
		"size": h.cache.Size(ctx),
	})
}

/* ---------------- POST /admin/save ---------------- */

func (h *Handler) SaveSnapshot(c *gin.Context) {
	h.cache.Save(c.Request.Context())
	c.Status(http.StatusNoContent)
}

/* ---------------- POST /admin/clear ---------------- */

func (h *Handler) ClearCache(c *gin.Context) {
	h.cache.Clear(c.Request.Context())
	h.hub.Publish(events.Event{Op: events.OpClear, At: time.Now()})
	c.Status(http.StatusNoContent)
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

/* ---------------- GET /health ---------------- */

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.Analyze())
}
