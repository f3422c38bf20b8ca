package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"sitegen_server/internal/ai"
	"sitegen_server/internal/ai/prompts"
	"sitegen_server/internal/ai/utils"
	"sitegen_server/internal/metrics"
	"sitegen_server/internal/quota"
	"sitegen_server/internal/types"
	upstream "sitegen_server/internal/utils"
)

const (
	DefaultGenerationTimeout        = 60 * time.Second
	DefaultMaxConcurrentGenerations = 8

	busyMessage = "Server busy, please retry shortly"
)

// SiteGenerator is the completion API as seen by the handler.
type SiteGenerator interface {
	Ready() error
	GenerateSite(ctx context.Context, spec types.PromptSpec) (string, error)
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	generator SiteGenerator
	composer  *prompts.Composer
	quota     *quota.Guard
	metrics   *metrics.Metrics
	slots     *semaphore.Weighted
	timeout   time.Duration
	now       func() time.Time
}

type Option func(*APIHandler)

// WithGenerationTimeout bounds each completion call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(h *APIHandler) {
		h.timeout = d
	}
}

// WithMaxConcurrentGenerations bounds in-flight completion calls.
func WithMaxConcurrentGenerations(n int64) Option {
	return func(h *APIHandler) {
		if n > 0 {
			h.slots = semaphore.NewWeighted(n)
		}
	}
}

// WithClock is used for the Retry-After computation.
func WithClock(now func() time.Time) Option {
	return func(h *APIHandler) {
		h.now = now
	}
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(gen SiteGenerator, composer *prompts.Composer, guard *quota.Guard, m *metrics.Metrics, opts ...Option) (*APIHandler, error) {
	if gen == nil {
		return nil, errors.New("site generator is required")
	}
	if composer == nil {
		return nil, errors.New("prompt composer is required")
	}
	if guard == nil {
		return nil, errors.New("quota guard is required")
	}
	if m == nil {
		return nil, errors.New("metrics are required")
	}

	h := &APIHandler{
		generator: gen,
		composer:  composer,
		quota:     guard,
		metrics:   m,
		slots:     semaphore.NewWeighted(DefaultMaxConcurrentGenerations),
		timeout:   DefaultGenerationTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	m.SetQuotaRemaining(guard.Snapshot().Remaining)
	return h, nil
}

// --- Structs for API Responses ---

type QuotaResponse struct {
	Limit     int     `json:"limit"`
	Remaining int     `json:"remaining"`
	ResetTime float64 `json:"reset_time"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// --- API Handlers ---

// GET /
func (h *APIHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Non-deterministic Website Generator API",
		"endpoints": gin.H{
			"POST /generate": "Generate a website from {prompt, style?}",
			"GET /random":    "Generate a website from a random topic and style",
			"GET /quota":     "Remaining generations in the current daily window",
			"GET /health":    "Liveness check",
			"GET /metrics":   "Prometheus metrics",
		},
	})
}

// POST /generate
func (h *APIHandler) GenerateSite(c *gin.Context) {
	var req types.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}
	h.generate(c, req)
}

// GET /random
func (h *APIHandler) RandomSite(c *gin.Context) {
	h.generate(c, types.GenerationRequest{})
}

// GET /quota
func (h *APIHandler) Quota(c *gin.Context) {
	snap := h.quota.Snapshot()
	c.JSON(http.StatusOK, QuotaResponse{
		Limit:     snap.Limit,
		Remaining: snap.Remaining,
		ResetTime: types.EpochSeconds(snap.ResetAt),
	})
}

func (h *APIHandler) generate(c *gin.Context, req types.GenerationRequest) {
	req = h.composer.Randomize(req)
	logger := requestLogger(c).WithFields(log.Fields{"topic": req.Prompt, "style": req.Style})

	ticket, err := h.quota.Admit()
	if err != nil {
		h.metrics.ObserveGeneration(metrics.OutcomeRateLimited)
		var exceeded *quota.ExceededError
		if errors.As(err, &exceeded) {
			c.Header("Retry-After", strconv.Itoa(h.retryAfter(exceeded.ResetAt)))
		}
		logger.Warn("daily generation limit reached")
		c.JSON(http.StatusTooManyRequests, errorResponse{Detail: err.Error()})
		return
	}
	// No-op once the ticket is committed.
	defer ticket.Release()

	if err := h.generator.Ready(); err != nil {
		h.fail(c, logger, err)
		return
	}

	spec := h.composer.Compose(req)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.slots.Acquire(ctx, 1); err != nil {
		h.metrics.ObserveGeneration(metrics.OutcomeBusy)
		logger.WithError(err).Warn("no generation slot available")
		c.JSON(http.StatusServiceUnavailable, errorResponse{Detail: busyMessage})
		return
	}
	start := time.Now()
	raw, err := h.generator.GenerateSite(ctx, spec)
	h.slots.Release(1)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		h.metrics.ObserveUpstream(upstream.UpstreamReason(err), elapsed)
		h.fail(c, logger, err)
		return
	}
	h.metrics.ObserveUpstream("ok", elapsed)

	snap := ticket.Commit()
	h.metrics.SetQuotaRemaining(snap.Remaining)

	normalized := utils.Normalize(raw)
	h.metrics.ObserveNormalize(string(normalized.Outcome))
	if normalized.Outcome == utils.OutcomeUnterminated {
		logger.Warn("model output has an unterminated code fence, returning raw text")
	}

	h.metrics.ObserveGeneration(metrics.OutcomeSuccess)
	logger.WithFields(log.Fields{
		"remaining": snap.Remaining,
		"bytes":     len(normalized.HTML),
		"fence":     normalized.Outcome,
	}).Info("site generated")

	c.JSON(http.StatusOK, types.GenerationResult{
		HTML:      normalized.HTML,
		Remaining: snap.Remaining,
		ResetTime: types.EpochSeconds(snap.ResetAt),
	})
}

// fail maps configuration and upstream errors to a 500 with the error text
// as detail.
func (h *APIHandler) fail(c *gin.Context, logger *log.Entry, err error) {
	var cfgErr *ai.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		h.metrics.ObserveGeneration(metrics.OutcomeConfigError)
		logger.WithError(err).Error("completion API credential missing")
	default:
		h.metrics.ObserveGeneration(metrics.OutcomeUpstream)
		logger.WithError(err).WithField("upstream_status", upstream.UpstreamStatus(err)).Error("site generation failed")
	}
	c.JSON(http.StatusInternalServerError, errorResponse{Detail: detail(err)})
}

func detail(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%T", err)
}

func (h *APIHandler) retryAfter(resetAt time.Time) int {
	secs := math.Ceil(resetAt.Sub(h.now()).Seconds())
	if secs < 0 {
		return 0
	}
	return int(secs)
}
