package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dermalens/backend/internal/domain"
	"github.com/dermalens/backend/internal/usecase"
	"github.com/dermalens/backend/internal/validation"
)

const serviceVersion = "1.0.0"

// Recommender scores products and routines for a profile
type Recommender interface {
	Recommend(ctx context.Context, profile domain.UserProfile, limit int) ([]domain.Recommendation, error)
	Evaluate(ctx context.Context, profile domain.UserProfile, limit int) (*domain.Evaluation, error)
}

// DatasetSummarizer serves dataset-wide aggregations
type DatasetSummarizer interface {
	Summary(ctx context.Context) (*domain.DatasetSummary, error)
	Preview(rows int) (domain.Preview, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommender Recommender
	summarizer  DatasetSummarizer
	catalog     *domain.Catalog
}

// NewHandler creates a new HTTP handler. Nil services make their endpoints answer 503.
func NewHandler(catalog *domain.Catalog, recommender Recommender, summarizer DatasetSummarizer) *Handler {
	return &Handler{
		recommender: recommender,
		summarizer:  summarizer,
		catalog:     catalog,
	}
}

// ProfileRequest is the request body shared by the evaluation endpoints
type ProfileRequest struct {
	SkinType           string   `json:"skinType" validate:"required"`
	Concerns           []string `json:"concerns" validate:"max=20,dive,max=64"`
	UsedCleanser       bool     `json:"usedCleanser"`
	UsedMoisturizer    bool     `json:"usedMoisturizer"`
	UsedSunscreen      bool     `json:"usedSunscreen"`
	WaterIntakeGlasses int      `json:"waterIntakeGlasses" validate:"gte=0,lte=100"`
	SleepHours         int      `json:"sleepHours" validate:"gte=0,lte=24"`
	StressLevel        string   `json:"stressLevel" validate:"max=16"`
	Limit              int      `json:"limit" validate:"gte=0,lte=50"`
}

// PreviewQuery holds the query parameters of the preview endpoint
type PreviewQuery struct {
	Rows int `form:"rows" json:"rows" validate:"gte=0,lte=500"`
}

// toProfile converts a validated request into a domain profile
func (r ProfileRequest) toProfile() (domain.UserProfile, error) {
	skinType, err := domain.ParseSkinType(r.SkinType)
	if err != nil {
		return domain.UserProfile{}, err
	}
	stress, err := domain.ParseStressLevel(r.StressLevel)
	if err != nil {
		return domain.UserProfile{}, err
	}

	return domain.UserProfile{
		SkinType:           skinType,
		Concerns:           r.Concerns,
		UsedCleanser:       r.UsedCleanser,
		UsedMoisturizer:    r.UsedMoisturizer,
		UsedSunscreen:      r.UsedSunscreen,
		WaterIntakeGlasses: r.WaterIntakeGlasses,
		SleepHours:         r.SleepHours,
		StressLevel:        stress,
	}, nil
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "dermalens-backend",
		"version":  serviceVersion,
		"products": h.catalog.Len(),
		"dataset":  h.catalog.Version(),
	})
}

// Evaluate handles POST /api/v1/evaluations
func (h *Handler) Evaluate(c *gin.Context) {
	if h.recommender == nil {
		h.serviceUnavailable(c)
		return
	}

	req, profile, ok := h.bindProfile(c)
	if !ok {
		return
	}

	evaluation, err := h.recommender.Evaluate(c.Request.Context(), profile, req.Limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	Success(c, http.StatusOK, "Evaluation complete", evaluation)
}

// Recommend handles POST /api/v1/recommendations
func (h *Handler) Recommend(c *gin.Context) {
	if h.recommender == nil {
		h.serviceUnavailable(c)
		return
	}

	req, profile, ok := h.bindProfile(c)
	if !ok {
		return
	}

	recs, err := h.recommender.Recommend(c.Request.Context(), profile, req.Limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	Success(c, http.StatusOK, "Recommendations found", recs)
}

// AssessRoutine handles POST /api/v1/routine/assessment. It needs no dataset.
func (h *Handler) AssessRoutine(c *gin.Context) {
	_, profile, ok := h.bindProfile(c)
	if !ok {
		return
	}

	Success(c, http.StatusOK, "Routine assessed", usecase.AssessRoutine(profile))
}

// ListConcerns handles GET /api/v1/concerns
func (h *Handler) ListConcerns(c *gin.Context) {
	Success(c, http.StatusOK, "Concern vocabulary", gin.H{
		"concerns":     domain.ConcernVocabulary,
		"skinTypes":    domain.AllSkinTypes(),
		"stressLevels": []domain.StressLevel{domain.StressLow, domain.StressMedium, domain.StressHigh},
	})
}

// DatasetSummary handles GET /api/v1/dataset/summary
func (h *Handler) DatasetSummary(c *gin.Context) {
	if h.summarizer == nil {
		h.serviceUnavailable(c)
		return
	}

	summary, err := h.summarizer.Summary(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	Success(c, http.StatusOK, "Dataset summary", summary)
}

// DatasetPreview handles GET /api/v1/dataset/preview?rows=N
func (h *Handler) DatasetPreview(c *gin.Context) {
	if h.summarizer == nil {
		h.serviceUnavailable(c)
		return
	}

	var query PreviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		Error(c, http.StatusBadRequest, "INVALID_REQUEST", "rows must be an integer")
		return
	}
	if !h.validate(c, query) {
		return
	}

	preview, err := h.summarizer.Preview(query.Rows)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	Success(c, http.StatusOK, "Dataset preview", preview)
}

// bindProfile decodes and validates the request body, writing a 400 on failure
func (h *Handler) bindProfile(c *gin.Context) (ProfileRequest, domain.UserProfile, bool) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return req, domain.UserProfile{}, false
	}

	if !h.validate(c, req) {
		return req, domain.UserProfile{}, false
	}

	profile, err := req.toProfile()
	if err != nil {
		h.handleServiceError(c, err)
		return req, domain.UserProfile{}, false
	}

	return req, profile, true
}

func (h *Handler) validate(c *gin.Context, v any) bool {
	err := validation.Struct(v)
	if err == nil {
		return true
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		ValidationError(c, http.StatusBadRequest, verr)
		return false
	}

	log.Error().Err(err).Msg("request validation failed unexpectedly")
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	return false
}

// handleServiceError maps domain errors to HTTP responses
func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownSkinType):
		Error(c, http.StatusBadRequest, "INVALID_SKIN_TYPE", err.Error())
	case errors.Is(err, domain.ErrUnknownStressLevel):
		Error(c, http.StatusBadRequest, "INVALID_STRESS_LEVEL", err.Error())
	case errors.Is(err, domain.ErrInvalidProfile):
		Error(c, http.StatusBadRequest, "INVALID_PROFILE", err.Error())
	case errors.Is(err, domain.ErrDatasetNotLoaded):
		h.serviceUnavailable(c)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusServiceUnavailable, "REQUEST_CANCELLED", "Request cancelled")
	default:
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("request failed")
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func (h *Handler) serviceUnavailable(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, "DATASET_NOT_LOADED", "Product dataset not loaded")
}
