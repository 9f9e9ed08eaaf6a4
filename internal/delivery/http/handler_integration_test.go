package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermalens/backend/config"
	"github.com/dermalens/backend/internal/domain"
	"github.com/dermalens/backend/internal/infrastructure/cache"
	"github.com/dermalens/backend/internal/metrics"
	"github.com/dermalens/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func f(v float64) *float64 { return &v }

// testCatalog returns a small catalog covering every branch of the scorer
func testCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Product{
		{
			Name: "Anti-Aging Night Cream", Brand: "LUMA", Label: "Moisturizer",
			Ingredients: "Water, Retinol, Anti-aging peptide",
			SkinTypes:   domain.NewSkinTypeSet(domain.SkinDry, domain.SkinNormal),
			Price:       f(68), Rank: f(4.5),
		},
		{
			Name: "Daily Gel Cleanser", Brand: "PURE & CO", Label: "Cleanser",
			Ingredients: "Water, Glycerin",
			SkinTypes:   domain.NewSkinTypeSet(domain.SkinOily),
			Price:       f(22), Rank: f(4.1),
		},
		{
			Name: "Hydra Balm", Brand: "LUMA", Label: "Moisturizer",
			Ingredients: "Shea butter",
			SkinTypes:   domain.NewSkinTypeSet(domain.SkinDry),
			Price:       nil, Rank: f(3.9),
		},
	}, "test-version")
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*", "https://app.dermalens.io"},
		},
		Cache:     config.CacheConfig{Type: "memory", TTL: time.Hour},
		RateLimit: config.RateLimitConfig{PerIP: 0},
	}
}

// setupTestRouter creates a test router backed by real services over testCatalog
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	catalog := testCatalog()
	memCache := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { memCache.Close() })

	recommender := usecase.NewRecommendationService(catalog, usecase.RecommendConfig{TopN: 5, HistogramBins: 4})
	summarizer := usecase.NewSummaryService(catalog, memCache, usecase.SummaryConfig{CacheTTL: time.Hour, PreviewRows: 2})

	return SetupRouter(testConfig(), NewHandler(catalog, recommender, summarizer))
}

// envelope mirrors Response with a raw data payload
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
	Meta    Meta            `json:"meta"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w, env
}

const dryAgingProfile = `{
	"skinType": "Dry",
	"concerns": ["Aging"],
	"usedCleanser": true,
	"usedMoisturizer": false,
	"usedSunscreen": true,
	"waterIntakeGlasses": 9,
	"sleepHours": 6,
	"stressLevel": "Low"
}`

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "dermalens-backend", response["service"])
		assert.Equal(t, float64(3), response["products"])
		assert.Equal(t, "test-version", response["dataset"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(method, "/health", nil))

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestEvaluateEndpoint(t *testing.T) {
	t.Run("returns recommendations, routine and price distribution", func(t *testing.T) {
		router := setupTestRouter(t)

		w, env := doJSON(t, router, "POST", "/api/v1/evaluations", dryAgingProfile)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, env.Success)

		var evaluation domain.Evaluation
		require.NoError(t, json.Unmarshal(env.Data, &evaluation))

		require.Len(t, evaluation.Recommendations, 2)
		assert.Equal(t, "Anti-Aging Night Cream", evaluation.Recommendations[0].Product.Name)
		assert.Equal(t, 1, evaluation.Recommendations[0].MatchScore)
		assert.Equal(t, "Hydra Balm", evaluation.Recommendations[1].Product.Name)

		assert.Equal(t, 60, evaluation.Routine.Score)
		require.Len(t, evaluation.Routine.Feedback, 5)
		assert.False(t, evaluation.Routine.Feedback[1].Passed)
		assert.False(t, evaluation.Routine.Feedback[4].Passed)

		// Only one of the two Dry products has a price
		assert.Equal(t, 1, evaluation.PriceDistribution.Count)
	})

	t.Run("respects limit", func(t *testing.T) {
		router := setupTestRouter(t)

		body := strings.Replace(dryAgingProfile, `"stressLevel": "Low"`, `"stressLevel": "Low", "limit": 1`, 1)
		w, env := doJSON(t, router, "POST", "/api/v1/evaluations", body)
		require.Equal(t, http.StatusOK, w.Code)

		var evaluation domain.Evaluation
		require.NoError(t, json.Unmarshal(env.Data, &evaluation))
		assert.Len(t, evaluation.Recommendations, 1)
	})
}

func TestRecommendEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, "POST", "/api/v1/recommendations", `{"skinType":"oily","concerns":[]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var recs []domain.Recommendation
	require.NoError(t, json.Unmarshal(env.Data, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "Daily Gel Cleanser", recs[0].Product.Name)
	assert.Equal(t, "https://incidecoder.com/search?query=PURE%20%26%20CO", recs[0].SearchByBrandURL)
}

func TestAssessRoutineEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, "POST", "/api/v1/routine/assessment", dryAgingProfile)
	require.Equal(t, http.StatusOK, w.Code)

	var assessment domain.RoutineAssessment
	require.NoError(t, json.Unmarshal(env.Data, &assessment))
	assert.Equal(t, 60, assessment.Score)
	assert.Equal(t, domain.CheckMoisturizer, assessment.Feedback[1].Check)
	assert.Equal(t, domain.CheckSleep, assessment.Feedback[4].Check)
}

func TestProfileValidation(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "malformed json", body: `{"skinType":`, wantCode: "INVALID_REQUEST"},
		{name: "missing skin type", body: `{"concerns":["Acne"]}`, wantCode: "VALIDATION_ERROR"},
		{name: "unknown skin type", body: `{"skinType":"Scaly"}`, wantCode: "INVALID_SKIN_TYPE"},
		{name: "negative water intake", body: `{"skinType":"Dry","waterIntakeGlasses":-1}`, wantCode: "VALIDATION_ERROR"},
		{name: "sleep over 24 hours", body: `{"skinType":"Dry","sleepHours":25}`, wantCode: "VALIDATION_ERROR"},
		{name: "unknown stress level", body: `{"skinType":"Dry","stressLevel":"Extreme"}`, wantCode: "INVALID_STRESS_LEVEL"},
		{name: "limit too large", body: `{"skinType":"Dry","limit":1000}`, wantCode: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/v1/evaluations", "/api/v1/recommendations", "/api/v1/routine/assessment"} {
				w, env := doJSON(t, router, "POST", path, tt.body)
				require.Equal(t, http.StatusBadRequest, w.Code, "%s: %s", path, w.Body.String())
				require.NotNil(t, env.Error, path)
				assert.Equal(t, tt.wantCode, env.Error.Code, path)
				assert.False(t, env.Success)
			}
		})
	}

	t.Run("stress level is case-insensitive", func(t *testing.T) {
		for _, level := range []string{"low", "MEDIUM", " High "} {
			body := fmt.Sprintf(`{"skinType":"dry","stressLevel":%q}`, level)
			for _, path := range []string{"/api/v1/evaluations", "/api/v1/recommendations", "/api/v1/routine/assessment"} {
				w, _ := doJSON(t, router, "POST", path, body)
				assert.Equal(t, http.StatusOK, w.Code, "%s %s: %s", path, level, w.Body.String())
			}
		}
	})

	t.Run("validation errors name the json field", func(t *testing.T) {
		_, env := doJSON(t, router, "POST", "/api/v1/recommendations", `{"skinType":"Dry","sleepHours":25}`)
		require.NotNil(t, env.Error)
		require.Len(t, env.Error.Fields, 1)
		assert.Equal(t, "sleepHours", env.Error.Fields[0].Field)
	})
}

func TestDatasetEndpoints(t *testing.T) {
	t.Run("summary", func(t *testing.T) {
		router := setupTestRouter(t)

		w, env := doJSON(t, router, "GET", "/api/v1/dataset/summary", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var summary domain.DatasetSummary
		require.NoError(t, json.Unmarshal(env.Data, &summary))
		assert.Equal(t, "test-version", summary.Version)
		assert.Equal(t, 3, summary.Preview.TotalRows)
		assert.Len(t, summary.Preview.Head, 2)
		require.NotEmpty(t, summary.TopBrands)
		assert.Equal(t, domain.CountEntry{Key: "LUMA", Count: 2}, summary.TopBrands[0])
		assert.Len(t, summary.MeanRankBySkinType, 5)

		// Second call is served from cache and is identical
		_, again := doJSON(t, router, "GET", "/api/v1/dataset/summary", "")
		assert.JSONEq(t, string(env.Data), string(again.Data))
	})

	t.Run("preview with rows", func(t *testing.T) {
		router := setupTestRouter(t)

		w, env := doJSON(t, router, "GET", "/api/v1/dataset/preview?rows=1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var preview domain.Preview
		require.NoError(t, json.Unmarshal(env.Data, &preview))
		require.Len(t, preview.Head, 1)
		require.Len(t, preview.Tail, 1)
		assert.Equal(t, "Anti-Aging Night Cream", preview.Head[0].Name)
		assert.Equal(t, "Hydra Balm", preview.Tail[0].Name)
	})

	t.Run("preview rejects bad rows", func(t *testing.T) {
		router := setupTestRouter(t)

		for _, q := range []string{"rows=abc", "rows=-1", "rows=100000"} {
			w, _ := doJSON(t, router, "GET", "/api/v1/dataset/preview?"+q, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})
}

// stubRecommender lets tests force service errors
type stubRecommender struct {
	err error
}

func (s *stubRecommender) Recommend(ctx context.Context, profile domain.UserProfile, limit int) ([]domain.Recommendation, error) {
	return nil, s.err
}

func (s *stubRecommender) Evaluate(ctx context.Context, profile domain.UserProfile, limit int) (*domain.Evaluation, error) {
	return nil, s.err
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "dataset not loaded", err: domain.ErrDatasetNotLoaded, wantStatus: http.StatusServiceUnavailable, wantCode: "DATASET_NOT_LOADED"},
		{name: "cancelled", err: context.Canceled, wantStatus: http.StatusServiceUnavailable, wantCode: "REQUEST_CANCELLED"},
		{name: "unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := SetupRouter(testConfig(), NewHandler(nil, &stubRecommender{err: tt.err}, nil))

			w, env := doJSON(t, router, "POST", "/api/v1/recommendations", `{"skinType":"Dry"}`)
			assert.Equal(t, tt.wantStatus, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}

	t.Run("missing services answer 503", func(t *testing.T) {
		router := SetupRouter(testConfig(), NewHandler(nil, nil, nil))

		w, _ := doJSON(t, router, "GET", "/api/v1/dataset/summary", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w, _ = doJSON(t, router, "POST", "/api/v1/evaluations", `{"skinType":"Dry"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		// Routine assessment needs no dataset
		w, _ = doJSON(t, router, "POST", "/api/v1/routine/assessment", `{"skinType":"Dry"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://app.dermalens.io")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.dermalens.io", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter(t)

	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	panics := metrics.APIRequestsTotal.WithLabelValues("GET", "/panic", "500")
	before := testutil.ToFloat64(panics)

	w, env := doJSON(t, router, "GET", "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.NotEmpty(t, env.Meta.RequestID)

	// Recovery runs inside the metrics middleware, so the 500 is counted
	assert.Equal(t, before+1, testutil.ToFloat64(panics))
}

func TestListConcernsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, "GET", "/api/v1/concerns", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Concerns     []string `json:"concerns"`
		SkinTypes    []string `json:"skinTypes"`
		StressLevels []string `json:"stressLevels"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.Equal(t, domain.ConcernVocabulary, data.Concerns)
	assert.Equal(t, []string{"Combination", "Dry", "Normal", "Oily", "Sensitive"}, data.SkinTypes)
	assert.Equal(t, []string{"Low", "Medium", "High"}, data.StressLevels)
}

func TestRateLimitIntegration(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.PerIP = 2
	router := SetupRouter(cfg, NewHandler(testCatalog(), nil, nil))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w, _ := doJSON(t, router, "POST", "/api/v1/routine/assessment", `{"skinType":"Dry"}`)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health is outside the limited group
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	doJSON(t, router, "GET", "/health", "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dermalens_api_requests_total")
}
