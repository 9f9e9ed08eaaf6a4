package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dermalens/backend/internal/domain"
	"github.com/dermalens/backend/internal/metrics"
)

// SummaryConfig holds configuration for the dataset summary service
type SummaryConfig struct {
	CacheTTL      time.Duration
	PreviewRows   int
	HistogramBins int
	TopK          int
}

// Defaults for the dataset page
const (
	DefaultPreviewRows          = 10
	DefaultSummaryHistogramBins = 30
	DefaultTopK                 = 10
	defaultSummaryCacheTTL      = 24 * time.Hour
)

// SummaryService computes dataset-wide aggregations with caching
type SummaryService struct {
	catalog       *domain.Catalog
	cache         domain.CacheRepository
	cacheTTL      time.Duration
	previewRows   int
	histogramBins int
	topK          int
}

// NewSummaryService creates a new summary service with dependencies
func NewSummaryService(catalog *domain.Catalog, cache domain.CacheRepository, config SummaryConfig) *SummaryService {
	s := &SummaryService{
		catalog:       catalog,
		cache:         cache,
		cacheTTL:      config.CacheTTL,
		previewRows:   config.PreviewRows,
		histogramBins: config.HistogramBins,
		topK:          config.TopK,
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = defaultSummaryCacheTTL
	}
	if s.previewRows <= 0 {
		s.previewRows = DefaultPreviewRows
	}
	if s.histogramBins <= 0 {
		s.histogramBins = DefaultSummaryHistogramBins
	}
	if s.topK <= 0 {
		s.topK = DefaultTopK
	}
	return s
}

// Summary returns every dataset aggregation.
// Flow: check cache -> compute -> cache -> return
func (s *SummaryService) Summary(ctx context.Context) (*domain.DatasetSummary, error) {
	if s.catalog == nil {
		return nil, domain.ErrDatasetNotLoaded
	}

	cacheKey := s.cacheKey()

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		metrics.SummaryCacheHits.Inc()
		return cached, nil
	}
	metrics.SummaryCacheMisses.Inc()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := s.compute()

	// Log but don't fail if caching fails
	if err := s.setInCache(ctx, cacheKey, summary); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache dataset summary")
	}

	return summary, nil
}

// Preview returns the first and last rows of the catalog. A non-positive rows uses the configured default.
func (s *SummaryService) Preview(rows int) (domain.Preview, error) {
	if s.catalog == nil {
		return domain.Preview{}, domain.ErrDatasetNotLoaded
	}
	if rows <= 0 {
		rows = s.previewRows
	}
	return buildPreview(s.catalog.Products(), rows), nil
}

// cacheKey changes whenever the data or any aggregation parameter changes.
// Format: "summary:{version}:{preview}:{bins}:{topK}"
func (s *SummaryService) cacheKey() string {
	return fmt.Sprintf("summary:%s:%d:%d:%d", s.catalog.Version(), s.previewRows, s.histogramBins, s.topK)
}

func (s *SummaryService) compute() *domain.DatasetSummary {
	products := s.catalog.Products()

	brands := make([]string, len(products))
	prices := make([]*float64, len(products))
	ranks := make([]*float64, len(products))
	var ingredients []string
	for i, p := range products {
		brands[i] = strings.TrimSpace(p.Brand)
		prices[i] = p.Price
		ranks[i] = p.Rank
		ingredients = append(ingredients, splitIngredients(p.Ingredients)...)
	}

	return &domain.DatasetSummary{
		Version:              s.catalog.Version(),
		GeneratedAt:          time.Now().UTC(),
		Preview:              buildPreview(products, s.previewRows),
		Statistics:           describeColumns(products, prices, ranks),
		TopBrands:            topCounts(brands, s.topK),
		MeanRankBySkinType:   meanRankBySkinType(products),
		PriceDistribution:    buildHistogram(presentValues(prices), s.histogramBins),
		TopIngredients:       topCounts(ingredients, s.topK),
		TopBrandsByMeanPrice: topByMean(groupMean(brands, prices), s.topK),
	}
}

func buildPreview(products []domain.Product, rows int) domain.Preview {
	head := min(rows, len(products))
	tail := max(len(products)-rows, 0)
	return domain.Preview{
		TotalRows: len(products),
		Head:      slices.Clone(products[:head]),
		Tail:      slices.Clone(products[tail:]),
	}
}

// describeColumns covers every numeric column of the table: the five 0/1 skin-type
// flags, then price and rank
func describeColumns(products []domain.Product, prices, ranks []*float64) []domain.ColumnStats {
	stats := make([]domain.ColumnStats, 0, len(domain.AllSkinTypes())+2)
	for _, t := range domain.AllSkinTypes() {
		flags := make([]float64, len(products))
		for i, p := range products {
			if p.SuitableFor(t) {
				flags[i] = 1
			}
		}
		stats = append(stats, describe(t.String(), flags))
	}
	stats = append(stats, describe("Price", presentValues(prices)))
	stats = append(stats, describe("Rank", presentValues(ranks)))
	return stats
}

// meanRankBySkinType always reports all five types; Mean is nil when no ranked product matches
func meanRankBySkinType(products []domain.Product) []domain.MeanEntry {
	entries := make([]domain.MeanEntry, 0, len(domain.AllSkinTypes()))
	for _, t := range domain.AllSkinTypes() {
		var ranks []*float64
		for _, p := range products {
			if p.SuitableFor(t) {
				ranks = append(ranks, p.Rank)
			}
		}
		present := presentValues(ranks)
		entry := domain.MeanEntry{Key: t.String(), Count: len(present)}
		if len(present) > 0 {
			entry.Mean = ptr(meanOf(present))
		}
		entries = append(entries, entry)
	}
	return entries
}

// splitIngredients splits a comma-separated ingredient list into trimmed, non-empty tokens
func splitIngredients(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// topByMean orders groups by mean descending and keeps the first k
func topByMean(entries []domain.MeanEntry, k int) []domain.MeanEntry {
	slices.SortStableFunc(entries, func(a, b domain.MeanEntry) int {
		return cmp.Compare(*b.Mean, *a.Mean)
	})
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// getFromCache retrieves a summary from cache
func (s *SummaryService) getFromCache(ctx context.Context, key string) (*domain.DatasetSummary, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var summary domain.DatasetSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &summary, nil
}

// setInCache stores a summary in cache
func (s *SummaryService) setInCache(ctx context.Context, key string, summary *domain.DatasetSummary) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
