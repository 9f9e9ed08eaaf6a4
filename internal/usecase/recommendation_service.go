package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dermalens/backend/internal/domain"
	"github.com/dermalens/backend/internal/metrics"
)

// Defaults for recommendation output
const (
	DefaultTopN          = 5
	DefaultHistogramBins = 20
)

// RecommendConfig holds configuration for the recommendation service
type RecommendConfig struct {
	TopN          int
	HistogramBins int
}

// RecommendationService answers per-profile evaluations against a loaded catalog
type RecommendationService struct {
	catalog       *domain.Catalog
	topN          int
	histogramBins int
}

// NewRecommendationService creates a recommendation service over catalog
func NewRecommendationService(catalog *domain.Catalog, config RecommendConfig) *RecommendationService {
	topN := config.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	bins := config.HistogramBins
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	return &RecommendationService{
		catalog:       catalog,
		topN:          topN,
		histogramBins: bins,
	}
}

// Recommend returns the top products for profile. A non-positive limit uses the configured top N.
func (s *RecommendationService) Recommend(ctx context.Context, profile domain.UserProfile, limit int) ([]domain.Recommendation, error) {
	if err := s.ready(ctx, profile); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.topN
	}

	recs := Recommend(s.catalog, profile, limit)
	metrics.RecommendationResults.Observe(float64(len(recs)))
	return recs, nil
}

// Evaluate runs the recommendation scorer and the routine scorer for one profile,
// and buckets the prices of every product suitable for the profile's skin type.
func (s *RecommendationService) Evaluate(ctx context.Context, profile domain.UserProfile, limit int) (*domain.Evaluation, error) {
	if err := s.ready(ctx, profile); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.topN
	}

	candidates := rankCandidates(s.catalog, profile)

	prices := make([]*float64, len(candidates))
	for i, c := range candidates {
		prices[i] = c.product.Price
	}

	evaluation := &domain.Evaluation{
		Recommendations:   toRecommendations(candidates, limit),
		Routine:           AssessRoutine(profile),
		PriceDistribution: buildHistogram(presentValues(prices), s.histogramBins),
	}

	metrics.Evaluations.WithLabelValues(profile.SkinType.String()).Inc()
	metrics.RecommendationResults.Observe(float64(len(evaluation.Recommendations)))
	metrics.RoutineScores.Observe(float64(evaluation.Routine.Score))

	return evaluation, nil
}

func (s *RecommendationService) ready(ctx context.Context, profile domain.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.catalog == nil {
		return domain.ErrDatasetNotLoaded
	}
	return checkProfile(profile)
}

// checkProfile rejects profiles no request could produce
func checkProfile(profile domain.UserProfile) error {
	if !profile.SkinType.Valid() {
		return fmt.Errorf("%w: %v", domain.ErrInvalidProfile, profile.SkinType)
	}
	if profile.WaterIntakeGlasses < 0 || profile.SleepHours < 0 {
		return fmt.Errorf("%w: water intake and sleep hours must not be negative", domain.ErrInvalidProfile)
	}
	return nil
}

// candidate is a product that passed the skin-type filter
type candidate struct {
	product domain.Product
	score   int
}

// Recommend filters catalog to products suitable for the profile's skin type,
// scores them against the profile's concerns and returns at most limit of them,
// best first. A non-positive limit means DefaultTopN.
func Recommend(catalog *domain.Catalog, profile domain.UserProfile, limit int) []domain.Recommendation {
	if limit <= 0 {
		limit = DefaultTopN
	}
	return toRecommendations(rankCandidates(catalog, profile), limit)
}

// rankCandidates returns every suitable product ordered by score descending,
// then rank ascending. Products without a rank sort after ranked ones; full
// ties keep catalog order.
func rankCandidates(catalog *domain.Catalog, profile domain.UserProfile) []candidate {
	concerns := normalizeConcerns(profile.Concerns)

	var candidates []candidate
	for _, p := range catalog.Products() {
		if !p.SuitableFor(profile.SkinType) {
			continue
		}
		candidates = append(candidates, candidate{
			product: p,
			score:   relevanceScore(p, concerns),
		})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return compareRank(a.product.Rank, b.product.Rank)
	})

	log.Debug().
		Str("skin_type", profile.SkinType.String()).
		Strs("concerns", concerns).
		Int("candidates", len(candidates)).
		Msg("candidates ranked")

	return candidates
}

// relevanceScore adds one point per concern found in the label and one per concern
// found in the ingredients. concerns must already be lower-cased.
func relevanceScore(p domain.Product, concerns []string) int {
	if len(concerns) == 0 {
		return 0
	}

	label := strings.ToLower(p.Label)
	ingredients := strings.ToLower(p.Ingredients)

	score := 0
	for _, c := range concerns {
		if strings.Contains(label, c) {
			score++
		}
		if strings.Contains(ingredients, c) {
			score++
		}
	}
	return score
}

// compareRank orders present ranks ascending and absent ranks last
func compareRank(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

func toRecommendations(candidates []candidate, limit int) []domain.Recommendation {
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		recs = append(recs, domain.Recommendation{
			Product:          c.product,
			MatchScore:       c.score,
			SearchByNameURL:  searchURL(c.product.Name),
			SearchByBrandURL: searchURL(c.product.Brand),
		})
	}
	return recs
}
