package costing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/application/services/cache"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/log"
)

// MetricsCache memoizes product metrics per cache generation
type MetricsCache = cache.VersionedCache[entities.ProductCode, entities.ProductMetrics]

// NewMetricsCache creates an empty product metrics cache
func NewMetricsCache(opts ...cache.Option) *MetricsCache {
	return cache.NewVersionedCache[entities.ProductCode, entities.ProductMetrics](opts...)
}

// Service computes product weight and cost from the catalog and BOM table
type Service struct {
	catalog    repositories.CatalogRepository
	bom        repositories.BOMRepository
	cache      *MetricsCache
	aggregator *Aggregator
	logger     log.Logger
}

// NewService creates a costing service. The cache should also be the
// invalidator handed to the repositories so mutations retire cached metrics.
func NewService(
	catalog repositories.CatalogRepository,
	bom repositories.BOMRepository,
	metricsCache *MetricsCache,
	logger log.Logger,
) *Service {
	if metricsCache == nil {
		metricsCache = NewMetricsCache()
	}
	logger = log.OrDefault(logger)
	return &Service{
		catalog:    catalog,
		bom:        bom,
		cache:      metricsCache,
		aggregator: NewAggregator(logger),
		logger:     logger,
	}
}

// ProductMetrics returns the cached or freshly computed metrics of one unit of a product
func (s *Service) ProductMetrics(productCode entities.ProductCode) (entities.ProductMetrics, error) {
	if strings.TrimSpace(string(productCode)) == "" {
		return entities.ProductMetrics{}, fmt.Errorf("product code: %w", entities.ErrEmptyCode)
	}

	// the generation is read before the snapshot so a concurrent mutation
	// always makes this computation stale
	generation := s.cache.Generation()
	metrics, err := s.cache.GetOrCompute(productCode, generation, func() (entities.ProductMetrics, error) {
		snapshot, err := TakeSnapshot(s.catalog, s.bom, productCode)
		if err != nil {
			return entities.ProductMetrics{}, err
		}
		metrics := s.aggregator.Aggregate(snapshot)
		metrics.Generation = generation
		return metrics, nil
	})
	if err != nil {
		return entities.ProductMetrics{}, err
	}

	metrics.Boards = append([]entities.BoardUsage(nil), metrics.Boards...)
	return metrics, nil
}

// ComputeProductWeight returns the corrugated board weight of one unit in kg
func (s *Service) ComputeProductWeight(productCode entities.ProductCode) (decimal.Decimal, error) {
	metrics, err := s.ProductMetrics(productCode)
	if err != nil {
		return decimal.Zero, err
	}
	return metrics.WeightKg, nil
}

// ComputeProductCost returns the material cost of one unit
func (s *Service) ComputeProductCost(productCode entities.ProductCode) (decimal.Decimal, error) {
	metrics, err := s.ProductMetrics(productCode)
	if err != nil {
		return decimal.Zero, err
	}
	return metrics.Cost, nil
}

// WeightOf implements groups.Costable
func (s *Service) WeightOf(productCode entities.ProductCode) (decimal.Decimal, error) {
	return s.ComputeProductWeight(productCode)
}

// CostOf implements groups.Costable
func (s *Service) CostOf(productCode entities.ProductCode) (decimal.Decimal, error) {
	return s.ComputeProductCost(productCode)
}

// BoardUsageOf implements groups.BoardProfiler
func (s *Service) BoardUsageOf(productCode entities.ProductCode) ([]entities.BoardUsage, error) {
	metrics, err := s.ProductMetrics(productCode)
	if err != nil {
		return nil, err
	}
	return metrics.Boards, nil
}

// InvalidateProductCache retires every cached product metric and returns the new generation
func (s *Service) InvalidateProductCache() uint64 {
	generation := s.cache.InvalidateAll()
	s.logger.WithField("generation", generation).Debug("product cache invalidated")
	return generation
}

// Generation returns the current cache generation
func (s *Service) Generation() uint64 {
	return s.cache.Generation()
}
