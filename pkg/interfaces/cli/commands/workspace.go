package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/bomcost/pkg/application/services/cache"
	"github.com/vsinha/bomcost/pkg/application/services/costing"
	"github.com/vsinha/bomcost/pkg/application/services/sales"
	"github.com/vsinha/bomcost/pkg/config"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/domain/services"
	"github.com/vsinha/bomcost/pkg/infrastructure/metrics"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/bomcost/pkg/log"
)

// Sources names the CSV files a command reads. Empty paths are skipped.
type Sources struct {
	MaterialsFile string
	BOMFile       string
	SalesFile     string
}

// Workspace wires the repositories, the product metrics cache and the
// services a report runs against
type Workspace struct {
	Catalog    repositories.CatalogRepository
	BOM        repositories.BOMRepository
	Sales      repositories.SalesRepository
	Costing    *costing.Service
	Calculator *sales.Calculator

	// Warnings collects catalog and BOM consistency findings from loading
	Warnings []string

	conn *postgres.Connection
}

// OpenWorkspace builds a workspace backed by PostgreSQL when a DSN is
// configured and by in-memory repositories otherwise, then loads sources
func OpenWorkspace(ctx context.Context, settings *config.Config, sources Sources, reg prometheus.Registerer, logger log.Logger) (*Workspace, error) {
	logger = log.OrDefault(logger)
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	calculator, err := sales.NewCalculatorFromConfig(settings.Sales, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure sales calculator: %w", err)
	}

	metricsCache := costing.NewMetricsCache(
		cache.WithObserver(metrics.NewCacheMetrics(reg, settings.Metrics.Prefix)),
	)

	ws := &Workspace{Calculator: calculator}
	if settings.Database.DSN != "" {
		conn, err := postgres.NewConnection(ctx, settings.Database)
		if err != nil {
			return nil, err
		}
		if err := conn.Migrate(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
		ws.conn = conn
		ws.Catalog = postgres.NewCatalogStore(conn, metricsCache, logger)
		ws.BOM = postgres.NewBOMStore(conn, metricsCache, logger)
		ws.Sales = postgres.NewSalesStore(conn)
		logger.Info("using PostgreSQL repositories")
	} else {
		ws.Catalog = memory.NewCatalogRepository(0, metricsCache)
		ws.BOM = memory.NewBOMRepository(0, metricsCache)
		ws.Sales = memory.NewSalesRepository()
	}
	ws.Costing = costing.NewService(ws.Catalog, ws.BOM, metricsCache, logger)

	if err := ws.load(sources, logger); err != nil {
		_ = ws.Close()
		return nil, err
	}
	return ws, nil
}

// Persistent reports whether the workspace is backed by a database
func (w *Workspace) Persistent() bool {
	return w.conn != nil
}

// Close releases the database connection, if any
func (w *Workspace) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}

func (w *Workspace) load(sources Sources, logger log.Logger) error {
	loader := csv.NewLoader(logger)
	validator := services.NewBOMValidator()

	if sources.MaterialsFile != "" {
		materials, err := loader.LoadMaterials(sources.MaterialsFile)
		if err != nil {
			return fmt.Errorf("error loading materials: %w", err)
		}
		w.warn(logger, validator.ValidateMaterialCodeUniqueness(materials))
		if err := w.Catalog.LoadMaterials(materials); err != nil {
			return fmt.Errorf("failed to load materials into repository: %w", err)
		}
		logger.WithField("count", len(materials)).Debug("materials loaded")
	}

	if sources.BOMFile != "" {
		lines, err := loader.LoadBOM(sources.BOMFile)
		if err != nil {
			return fmt.Errorf("error loading BOM: %w", err)
		}
		catalog, err := w.Catalog.GetAllMaterials()
		if err != nil {
			return fmt.Errorf("failed to read catalog: %w", err)
		}
		w.warn(logger, validator.ValidateBOM(lines, catalog))
		if err := w.BOM.LoadBOMLines(lines); err != nil {
			return fmt.Errorf("failed to load BOM lines into repository: %w", err)
		}
		logger.WithField("count", len(lines)).Debug("BOM lines loaded")
	}

	if sources.SalesFile != "" {
		records, err := loader.LoadSales(sources.SalesFile)
		if err != nil {
			return fmt.Errorf("error loading sales: %w", err)
		}
		if err := w.Sales.LoadSales(records); err != nil {
			return fmt.Errorf("failed to load sales into repository: %w", err)
		}
		logger.WithField("count", len(records)).Debug("sale records loaded")
	}

	return nil
}

func (w *Workspace) warn(logger log.Logger, result *services.ValidationResult) {
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	w.Warnings = append(w.Warnings, result.Warnings...)
}
