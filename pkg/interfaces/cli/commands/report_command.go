package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/bomcost/pkg/application/services/cohort"
	"github.com/vsinha/bomcost/pkg/application/services/groups"
	"github.com/vsinha/bomcost/pkg/config"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/interfaces/cli/output"
	"github.com/vsinha/bomcost/pkg/log"
)

// Config holds configuration shared by the report commands
type Config struct {
	Sources
	Format         string
	Products       []string
	Start          string
	End            string
	BoardBreakdown bool
	Writer         io.Writer
}

type command struct {
	config   Config
	settings *config.Config
	registry prometheus.Registerer
	logger   log.Logger
}

func newCommand(cfg Config, settings *config.Config, reg prometheus.Registerer, logger log.Logger) command {
	if cfg.Format == "" {
		cfg.Format = output.FormatText
	}
	return command{config: cfg, settings: settings, registry: reg, logger: log.OrDefault(logger)}
}

func (c *command) open(ctx context.Context, required map[string]string) (*Workspace, error) {
	if err := output.ValidateFormat(c.config.Format); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if c.settings.Database.DSN == "" {
		for flag, path := range required {
			if path == "" {
				return nil, fmt.Errorf("validation error: --%s is required without a database", flag)
			}
		}
	}
	return OpenWorkspace(ctx, c.settings, c.config.Sources, c.registry, c.logger.WithContext(ctx))
}

func (c *command) output() output.Config {
	return output.Config{Format: c.config.Format, Writer: c.config.Writer}
}

// ProductCommand reports per-unit weight and cost of products
type ProductCommand struct {
	command
}

// NewProductCommand creates a product metrics command
func NewProductCommand(cfg Config, settings *config.Config, reg prometheus.Registerer, logger log.Logger) *ProductCommand {
	return &ProductCommand{command: newCommand(cfg, settings, reg, logger)}
}

// Execute runs the product command
func (c *ProductCommand) Execute(ctx context.Context) error {
	ws, err := c.open(ctx, map[string]string{
		"materials": c.config.MaterialsFile,
		"bom":       c.config.BOMFile,
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	codes, err := c.productCodes(ws)
	if err != nil {
		return err
	}

	results := make([]entities.ProductMetrics, 0, len(codes))
	for _, code := range codes {
		metrics, err := ws.Costing.ProductMetrics(code)
		if err != nil {
			return fmt.Errorf("failed to compute metrics for %s: %w", code, err)
		}
		results = append(results, metrics)
	}

	return output.Products(results, c.output())
}

func (c *ProductCommand) productCodes(ws *Workspace) ([]entities.ProductCode, error) {
	if len(c.config.Products) > 0 {
		codes := make([]entities.ProductCode, 0, len(c.config.Products))
		for _, p := range c.config.Products {
			codes = append(codes, entities.ProductCode(strings.TrimSpace(p)))
		}
		return codes, nil
	}

	lines, err := ws.BOM.GetAllBOMLines()
	if err != nil {
		return nil, fmt.Errorf("failed to list BOM lines: %w", err)
	}
	seen := make(map[entities.ProductCode]struct{})
	var codes []entities.ProductCode
	for _, line := range lines {
		if _, ok := seen[line.ProductCode]; !ok {
			seen[line.ProductCode] = struct{}{}
			codes = append(codes, line.ProductCode)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes, nil
}

// GroupsCommand reports sales, cost and weight per customer group
type GroupsCommand struct {
	command
}

// NewGroupsCommand creates a customer group command
func NewGroupsCommand(cfg Config, settings *config.Config, reg prometheus.Registerer, logger log.Logger) *GroupsCommand {
	return &GroupsCommand{command: newCommand(cfg, settings, reg, logger)}
}

// Execute runs the groups command
func (c *GroupsCommand) Execute(ctx context.Context) error {
	ws, err := c.open(ctx, map[string]string{
		"materials": c.config.MaterialsFile,
		"bom":       c.config.BOMFile,
		"sales":     c.config.SalesFile,
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	records, err := salesOf(ctx, ws)
	if err != nil {
		return err
	}

	analyzer := groups.NewAnalyzer(ws.Costing, ws.Costing, ws.Calculator, c.settings.Costing.FallbackCostRatio, c.logger)
	snapshots := analyzer.Analyze(records, groups.Options{BoardBreakdown: c.config.BoardBreakdown})

	return output.Groups(snapshots, c.output())
}

// CohortCommand reports the cohort analysis of the sales history
type CohortCommand struct {
	command
}

// NewCohortCommand creates a cohort analysis command
func NewCohortCommand(cfg Config, settings *config.Config, reg prometheus.Registerer, logger log.Logger) *CohortCommand {
	return &CohortCommand{command: newCommand(cfg, settings, reg, logger)}
}

// Execute runs the cohort command
func (c *CohortCommand) Execute(ctx context.Context) error {
	start, err := parseBound(c.config.Start)
	if err != nil {
		return fmt.Errorf("validation error: invalid start: %w", err)
	}
	end, err := parseBound(c.config.End)
	if err != nil {
		return fmt.Errorf("validation error: invalid end: %w", err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("validation error: end %s is before start %s", c.config.End, c.config.Start)
	}

	ws, err := c.open(ctx, map[string]string{"sales": c.config.SalesFile})
	if err != nil {
		return err
	}
	defer ws.Close()

	records, err := salesOf(ctx, ws)
	if err != nil {
		return err
	}

	result := cohort.NewEngine(ws.Calculator, c.logger).Analyze(records, start, end)
	return output.Cohorts(result, c.output())
}

func salesOf(ctx context.Context, ws *Workspace) ([]entities.SaleRecord, error) {
	records, err := ws.Sales.GetSales()
	if err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}
	normalized, err := ws.Calculator.NormalizeRecords(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize sales: %w", err)
	}
	return normalized, nil
}

// parseBound accepts a date (2006-01-02) or a month (2006-01); empty means unbounded
func parseBound(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	month, err := entities.ParseMonth(value)
	if err != nil {
		return nil, err
	}
	t := month.Time()
	return &t, nil
}
