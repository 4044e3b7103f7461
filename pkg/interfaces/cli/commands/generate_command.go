package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/log"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Materials int   // Number of raw materials to generate
	Products  int   // Number of products to generate
	MaxLines  int   // Maximum BOM lines per product
	Buyers    int   // Number of buyers in the sales history
	Sales     int   // Number of sale records
	Months    int   // Length of the sales history in months
	OutputDir string
	Seed      int64 // Random seed for reproducible generation
}

// GenerateCommand writes a synthetic packaging scenario as CSV files
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	logger log.Logger
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, logger log.Logger) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		logger: log.OrDefault(logger).WithField("seed", seed),
	}
}

var (
	boardGrades     = []string{"B", "C", "E", "BC", "EB", "AAA"}
	otherCategories = []entities.Category{entities.Metal, entities.Foam, entities.Film, entities.Bracket, entities.Wood}
)

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	cmd.logger.WithFields(log.Fields{
		"materials": cmd.config.Materials,
		"products":  cmd.config.Products,
		"sales":     cmd.config.Sales,
		"output":    cmd.config.OutputDir,
	}).Info("generating scenario")

	if err := cmd.write("materials.csv", materialsHeader(), cmd.materialRows()); err != nil {
		return fmt.Errorf("failed to generate materials: %w", err)
	}
	if err := cmd.write("bom.csv", []string{"product_code", "material_code", "quantity", "unit", "note"}, cmd.bomRows()); err != nil {
		return fmt.Errorf("failed to generate BOM: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cmd.write("sales.csv", salesHeader(), cmd.saleRows()); err != nil {
		return fmt.Errorf("failed to generate sales: %w", err)
	}

	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.OutputDir == "":
		return fmt.Errorf("output directory is required")
	case cmd.config.Materials < 1:
		return fmt.Errorf("materials must be positive, got %d", cmd.config.Materials)
	case cmd.config.Products < 1:
		return fmt.Errorf("products must be positive, got %d", cmd.config.Products)
	case cmd.config.MaxLines < 1:
		return fmt.Errorf("max lines must be positive, got %d", cmd.config.MaxLines)
	case cmd.config.Buyers < 1:
		return fmt.Errorf("buyers must be positive, got %d", cmd.config.Buyers)
	case cmd.config.Months < 1:
		return fmt.Errorf("months must be positive, got %d", cmd.config.Months)
	case cmd.config.Sales < 0:
		return fmt.Errorf("sales cannot be negative, got %d", cmd.config.Sales)
	}
	return nil
}

func materialCode(i int) string { return fmt.Sprintf("RM-%04d", i) }
func productCode(i int) string  { return fmt.Sprintf("P-%04d", i) }

// materialRows makes roughly half of the catalog corrugated board
func (cmd *GenerateCommand) materialRows() [][]string {
	rows := make([][]string, 0, cmd.config.Materials)
	for i := 0; i < cmd.config.Materials; i++ {
		cost := decimal.New(int64(5+cmd.rand.Intn(500)), -2)
		if i%2 == 0 {
			grade := boardGrades[cmd.rand.Intn(len(boardGrades))]
			mass := decimal.NewFromInt(int64(150 + cmd.rand.Intn(700)))
			rows = append(rows, []string{
				materialCode(i), "Board " + grade, entities.CorrugatedBoard.String(), grade,
				mass.String(), cost.StringFixed(2), "USD", "",
			})
			continue
		}
		category := otherCategories[cmd.rand.Intn(len(otherCategories))]
		rows = append(rows, []string{
			materialCode(i), category.String() + " part", category.String(), "",
			"", cost.StringFixed(2), "USD", "",
		})
	}
	return rows
}

func (cmd *GenerateCommand) bomRows() [][]string {
	var rows [][]string
	for p := 0; p < cmd.config.Products; p++ {
		used := make(map[int]struct{})
		lines := 1 + cmd.rand.Intn(cmd.config.MaxLines)
		for l := 0; l < lines && len(used) < cmd.config.Materials; l++ {
			m := cmd.rand.Intn(cmd.config.Materials)
			if _, dup := used[m]; dup {
				continue
			}
			used[m] = struct{}{}

			unit, quantity := entities.Count, decimal.NewFromInt(int64(1+cmd.rand.Intn(6)))
			if m%2 == 0 {
				unit, quantity = entities.SquareMeter, decimal.New(int64(10+cmd.rand.Intn(300)), -2)
			}
			rows = append(rows, []string{productCode(p), materialCode(m), quantity.String(), unit.String(), ""})
		}
	}
	return rows
}

// saleRows puts about a fifth of the buyers on sub-accounts
func (cmd *GenerateCommand) saleRows() [][]string {
	start := entities.NewMonth(2024, time.January)
	rows := make([][]string, 0, cmd.config.Sales)
	for i := 0; i < cmd.config.Sales; i++ {
		buyer := cmd.rand.Intn(cmd.config.Buyers)
		sub := ""
		if buyer%5 == 0 {
			sub = fmt.Sprintf("BUYER-%04d-%d", buyer, cmd.rand.Intn(3))
		}
		quantity := decimal.NewFromInt(int64(1 + cmd.rand.Intn(200)))
		price := decimal.New(int64(100+cmd.rand.Intn(4000)), -2)
		rows = append(rows, []string{
			fmt.Sprintf("BUYER-%04d", buyer),
			sub,
			fmt.Sprintf("REP-%d", buyer%7),
			start.AddMonths(cmd.rand.Intn(cmd.config.Months)).String(),
			productCode(cmd.rand.Intn(cmd.config.Products)),
			quantity.String(),
			price.StringFixed(2),
			"USD",
			"",
		})
	}
	return rows
}

func (cmd *GenerateCommand) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(cmd.config.OutputDir, name)
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return errors.Wrapf(err, "failed to write %s header", name)
	}
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}

	cmd.logger.WithFields(log.Fields{"file": path, "rows": len(rows)}).Debug("scenario file written")
	return nil
}

func materialsHeader() []string {
	return []string{"code", "name", "category", "grade", "per_area_mass", "unit_cost", "currency", "effective_month"}
}

func salesHeader() []string {
	return []string{"buyer", "sub_account", "rep", "period", "product_code", "quantity", "unit_price", "currency", "sale_amount"}
}
