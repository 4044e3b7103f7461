package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/log"
)

var (
	materialsHeader = []string{"code", "name", "category", "grade", "per_area_mass", "unit_cost", "currency", "effective_month"}
	bomHeader       = []string{"product_code", "material_code", "quantity", "unit", "note"}
	salesHeader     = []string{"buyer", "sub_account", "rep", "period", "product_code", "quantity", "unit_price", "currency", "sale_amount"}
)

// Loader reads catalog, BOM and sales data from CSV files. Malformed numeric
// cells are logged and treated as absent; structural problems are errors.
type Loader struct {
	logger log.Logger
}

// NewLoader creates a new CSV loader
func NewLoader(logger log.Logger) *Loader {
	return &Loader{logger: log.OrDefault(logger)}
}

// LoadMaterials loads raw materials from a CSV file
func (l *Loader) LoadMaterials(filename string) ([]*entities.RawMaterial, error) {
	rows, err := l.readFile(filename, "materials", materialsHeader)
	if err != nil {
		return nil, err
	}

	materials := make([]*entities.RawMaterial, 0, len(rows))
	for i, record := range rows {
		logger := l.logger.WithFields(log.Fields{"file": filename, "row": i + 2})

		code := entities.MaterialCode(strings.TrimSpace(record[0]))
		if code == "" {
			logger.Warn("material row without code skipped")
			continue
		}
		logger = logger.WithField("material_code", code)

		category, err := entities.ParseCategory(record[2])
		if err != nil {
			logger.WithError(err).Warn("unknown category, using Other")
		}

		material := &entities.RawMaterial{
			Code:        code,
			Name:        strings.TrimSpace(record[1]),
			Category:    category,
			Grade:       strings.TrimSpace(record[3]),
			PerAreaMass: l.parseNullDecimal(logger, "per_area_mass", record[4]),
			UnitCost:    l.parseNullDecimal(logger, "unit_cost", record[5]),
			Currency:    strings.ToUpper(strings.TrimSpace(record[6])),
		}
		if period := strings.TrimSpace(record[7]); period != "" {
			month, err := entities.ParseMonth(period)
			if err != nil {
				logger.WithError(err).Warn("invalid effective_month ignored")
			}
			material.EffectiveMonth = month
		}

		materials = append(materials, material)
	}

	return materials, nil
}

// LoadBOM loads BOM lines from a CSV file. Rows with an invalid quantity are skipped.
func (l *Loader) LoadBOM(filename string) ([]*entities.BOMLine, error) {
	rows, err := l.readFile(filename, "BOM", bomHeader)
	if err != nil {
		return nil, err
	}

	lines := make([]*entities.BOMLine, 0, len(rows))
	for i, record := range rows {
		logger := l.logger.WithFields(log.Fields{
			"file":          filename,
			"row":           i + 2,
			"product_code":  strings.TrimSpace(record[0]),
			"material_code": strings.TrimSpace(record[1]),
		})

		quantity, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			logger.WithField("quantity", record[2]).Warn("invalid quantity, BOM row skipped")
			continue
		}

		unit, err := entities.ParseUnit(record[3])
		if err != nil {
			logger.WithError(err).Warn("unknown unit, using Count")
		}

		line, err := entities.NewBOMLine(
			entities.ProductCode(strings.TrimSpace(record[0])),
			entities.MaterialCode(strings.TrimSpace(record[1])),
			quantity,
			unit,
			strings.TrimSpace(record[4]),
		)
		if err != nil {
			logger.WithError(err).Warn("invalid BOM row skipped")
			continue
		}

		lines = append(lines, line)
	}

	return lines, nil
}

// LoadSales loads sale records from a CSV file. Malformed quantities and
// prices read as zero; a malformed sale amount is treated as absent.
func (l *Loader) LoadSales(filename string) ([]entities.SaleRecord, error) {
	rows, err := l.readFile(filename, "sales", salesHeader)
	if err != nil {
		return nil, err
	}

	records := make([]entities.SaleRecord, 0, len(rows))
	for i, record := range rows {
		logger := l.logger.WithFields(log.Fields{
			"file":   filename,
			"row":    i + 2,
			"buyer":  strings.TrimSpace(record[0]),
			"period": strings.TrimSpace(record[3]),
		})

		records = append(records, entities.SaleRecord{
			Buyer:       entities.AccountID(strings.TrimSpace(record[0])),
			SubAccount:  strings.TrimSpace(record[1]),
			Rep:         strings.TrimSpace(record[2]),
			Period:      strings.TrimSpace(record[3]),
			ProductCode: entities.ProductCode(strings.TrimSpace(record[4])),
			Quantity:    l.parseDecimal(logger, "quantity", record[5]),
			UnitPrice:   l.parseDecimal(logger, "unit_price", record[6]),
			Currency:    strings.ToUpper(strings.TrimSpace(record[7])),
			Amount:      l.parseNullDecimal(logger, "sale_amount", record[8]),
		})
	}

	return records, nil
}

func (l *Loader) readFile(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s file %s", kind, filename)
	}
	defer file.Close()

	return readRecords(file, kind, expectedHeader)
}

func readRecords(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s CSV", kind)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(actual[i], "\ufeff")))
		if name != col {
			return false
		}
	}

	return true
}

func (l *Loader) parseNullDecimal(logger log.Logger, field, value string) decimal.NullDecimal {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		logger.WithField(field, value).Warnf("invalid %s treated as missing", field)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (l *Loader) parseDecimal(logger log.Logger, field, value string) decimal.Decimal {
	d := l.parseNullDecimal(logger, field, value)
	if !d.Valid {
		if strings.TrimSpace(value) == "" {
			logger.Warnf("missing %s read as zero", field)
		}
		return decimal.Zero
	}
	return d.Decimal
}
