package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds configuration for output generation
type Config struct {
	Format string
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// ValidateFormat checks that format names a supported output format
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (expected: text or json)", format)
	}
}

// Products renders per-unit product metrics
func Products(metrics []entities.ProductMetrics, config Config) error {
	switch config.Format {
	case FormatText:
		return productsText(metrics, config.writer())
	case FormatJSON:
		rows := make([]productJSON, 0, len(metrics))
		for _, m := range metrics {
			rows = append(rows, newProductJSON(m))
		}
		return writeJSON(rows, config.writer())
	default:
		return ValidateFormat(config.Format)
	}
}

// Groups renders customer group snapshots in GroupA, Other order
func Groups(snapshots map[dto.GroupLabel]*dto.GroupSnapshot, config Config) error {
	ordered := orderedGroups(snapshots)

	switch config.Format {
	case FormatText:
		return groupsText(ordered, config.writer())
	case FormatJSON:
		rows := make([]groupJSON, 0, len(ordered))
		for _, s := range ordered {
			rows = append(rows, newGroupJSON(s))
		}
		return writeJSON(rows, config.writer())
	default:
		return ValidateFormat(config.Format)
	}
}

// Cohorts renders the cohort tables of an analysis
func Cohorts(result *dto.CohortResult, config Config) error {
	switch config.Format {
	case FormatText:
		return cohortsText(result, config.writer())
	case FormatJSON:
		return writeJSON(newCohortJSON(result), config.writer())
	default:
		return ValidateFormat(config.Format)
	}
}

func productsText(metrics []entities.ProductMetrics, w io.Writer) error {
	fmt.Fprintf(w, "Product Metrics\n")
	fmt.Fprintf(w, "===============\n\n")
	fmt.Fprintf(w, "%-15s %12s %12s %-8s %8s\n", "Product", "Weight (kg)", "Cost", "Currency", "Boards")
	fmt.Fprintf(w, "%-15s %12s %12s %-8s %8s\n",
		"---------------", "------------", "------------", "--------", "--------")

	for _, m := range metrics {
		fmt.Fprintf(w, "%-15s %12s %12s %-8s %8d\n",
			m.ProductCode,
			m.WeightKg.StringFixed(3),
			m.Cost.StringFixed(2),
			m.Currency,
			len(m.Boards))
	}
	_, err := fmt.Fprintln(w)
	return err
}

func groupsText(snapshots []*dto.GroupSnapshot, w io.Writer) error {
	fmt.Fprintf(w, "Customer Groups\n")
	fmt.Fprintf(w, "===============\n\n")
	fmt.Fprintf(w, "%-8s %9s %8s %14s %14s %8s %12s %10s\n",
		"Group", "Accounts", "Records", "Sales", "Cost", "Margin", "Weight (kg)", "Area (m2)")
	fmt.Fprintf(w, "%-8s %9s %8s %14s %14s %8s %12s %10s\n",
		"--------", "---------", "--------", "--------------", "--------------", "--------", "------------", "----------")

	for _, s := range snapshots {
		fmt.Fprintf(w, "%-8s %9d %8d %14s %14s %8s %12s %10s\n",
			s.Label,
			s.AccountCount,
			s.RecordCount,
			s.TotalSales.StringFixed(2),
			s.TotalCost.StringFixed(2),
			s.Margin().Mul(decimal.NewFromInt(100)).StringFixed(1)+"%",
			s.TotalWeightKg.StringFixed(3),
			s.TotalAreaM2.StringFixed(2))
	}
	fmt.Fprintln(w)

	for _, s := range snapshots {
		if len(s.FallbackProducts) > 0 {
			fmt.Fprintf(w, "%s estimated cost for: %s\n", s.Label, joinCodes(s.FallbackProducts))
		}
		if len(s.WallBreakdown) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s board by wall type:\n", s.Label)
		for _, wall := range sortedWalls(s.WallBreakdown) {
			usage := s.WallBreakdown[wall]
			fmt.Fprintf(w, "  %-12s %10s m2 %12s kg\n", wall, usage.AreaM2.StringFixed(2), usage.WeightKg.StringFixed(3))
		}
	}
	return nil
}

func cohortsText(result *dto.CohortResult, w io.Writer) error {
	if result.Empty {
		_, err := fmt.Fprintf(w, "Cohort analysis: %s\n", result.Message)
		return err
	}

	fmt.Fprintf(w, "Cohort Analysis\n")
	fmt.Fprintf(w, "===============\n\n")
	if result.Excluded > 0 {
		fmt.Fprintf(w, "Excluded records: %d\n\n", result.Excluded)
	}

	writeTable(w, "Customers", result.Accounts, 0)
	writeTable(w, "Sales", result.Sales, 2)
	writeTable(w, "Average Order Value", result.AOV, 2)
	writeTable(w, "Retention", result.Retention, 4)
	return nil
}

func writeTable(w io.Writer, title string, table dto.CohortTable, places int32) {
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%-8s", "Cohort")
	for _, offset := range table.Offsets {
		fmt.Fprintf(w, " %10s", fmt.Sprintf("M+%d", offset))
	}
	fmt.Fprintln(w)

	for _, cohort := range table.Cohorts {
		fmt.Fprintf(w, "%-8s", cohort)
		for _, offset := range table.Offsets {
			cell := table.Value(cohort, offset)
			value := "-"
			if cell.Valid {
				value = cell.Decimal.StringFixed(places)
			}
			fmt.Fprintf(w, " %10s", value)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

type productJSON struct {
	ProductCode string      `json:"product_code"`
	WeightKg    string      `json:"weight_kg"`
	Cost        string      `json:"cost"`
	Currency    string      `json:"currency,omitempty"`
	Boards      []boardJSON `json:"boards,omitempty"`
}

type boardJSON struct {
	MaterialCode string `json:"material_code"`
	WallType     string `json:"wall_type"`
	AreaM2       string `json:"area_m2"`
	WeightKg     string `json:"weight_kg"`
}

func newProductJSON(m entities.ProductMetrics) productJSON {
	row := productJSON{
		ProductCode: string(m.ProductCode),
		WeightKg:    m.WeightKg.String(),
		Cost:        m.Cost.String(),
		Currency:    m.Currency,
	}
	for _, b := range m.Boards {
		row.Boards = append(row.Boards, boardJSON{
			MaterialCode: string(b.MaterialCode),
			WallType:     b.WallType.String(),
			AreaM2:       b.AreaM2.String(),
			WeightKg:     b.WeightKg.String(),
		})
	}
	return row
}

type groupJSON struct {
	Label            string                  `json:"label"`
	AccountCount     int                     `json:"account_count"`
	RecordCount      int                     `json:"record_count"`
	TotalSales       string                  `json:"total_sales"`
	TotalCost        string                  `json:"total_cost"`
	Margin           string                  `json:"margin"`
	TotalWeightKg    string                  `json:"total_weight_kg"`
	TotalAreaM2      string                  `json:"total_area_m2"`
	Currency         string                  `json:"currency,omitempty"`
	FallbackProducts []string                `json:"fallback_products,omitempty"`
	WallBreakdown    map[string]wallJSONCell `json:"wall_breakdown,omitempty"`
}

type wallJSONCell struct {
	AreaM2   string `json:"area_m2"`
	WeightKg string `json:"weight_kg"`
}

func newGroupJSON(s *dto.GroupSnapshot) groupJSON {
	row := groupJSON{
		Label:         string(s.Label),
		AccountCount:  s.AccountCount,
		RecordCount:   s.RecordCount,
		TotalSales:    s.TotalSales.StringFixed(2),
		TotalCost:     s.TotalCost.StringFixed(2),
		Margin:        s.Margin().StringFixed(4),
		TotalWeightKg: s.TotalWeightKg.String(),
		TotalAreaM2:   s.TotalAreaM2.String(),
		Currency:      s.Currency,
	}
	for _, code := range s.FallbackProducts {
		row.FallbackProducts = append(row.FallbackProducts, string(code))
	}
	if len(s.WallBreakdown) > 0 {
		row.WallBreakdown = make(map[string]wallJSONCell, len(s.WallBreakdown))
		for wall, usage := range s.WallBreakdown {
			row.WallBreakdown[wall.String()] = wallJSONCell{AreaM2: usage.AreaM2.String(), WeightKg: usage.WeightKg.String()}
		}
	}
	return row
}

type cohortJSON struct {
	Empty    bool                 `json:"empty"`
	Message  string               `json:"message,omitempty"`
	Excluded int                  `json:"excluded"`
	Buckets  []bucketJSON         `json:"buckets"`
	Tables   map[string]tableJSON `json:"tables,omitempty"`
}

type bucketJSON struct {
	CohortMonth       string `json:"cohort_month"`
	MonthOffset       int    `json:"month_offset"`
	CustomerCount     int    `json:"customer_count"`
	OrderCount        int    `json:"order_count"`
	TotalSales        string `json:"total_sales"`
	AverageOrderValue string `json:"average_order_value"`
}

// tableJSON maps cohort month to offset to value; cells without data are null
type tableJSON map[string]map[string]*string

func newCohortJSON(result *dto.CohortResult) cohortJSON {
	out := cohortJSON{
		Empty:    result.Empty,
		Message:  result.Message,
		Excluded: result.Excluded,
		Buckets:  make([]bucketJSON, 0, len(result.Buckets)),
	}
	for _, b := range result.Buckets {
		out.Buckets = append(out.Buckets, bucketJSON{
			CohortMonth:       b.CohortMonth.String(),
			MonthOffset:       b.MonthOffset,
			CustomerCount:     b.CustomerCount,
			OrderCount:        b.OrderCount,
			TotalSales:        b.TotalSales.String(),
			AverageOrderValue: b.AverageOrderValue.String(),
		})
	}
	if result.Empty {
		return out
	}

	out.Tables = map[string]tableJSON{
		"customers": newTableJSON(result.Accounts),
		"sales":     newTableJSON(result.Sales),
		"aov":       newTableJSON(result.AOV),
		"retention": newTableJSON(result.Retention),
	}
	return out
}

func newTableJSON(table dto.CohortTable) tableJSON {
	out := make(tableJSON, len(table.Cohorts))
	for _, cohort := range table.Cohorts {
		row := make(map[string]*string, len(table.Offsets))
		for _, offset := range table.Offsets {
			var value *string
			if cell := table.Value(cohort, offset); cell.Valid {
				s := cell.Decimal.String()
				value = &s
			}
			row[fmt.Sprintf("%d", offset)] = value
		}
		out[cohort.String()] = row
	}
	return out
}

func writeJSON(v interface{}, w io.Writer) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func orderedGroups(snapshots map[dto.GroupLabel]*dto.GroupSnapshot) []*dto.GroupSnapshot {
	ordered := make([]*dto.GroupSnapshot, 0, len(snapshots))
	for _, label := range []dto.GroupLabel{dto.GroupA, dto.GroupOther} {
		if s, ok := snapshots[label]; ok && s != nil {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

func sortedWalls(breakdown map[entities.WallType]dto.WallUsage) []entities.WallType {
	walls := make([]entities.WallType, 0, len(breakdown))
	for wall := range breakdown {
		walls = append(walls, wall)
	}
	sort.Slice(walls, func(i, j int) bool { return walls[i] < walls[j] })
	return walls
}

func joinCodes(codes []entities.ProductCode) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = string(code)
	}
	return strings.Join(parts, ", ")
}
