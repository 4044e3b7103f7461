package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat(FormatText))
	assert.NoError(t, ValidateFormat(FormatJSON))
	assert.Error(t, ValidateFormat("csv"))
}

func TestProducts_Text(t *testing.T) {
	var buf bytes.Buffer
	metrics := []entities.ProductMetrics{{
		ProductCode: "P1",
		WeightKg:    decimal.RequireFromString("0.9"),
		Cost:        decimal.RequireFromString("7.4"),
		Currency:    "USD",
		Boards:      []entities.BoardUsage{{MaterialCode: "RM-B"}},
	}}

	require.NoError(t, Products(metrics, Config{Format: FormatText, Writer: &buf}))

	out := buf.String()
	assert.Contains(t, out, "Product Metrics")
	assert.Contains(t, out, "0.900")
	assert.Contains(t, out, "7.40")
}

func TestProducts_JSON(t *testing.T) {
	var buf bytes.Buffer
	metrics := []entities.ProductMetrics{{
		ProductCode: "P1",
		WeightKg:    decimal.RequireFromString("0.9"),
		Cost:        decimal.RequireFromString("7.4"),
		Boards: []entities.BoardUsage{{
			MaterialCode: "RM-B",
			WallType:     entities.DoubleWall,
			AreaM2:       decimal.NewFromInt(2),
			WeightKg:     decimal.RequireFromString("0.9"),
		}},
	}}

	require.NoError(t, Products(metrics, Config{Format: FormatJSON, Writer: &buf}))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "P1", rows[0]["product_code"])
	assert.Equal(t, "7.4", rows[0]["cost"])
	boards := rows[0]["boards"].([]interface{})
	assert.Equal(t, "DoubleWall", boards[0].(map[string]interface{})["wall_type"])
}

func TestGroups_OrderAndFallback(t *testing.T) {
	other := dto.NewGroupSnapshot(dto.GroupOther, "USD")
	other.TotalSales = decimal.RequireFromString("88")
	other.FallbackProducts = []entities.ProductCode{"P3"}
	groupA := dto.NewGroupSnapshot(dto.GroupA, "USD")
	groupA.TotalSales = decimal.RequireFromString("240")
	groupA.TotalCost = decimal.RequireFromString("84")

	snapshots := map[dto.GroupLabel]*dto.GroupSnapshot{dto.GroupOther: other, dto.GroupA: groupA}

	var buf bytes.Buffer
	require.NoError(t, Groups(snapshots, Config{Format: FormatText, Writer: &buf}))
	out := buf.String()
	assert.Less(t, strings.Index(out, "GroupA"), strings.Index(out, "Other"))
	assert.Contains(t, out, "65.0%")
	assert.Contains(t, out, "Other estimated cost for: P3")

	buf.Reset()
	require.NoError(t, Groups(snapshots, Config{Format: FormatJSON, Writer: &buf}))
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "GroupA", rows[0]["label"])
	assert.Equal(t, "0.6500", rows[0]["margin"])
	assert.Equal(t, "240.00", rows[0]["total_sales"])
}

func TestCohorts_EmptyResult(t *testing.T) {
	result := dto.NewCohortResult()
	result.Empty = true
	result.Message = dto.NoDataMessage

	var buf bytes.Buffer
	require.NoError(t, Cohorts(result, Config{Format: FormatText, Writer: &buf}))
	assert.Equal(t, "Cohort analysis: no data\n", buf.String())
}

func TestCohorts_MissingCellsRenderAsBlank(t *testing.T) {
	jan := entities.NewMonth(2024, time.January)
	result := dto.NewCohortResult()
	result.Sales.Set(jan, 0, decimal.NewFromInt(200))
	result.Sales.Set(jan, 2, decimal.NewFromInt(40))
	result.Sales.SetAxes([]entities.Month{jan}, 2)

	var buf bytes.Buffer
	require.NoError(t, Cohorts(result, Config{Format: FormatText, Writer: &buf}))
	assert.Contains(t, buf.String(), "200.00")
	assert.Contains(t, buf.String(), " -")

	buf.Reset()
	require.NoError(t, Cohorts(result, Config{Format: FormatJSON, Writer: &buf}))
	var decoded struct {
		Tables map[string]map[string]map[string]*string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	row := decoded.Tables["sales"]["2024-01"]
	require.NotNil(t, row["0"])
	assert.Equal(t, "200", *row["0"])
	assert.Nil(t, row["1"])
}
