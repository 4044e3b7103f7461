package postgres

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

func TestSelectMaterialQuery(t *testing.T) {
	query, args, err := selectMaterialQuery("RM-B").ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "SELECT code, name, category"), query)
	assert.Contains(t, query, "FROM raw_materials WHERE code = $1")
	assert.Equal(t, []interface{}{"RM-B"}, args)
}

func TestUpsertMaterialsQuery(t *testing.T) {
	month := entities.NewMonth(2024, time.March)

	materials := []*entities.RawMaterial{
		{
			Code:           "RM-B",
			Name:           "Board",
			Category:       entities.CorrugatedBoard,
			Grade:          "BC",
			PerAreaMass:    decimal.NewNullDecimal(decimal.NewFromInt(450)),
			UnitCost:       decimal.NewNullDecimal(decimal.RequireFromString("1.20")),
			Currency:       "USD",
			EffectiveMonth: month,
		},
		{Code: "RM-FOAM", Category: entities.Foam},
	}

	query, args, err := upsertMaterialsQuery(materials).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO raw_materials")
	assert.Contains(t, query, "$16")
	assert.NotContains(t, query, "$17")
	assert.Contains(t, query, "ON CONFLICT (code) DO UPDATE SET")
	require.Len(t, args, 16)
	assert.Equal(t, "CorrugatedBoard", args[2])
	assert.Equal(t, "2024-03", args[7])
	assert.Nil(t, args[15], "absent effective month is stored as NULL")
}

func TestSelectBOMLinesQuery(t *testing.T) {
	t.Run("all lines", func(t *testing.T) {
		query, args, err := selectBOMLinesQuery(nil).ToSql()
		require.NoError(t, err)
		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "ORDER BY product_code ASC, position ASC")
		assert.Empty(t, args)
	})

	t.Run("one product", func(t *testing.T) {
		product := entities.ProductCode("P1")
		query, args, err := selectBOMLinesQuery(&product).ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "WHERE product_code = $1")
		assert.Equal(t, []interface{}{"P1"}, args)
	})
}

func TestDeleteBOMLineQuery(t *testing.T) {
	query, args, err := deleteBOMLineQuery(entities.BOMKey{ProductCode: "P1", MaterialCode: "RM-B"}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "DELETE FROM bom_lines WHERE")
	assert.Contains(t, query, "material_code = $1")
	assert.Contains(t, query, "product_code = $2")
	assert.Equal(t, []interface{}{"RM-B", "P1"}, args)
}

func TestUpsertBOMLinesQuery(t *testing.T) {
	line, err := entities.NewBOMLine("P1", "RM-B", decimal.NewFromInt(2), entities.SquareMeter, "")
	require.NoError(t, err)

	query, args, err := upsertBOMLinesQuery([]*entities.BOMLine{line}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "ON CONFLICT (product_code, material_code) DO UPDATE SET")
	require.Len(t, args, 5)
	assert.Equal(t, "SquareMeter", args[3])
}

func TestInsertSalesQuery(t *testing.T) {
	records := []entities.SaleRecord{
		{Buyer: "Acme", Period: "2024-01", ProductCode: "P1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(20)},
	}

	query, args, err := insertSalesQuery(records).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO sale_records")
	assert.NotContains(t, query, "ON CONFLICT")
	require.Len(t, args, len(saleColumns))
	assert.Equal(t, "Acme", args[0])
}

func TestUpsertBOMLineBatches_RepeatedKeyKeepsLastLine(t *testing.T) {
	lines := []*entities.BOMLine{
		mustLine(t, "P1", "RM-B", 2),
		mustLine(t, "P2", "RM-B", 1),
		mustLine(t, "P1", "RM-B", 5),
	}

	queries := upsertBOMLineBatches(lines)
	require.Len(t, queries, 1)

	query, args, err := queries[0].ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "$10")
	assert.NotContains(t, query, "$11", "one VALUES tuple per key")
	require.Len(t, args, 2*len(bomColumns))
	assert.Equal(t, "P1", args[0])
	assert.True(t, decimal.NewFromInt(5).Equal(args[2].(decimal.Decimal)), "later line wins, got %v", args[2])
	assert.Equal(t, "P2", args[5])
}

func TestUpsertBOMLineBatches_StaysUnderParameterLimit(t *testing.T) {
	const postgresMaxParams = 65535

	lines := make([]*entities.BOMLine, 0, 14000)
	for i := 0; i < 14000; i++ {
		lines = append(lines, mustLine(t, entities.ProductCode(fmt.Sprintf("P%d", i)), "RM-B", 1))
	}

	queries := upsertBOMLineBatches(lines)
	require.Len(t, queries, 14)

	total := 0
	for _, q := range queries {
		_, args, err := q.ToSql()
		require.NoError(t, err)
		assert.LessOrEqual(t, len(args), postgresMaxParams)
		total += len(args)
	}
	assert.Equal(t, 14000*len(bomColumns), total)
}

func TestUpsertMaterialBatches_RepeatedCodeKeepsLastRow(t *testing.T) {
	materials := []*entities.RawMaterial{
		{Code: "RM-B", Name: "Old board", Category: entities.CorrugatedBoard},
		{Code: "RM-FOAM", Name: "Foam", Category: entities.Foam},
		{Code: "RM-B", Name: "New board", Category: entities.CorrugatedBoard},
	}

	queries := upsertMaterialBatches(materials)
	require.Len(t, queries, 1)

	_, args, err := queries[0].ToSql()
	require.NoError(t, err)
	require.Len(t, args, 2*len(materialColumns))
	assert.Equal(t, "RM-B", args[0])
	assert.Equal(t, "New board", args[1])
	assert.Equal(t, "RM-FOAM", args[len(materialColumns)])
}

func mustLine(t *testing.T, product entities.ProductCode, material entities.MaterialCode, quantity int64) *entities.BOMLine {
	t.Helper()
	line, err := entities.NewBOMLine(product, material, decimal.NewFromInt(quantity), entities.Count, "")
	require.NoError(t, err)
	return line
}
