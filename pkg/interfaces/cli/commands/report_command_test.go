package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomcost/pkg/config"
	"github.com/vsinha/bomcost/pkg/log"
)

const (
	materialsCSV = `code,name,category,grade,per_area_mass,unit_cost,currency,effective_month
RM-B,Double wall board,CorrugatedBoard,BC,450,1.20,USD,2024-01
RM-SW,Single wall board,CorrugatedBoard,B,300,0.80,USD,
RM-METAL,Steel clip,Metal,,,5.00,USD,
RM-FOAM,Foam insert,Foam,,,0.40,USD,
RM-NOCOST,Triple wall board,CorrugatedBoard,TW,200,,USD,
`
	bomCSV = `product_code,material_code,quantity,unit,note
P1,RM-B,2,m2,
P1,RM-METAL,1,ea,
P2,RM-SW,1.5,m2,
P2,RM-FOAM,2,ea,
P3,RM-GHOST,1,ea,missing from catalog
P3,RM-NOCOST,1,m2,
`
	salesCSV = `buyer,sub_account,rep,period,product_code,quantity,unit_price,currency,sale_amount
Acme,Acme-Sub,Ann,2024-01,P1,10,20.00,USD,
Acme,,Ann,2024-02,P2,5,8.00,USD,
Beta,,Bob,2024-01,P1,2,20.00,USD,
Beta,,Bob,2024-03,P3,4,10.00,USD,
Gamma,,Bob,2024-02,P2,1,8.00,,
`
)

func writeScenario(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"materials.csv": materialsCSV,
		"bom.csv":       bomCSV,
		"sales.csv":     salesCSV,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return Sources{
		MaterialsFile: filepath.Join(dir, "materials.csv"),
		BOMFile:       filepath.Join(dir, "bom.csv"),
		SalesFile:     filepath.Join(dir, "sales.csv"),
	}
}

func testSettings(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("DATABASE_DSN", "")
	settings, err := config.NewConfig()
	require.NoError(t, err)
	return settings
}

func TestProductCommand_AllProducts(t *testing.T) {
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	cfg := Config{Sources: writeScenario(t), Format: "json", Writer: &buf}

	err := NewProductCommand(cfg, testSettings(t), reg, log.Discard()).Execute(context.Background())
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "P1", rows[0]["product_code"])
	assert.Equal(t, "0.9", rows[0]["weight_kg"])
	assert.Equal(t, "7.4", rows[0]["cost"])
	assert.Equal(t, "P3", rows[2]["product_code"])
	assert.Equal(t, "0", rows[2]["cost"])

	misses, err := testutil.GatherAndCount(reg, "bomcost_product_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 1, misses)
}

func TestProductCommand_SelectedProduct(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{Sources: writeScenario(t), Products: []string{" P2 "}, Writer: &buf}

	err := NewProductCommand(cfg, testSettings(t), nil, log.Discard()).Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "P2")
	assert.Contains(t, buf.String(), "2.00")
	assert.NotContains(t, buf.String(), "P1 ")
}

func TestProductCommand_RequiresFilesWithoutDatabase(t *testing.T) {
	cfg := Config{Sources: Sources{MaterialsFile: "materials.csv"}}

	err := NewProductCommand(cfg, testSettings(t), nil, log.Discard()).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--bom is required")
}

func TestProductCommand_RejectsUnknownFormat(t *testing.T) {
	cfg := Config{Sources: writeScenario(t), Format: "xml"}

	err := NewProductCommand(cfg, testSettings(t), nil, log.Discard()).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestGroupsCommand(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{Sources: writeScenario(t), Format: "json", BoardBreakdown: true, Writer: &buf}

	err := NewGroupsCommand(cfg, testSettings(t), nil, log.Discard()).Execute(context.Background())
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, "GroupA", rows[0]["label"])
	assert.Equal(t, "240.00", rows[0]["total_sales"])
	assert.Equal(t, "84.00", rows[0]["total_cost"])

	assert.Equal(t, "Other", rows[1]["label"])
	assert.Equal(t, "88.00", rows[1]["total_sales"])
	assert.Equal(t, "42.80", rows[1]["total_cost"])
	assert.Equal(t, []interface{}{"P3"}, rows[1]["fallback_products"])
	assert.Contains(t, rows[1], "wall_breakdown")
}

func TestCohortCommand(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{Sources: writeScenario(t), Start: "2024-01", End: "2024-02-15", Writer: &buf}

	err := NewCohortCommand(cfg, testSettings(t), nil, log.Discard()).Execute(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Cohort Analysis")
	assert.Contains(t, out, "2024-01")
	assert.NotContains(t, out, "M+2", "March sales are outside the range")
}

func TestCohortCommand_InvalidRange(t *testing.T) {
	cfg := Config{Sources: writeScenario(t), Start: "2024-03", End: "2024-01"}

	err := NewCohortCommand(cfg, testSettings(t), nil, log.Discard()).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before start")
}

func TestParseBound(t *testing.T) {
	bound, err := parseBound("")
	require.NoError(t, err)
	assert.Nil(t, bound)

	bound, err = parseBound("2024-02-15")
	require.NoError(t, err)
	assert.Equal(t, 15, bound.Day())

	bound, err = parseBound("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 1, bound.Day())

	_, err = parseBound("next tuesday")
	assert.Error(t, err)
}

func TestOpenWorkspace_CollectsConsistencyWarnings(t *testing.T) {
	ws, err := OpenWorkspace(context.Background(), testSettings(t), writeScenario(t), nil, log.Discard())
	require.NoError(t, err)
	defer ws.Close()

	assert.False(t, ws.Persistent())
	require.Len(t, ws.Warnings, 2)
	assert.Contains(t, ws.Warnings[0], "P3/RM-GHOST")
	assert.Contains(t, ws.Warnings[1], "RM-NOCOST")
}
