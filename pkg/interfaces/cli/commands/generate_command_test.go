package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomcost/pkg/log"
)

func TestGenerateCommand_WritesLoadableScenario(t *testing.T) {
	dir := t.TempDir()
	cfg := GenerateConfig{
		Materials: 20,
		Products:  8,
		MaxLines:  4,
		Buyers:    10,
		Sales:     50,
		Months:    6,
		OutputDir: dir,
		Seed:      42,
	}

	require.NoError(t, NewGenerateCommand(cfg, log.Discard()).Execute(context.Background()))

	loader := csv.NewLoader(log.Discard())
	materials, err := loader.LoadMaterials(filepath.Join(dir, "materials.csv"))
	require.NoError(t, err)
	assert.Len(t, materials, 20)

	lines, err := loader.LoadBOM(filepath.Join(dir, "bom.csv"))
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, line.Quantity.IsPositive(), "line %s has quantity %s", line.Key(), line.Quantity)
	}

	records, err := loader.LoadSales(filepath.Join(dir, "sales.csv"))
	require.NoError(t, err)
	assert.Len(t, records, 50)
}

func TestGenerateCommand_SameSeedSameScenario(t *testing.T) {
	generate := func() string {
		dir := t.TempDir()
		cfg := GenerateConfig{Materials: 6, Products: 3, MaxLines: 3, Buyers: 4, Sales: 10, Months: 3, OutputDir: dir, Seed: 7}
		require.NoError(t, NewGenerateCommand(cfg, log.Discard()).Execute(context.Background()))

		var buf bytes.Buffer
		report := Config{
			Sources: Sources{
				MaterialsFile: filepath.Join(dir, "materials.csv"),
				BOMFile:       filepath.Join(dir, "bom.csv"),
			},
			Format: "json",
			Writer: &buf,
		}
		require.NoError(t, NewProductCommand(report, testSettings(t), nil, log.Discard()).Execute(context.Background()))
		return buf.String()
	}

	first := generate()
	assert.True(t, json.Valid([]byte(first)))
	assert.Equal(t, first, generate())
}

func TestGenerateCommand_Validation(t *testing.T) {
	cfg := GenerateConfig{Materials: 0, Products: 1, MaxLines: 1, Buyers: 1, Months: 1, OutputDir: t.TempDir()}

	err := NewGenerateCommand(cfg, log.Discard()).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "materials must be positive")
}
