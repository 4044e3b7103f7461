package memory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

type countingInvalidator struct {
	calls uint64
}

func (c *countingInvalidator) InvalidateAll() uint64 {
	c.calls++
	return c.calls
}

func newLine(t *testing.T, product entities.ProductCode, material entities.MaterialCode, qty int64) *entities.BOMLine {
	t.Helper()
	line, err := entities.NewBOMLine(product, material, decimal.NewFromInt(qty), entities.Count, "")
	if err != nil {
		t.Fatalf("Failed to create BOM line: %v", err)
	}
	return line
}

func TestBOMRepository_SaveAndGetBOMLine(t *testing.T) {
	invalidator := &countingInvalidator{}
	repo := NewBOMRepository(10, invalidator)

	if err := repo.SaveBOMLine(newLine(t, "P1", "RM-B", 2)); err != nil {
		t.Fatalf("Failed to save BOM line: %v", err)
	}

	lines, err := repo.GetBOMLines("P1")
	if err != nil {
		t.Fatalf("Failed to get BOM lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Expected 1 BOM line, got %d", len(lines))
	}
	if lines[0].MaterialCode != "RM-B" {
		t.Errorf("Expected material RM-B, got %s", lines[0].MaterialCode)
	}
	if invalidator.calls != 1 {
		t.Errorf("Expected 1 invalidation, got %d", invalidator.calls)
	}

	empty, err := repo.GetBOMLines("UNKNOWN")
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected no lines and no error for unknown product, got %d lines, err %v", len(empty), err)
	}
}

func TestBOMRepository_SaveUpsertsByKey(t *testing.T) {
	repo := NewBOMRepository(10, nil)

	_ = repo.SaveBOMLine(newLine(t, "P1", "RM-B", 2))
	_ = repo.SaveBOMLine(newLine(t, "P1", "RM-B", 5))

	if repo.Len() != 1 {
		t.Fatalf("Expected 1 line after upsert, got %d", repo.Len())
	}
	lines, _ := repo.GetBOMLines("P1")
	if !lines[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected quantity 5 after upsert, got %s", lines[0].Quantity)
	}
}

func TestBOMRepository_MultipleMaterialsKeepOrder(t *testing.T) {
	repo := NewBOMRepository(20, nil)

	for i := 1; i <= 3; i++ {
		if err := repo.SaveBOMLine(newLine(t, "ASSEMBLY", entities.MaterialCode(fmt.Sprintf("RM-%d", i)), int64(i))); err != nil {
			t.Fatalf("Failed to save BOM line: %v", err)
		}
	}

	lines, err := repo.GetBOMLines("ASSEMBLY")
	if err != nil {
		t.Fatalf("Failed to get BOM lines: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("Expected 3 BOM lines, got %d", len(lines))
	}
	for i, line := range lines {
		expected := entities.MaterialCode(fmt.Sprintf("RM-%d", i+1))
		if line.MaterialCode != expected {
			t.Errorf("Expected material %s at index %d, got %s", expected, i, line.MaterialCode)
		}
	}

	all, _ := repo.GetAllBOMLines()
	if len(all) != 3 {
		t.Errorf("Expected 3 lines overall, got %d", len(all))
	}
}

func TestBOMRepository_UpdateWithKeyChange(t *testing.T) {
	invalidator := &countingInvalidator{}
	repo := NewBOMRepository(10, invalidator)
	_ = repo.SaveBOMLine(newLine(t, "P1", "RM-B", 2))

	moved := newLine(t, "P2", "RM-B", 3)
	if err := repo.UpdateBOMLine(entities.BOMKey{ProductCode: "P1", MaterialCode: "RM-B"}, moved); err != nil {
		t.Fatalf("Failed to update BOM line: %v", err)
	}

	if lines, _ := repo.GetBOMLines("P1"); len(lines) != 0 {
		t.Errorf("Expected P1 to have no lines after move, got %d", len(lines))
	}
	if lines, _ := repo.GetBOMLines("P2"); len(lines) != 1 {
		t.Errorf("Expected P2 to have 1 line after move, got %d", len(lines))
	}
	if invalidator.calls != 2 {
		t.Errorf("Expected 2 invalidations, got %d", invalidator.calls)
	}

	err := repo.UpdateBOMLine(entities.BOMKey{ProductCode: "P9", MaterialCode: "RM-B"}, moved)
	if !errors.Is(err, entities.ErrBOMLineNotFound) {
		t.Errorf("Expected ErrBOMLineNotFound, got %v", err)
	}

	_ = repo.SaveBOMLine(newLine(t, "P1", "RM-C", 1))
	err = repo.UpdateBOMLine(entities.BOMKey{ProductCode: "P1", MaterialCode: "RM-C"}, newLine(t, "P2", "RM-B", 1))
	if !errors.Is(err, entities.ErrDuplicateBOMLine) {
		t.Errorf("Expected ErrDuplicateBOMLine, got %v", err)
	}
}

func TestBOMRepository_Delete(t *testing.T) {
	invalidator := &countingInvalidator{}
	repo := NewBOMRepository(10, invalidator)
	_ = repo.SaveBOMLine(newLine(t, "P1", "RM-B", 2))
	_ = repo.SaveBOMLine(newLine(t, "P1", "RM-METAL", 1))

	if err := repo.DeleteBOMLine(entities.BOMKey{ProductCode: "P1", MaterialCode: "RM-B"}); err != nil {
		t.Fatalf("Failed to delete BOM line: %v", err)
	}
	lines, _ := repo.GetBOMLines("P1")
	if len(lines) != 1 || lines[0].MaterialCode != "RM-METAL" {
		t.Errorf("Expected only RM-METAL to remain, got %v", lines)
	}
	if invalidator.calls != 3 {
		t.Errorf("Expected 3 invalidations, got %d", invalidator.calls)
	}

	err := repo.DeleteBOMLine(entities.BOMKey{ProductCode: "P1", MaterialCode: "RM-B"})
	if !errors.Is(err, entities.ErrBOMLineNotFound) {
		t.Errorf("Expected ErrBOMLineNotFound for second delete, got %v", err)
	}
}

func TestBOMRepository_RejectsInvalidLine(t *testing.T) {
	invalidator := &countingInvalidator{}
	repo := NewBOMRepository(10, invalidator)

	err := repo.SaveBOMLine(&entities.BOMLine{ProductCode: "P1", MaterialCode: "RM-B", Quantity: decimal.Zero})
	if !errors.Is(err, entities.ErrNonPositiveQuantity) {
		t.Errorf("Expected ErrNonPositiveQuantity, got %v", err)
	}
	if invalidator.calls != 0 {
		t.Errorf("Expected no invalidation for rejected line, got %d", invalidator.calls)
	}
}
