package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// BOMValidator checks a BOM against the raw material catalog
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of BOM validation. None of the
// findings stop a computation; the aggregator skips or zeroes what they name.
type ValidationResult struct {
	DuplicateLines     []entities.BOMKey
	OrphanedMaterials  []entities.BOMKey
	BoardsWithoutMass  []entities.MaterialCode
	MaterialsNoCost    []entities.MaterialCode
	DuplicateMaterials []entities.MaterialCode
	Warnings           []string
}

// Clean reports whether validation found nothing
func (r *ValidationResult) Clean() bool {
	return len(r.Warnings) == 0
}

// ValidateBOM validates BOM lines against the catalog
func (v *BOMValidator) ValidateBOM(lines []*entities.BOMLine, materials []*entities.RawMaterial) *ValidationResult {
	result := &ValidationResult{}

	catalog := make(map[entities.MaterialCode]*entities.RawMaterial, len(materials))
	for _, m := range materials {
		catalog[m.Code] = m
	}

	result.DuplicateLines = v.detectDuplicateLines(lines)

	used := make(map[entities.MaterialCode]struct{})
	for _, line := range lines {
		material, ok := catalog[line.MaterialCode]
		if !ok {
			result.OrphanedMaterials = append(result.OrphanedMaterials, line.Key())
			continue
		}
		used[material.Code] = struct{}{}
	}

	for code := range used {
		material := catalog[code]
		if material.Category.CountsTowardWeight() && !material.PerAreaMass.Valid {
			result.BoardsWithoutMass = append(result.BoardsWithoutMass, code)
		}
		if !material.UnitCost.Valid {
			result.MaterialsNoCost = append(result.MaterialsNoCost, code)
		}
	}
	sortCodes(result.BoardsWithoutMass)
	sortCodes(result.MaterialsNoCost)

	if len(result.DuplicateLines) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Found %d duplicate BOM lines, later lines replace earlier ones", len(result.DuplicateLines)))
	}
	for _, key := range result.OrphanedMaterials {
		result.Warnings = append(result.Warnings, fmt.Sprintf("BOM line %s references a material missing from the catalog", key))
	}
	if len(result.BoardsWithoutMass) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Board materials without per area mass: %v", result.BoardsWithoutMass))
	}
	if len(result.MaterialsNoCost) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Materials without unit cost: %v", result.MaterialsNoCost))
	}

	return result
}

// detectDuplicateLines finds keys that occur more than once, in first-seen order
func (v *BOMValidator) detectDuplicateLines(lines []*entities.BOMLine) []entities.BOMKey {
	seen := make(map[entities.BOMKey]int, len(lines))
	duplicates := make([]entities.BOMKey, 0)

	for _, line := range lines {
		key := line.Key()
		seen[key]++
		if seen[key] == 2 {
			duplicates = append(duplicates, key)
		}
	}

	return duplicates
}

// ValidateMaterialCodeUniqueness validates that material codes are unique across a catalog import
func (v *BOMValidator) ValidateMaterialCodeUniqueness(materials []*entities.RawMaterial) *ValidationResult {
	result := &ValidationResult{}

	seen := make(map[entities.MaterialCode]bool)
	for _, m := range materials {
		if seen[m.Code] {
			result.DuplicateMaterials = append(result.DuplicateMaterials, m.Code)
		} else {
			seen[m.Code] = true
		}
	}

	if len(result.DuplicateMaterials) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Duplicate material codes found: %v", result.DuplicateMaterials))
	}

	return result
}

func sortCodes(codes []entities.MaterialCode) {
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
}
