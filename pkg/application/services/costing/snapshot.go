package costing

import (
	"errors"
	"fmt"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
)

// Snapshot is a read-only capture of one product's BOM lines and every
// catalog entry they reference, taken once per computation
type Snapshot struct {
	ProductCode entities.ProductCode
	Lines       []entities.BOMLine
	Materials   map[entities.MaterialCode]entities.RawMaterial
}

// TakeSnapshot reads the product's BOM lines and their materials. Materials
// missing from the catalog are left out of the snapshot.
func TakeSnapshot(
	catalog repositories.CatalogRepository,
	bom repositories.BOMRepository,
	productCode entities.ProductCode,
) (*Snapshot, error) {
	lines, err := bom.GetBOMLines(productCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get BOM lines for %s: %w", productCode, err)
	}

	snapshot := &Snapshot{
		ProductCode: productCode,
		Lines:       make([]entities.BOMLine, 0, len(lines)),
		Materials:   make(map[entities.MaterialCode]entities.RawMaterial, len(lines)),
	}

	for _, line := range lines {
		snapshot.Lines = append(snapshot.Lines, *line)
		if _, seen := snapshot.Materials[line.MaterialCode]; seen {
			continue
		}

		material, err := catalog.GetMaterial(line.MaterialCode)
		if errors.Is(err, entities.ErrMaterialNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get material %s: %w", line.MaterialCode, err)
		}
		snapshot.Materials[line.MaterialCode] = *material
	}

	return snapshot, nil
}

// Material returns the snapshot's catalog entry for code
func (s *Snapshot) Material(code entities.MaterialCode) (entities.RawMaterial, bool) {
	material, ok := s.Materials[code]
	return material, ok
}
