package repositories

import "github.com/vsinha/bomcost/pkg/domain/entities"

// BOMRepository provides access to Bill of Materials data
type BOMRepository interface {
	GetBOMLines(productCode entities.ProductCode) ([]*entities.BOMLine, error)
	GetAllBOMLines() ([]*entities.BOMLine, error)
	LoadBOMLines(lines []*entities.BOMLine) error

	// SaveBOMLine inserts the line, or updates the existing line with the same key in place.
	SaveBOMLine(line *entities.BOMLine) error

	// UpdateBOMLine replaces the line stored under previous with line; the key may change.
	UpdateBOMLine(previous entities.BOMKey, line *entities.BOMLine) error

	DeleteBOMLine(key entities.BOMKey) error
}
