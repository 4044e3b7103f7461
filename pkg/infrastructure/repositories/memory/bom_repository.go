package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
)

// BOMRepository provides thread-safe in-memory BOM storage keyed by
// (product code, material code)
type BOMRepository struct {
	mu          sync.RWMutex
	lines       map[entities.BOMKey]entities.BOMLine
	byProduct   map[entities.ProductCode][]entities.MaterialCode
	invalidator repositories.Invalidator
}

// NewBOMRepository creates a BOM repository that notifies invalidator after
// every mutation
func NewBOMRepository(expectedLines int, invalidator repositories.Invalidator) *BOMRepository {
	if invalidator == nil {
		invalidator = repositories.NoopInvalidator{}
	}
	return &BOMRepository{
		lines:       make(map[entities.BOMKey]entities.BOMLine, expectedLines),
		byProduct:   make(map[entities.ProductCode][]entities.MaterialCode),
		invalidator: invalidator,
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)

// LoadBOMLines loads BOM lines into the repository; later duplicates replace earlier ones
func (r *BOMRepository) LoadBOMLines(lines []*entities.BOMLine) error {
	r.mu.Lock()
	for _, line := range lines {
		r.put(*line)
	}
	r.mu.Unlock()

	r.invalidator.InvalidateAll()
	return nil
}

// GetBOMLines returns the BOM lines of a product in insertion order
func (r *BOMRepository) GetBOMLines(productCode entities.ProductCode) ([]*entities.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materials := r.byProduct[productCode]
	lines := make([]*entities.BOMLine, 0, len(materials))
	for _, material := range materials {
		line := r.lines[entities.BOMKey{ProductCode: productCode, MaterialCode: material}]
		lines = append(lines, &line)
	}
	return lines, nil
}

// GetAllBOMLines returns every BOM line
func (r *BOMRepository) GetAllBOMLines() ([]*entities.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]*entities.BOMLine, 0, len(r.lines))
	for product, materials := range r.byProduct {
		for _, material := range materials {
			line := r.lines[entities.BOMKey{ProductCode: product, MaterialCode: material}]
			lines = append(lines, &line)
		}
	}
	return lines, nil
}

// SaveBOMLine inserts a line, or updates the line with the same key in place
func (r *BOMRepository) SaveBOMLine(line *entities.BOMLine) error {
	if line == nil {
		return fmt.Errorf("bom line cannot be nil")
	}
	if _, err := entities.NewBOMLine(line.ProductCode, line.MaterialCode, line.Quantity, line.Unit, line.Note); err != nil {
		return err
	}

	r.mu.Lock()
	r.put(*line)
	r.mu.Unlock()

	r.invalidator.InvalidateAll()
	return nil
}

// UpdateBOMLine replaces the line stored under previous. When the key changes
// the line moves to its new product.
func (r *BOMRepository) UpdateBOMLine(previous entities.BOMKey, line *entities.BOMLine) error {
	if line == nil {
		return fmt.Errorf("bom line cannot be nil")
	}
	if _, err := entities.NewBOMLine(line.ProductCode, line.MaterialCode, line.Quantity, line.Unit, line.Note); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.lines[previous]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", entities.ErrBOMLineNotFound, previous)
	}
	if key := line.Key(); key != previous {
		if _, exists := r.lines[key]; exists {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", entities.ErrDuplicateBOMLine, key)
		}
		r.remove(previous)
	}
	r.put(*line)
	r.mu.Unlock()

	r.invalidator.InvalidateAll()
	return nil
}

// DeleteBOMLine removes the line stored under key
func (r *BOMRepository) DeleteBOMLine(key entities.BOMKey) error {
	r.mu.Lock()
	if _, exists := r.lines[key]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", entities.ErrBOMLineNotFound, key)
	}
	r.remove(key)
	r.mu.Unlock()

	r.invalidator.InvalidateAll()
	return nil
}

// Len returns the number of stored lines
func (r *BOMRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lines)
}

func (r *BOMRepository) put(line entities.BOMLine) {
	key := line.Key()
	if _, exists := r.lines[key]; !exists {
		r.byProduct[key.ProductCode] = append(r.byProduct[key.ProductCode], key.MaterialCode)
	}
	r.lines[key] = line
}

func (r *BOMRepository) remove(key entities.BOMKey) {
	delete(r.lines, key)

	materials := r.byProduct[key.ProductCode]
	for i, material := range materials {
		if material == key.MaterialCode {
			materials = append(materials[:i], materials[i+1:]...)
			break
		}
	}
	if len(materials) == 0 {
		delete(r.byProduct, key.ProductCode)
		return
	}
	r.byProduct[key.ProductCode] = materials
}
