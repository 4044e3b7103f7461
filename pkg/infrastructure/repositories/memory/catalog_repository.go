package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
)

// CatalogRepository provides thread-safe in-memory raw material storage
type CatalogRepository struct {
	mu          sync.RWMutex
	materials   map[entities.MaterialCode]entities.RawMaterial
	order       []entities.MaterialCode
	invalidator repositories.Invalidator
}

// NewCatalogRepository creates a catalog that notifies invalidator after
// every mutation
func NewCatalogRepository(expectedMaterials int, invalidator repositories.Invalidator) *CatalogRepository {
	if invalidator == nil {
		invalidator = repositories.NoopInvalidator{}
	}
	return &CatalogRepository{
		materials:   make(map[entities.MaterialCode]entities.RawMaterial, expectedMaterials),
		order:       make([]entities.MaterialCode, 0, expectedMaterials),
		invalidator: invalidator,
	}
}

// Verify interface compliance
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// LoadMaterials loads materials into the catalog
func (r *CatalogRepository) LoadMaterials(materials []*entities.RawMaterial) error {
	r.mu.Lock()
	for _, material := range materials {
		r.put(*material)
	}
	r.mu.Unlock()

	r.invalidator.InvalidateAll()
	return nil
}

// GetMaterial returns the catalog entry for a material code
func (r *CatalogRepository) GetMaterial(code entities.MaterialCode) (*entities.RawMaterial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	material, exists := r.materials[code]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, code)
	}
	return &material, nil
}

// GetAllMaterials returns all materials in insertion order
func (r *CatalogRepository) GetAllMaterials() ([]*entities.RawMaterial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materials := make([]*entities.RawMaterial, 0, len(r.order))
	for _, code := range r.order {
		material := r.materials[code]
		materials = append(materials, &material)
	}
	return materials, nil
}

// SaveMaterial inserts or replaces a material
func (r *CatalogRepository) SaveMaterial(material *entities.RawMaterial) error {
	if material == nil {
		return fmt.Errorf("material cannot be nil")
	}
	if strings.TrimSpace(string(material.Code)) == "" {
		return fmt.Errorf("material code: %w", entities.ErrEmptyCode)
	}

	r.mu.Lock()
	r.put(*material)
	r.mu.Unlock()

	r.invalidator.InvalidateAll()
	return nil
}

// DeleteMaterial removes a material from the catalog. BOM lines that still
// reference it are skipped by the aggregator.
func (r *CatalogRepository) DeleteMaterial(code entities.MaterialCode) error {
	r.mu.Lock()
	if _, exists := r.materials[code]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, code)
	}
	delete(r.materials, code)
	for i, c := range r.order {
		if c == code {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.invalidator.InvalidateAll()
	return nil
}

func (r *CatalogRepository) put(material entities.RawMaterial) {
	if _, exists := r.materials[material.Code]; !exists {
		r.order = append(r.order, material.Code)
	}
	r.materials[material.Code] = material
}
