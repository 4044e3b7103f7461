package memory

import (
	"sync"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
)

// SalesRepository provides in-memory sales history storage
type SalesRepository struct {
	mu      sync.RWMutex
	records []entities.SaleRecord
}

// NewSalesRepository creates a new in-memory sales repository
func NewSalesRepository() *SalesRepository {
	return &SalesRepository{}
}

// Verify interface compliance
var _ repositories.SalesRepository = (*SalesRepository)(nil)

// LoadSales appends records to the sales history
func (r *SalesRepository) LoadSales(records []entities.SaleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	return nil
}

// GetSales returns a copy of the sales history
func (r *SalesRepository) GetSales() ([]entities.SaleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]entities.SaleRecord, len(r.records))
	copy(records, r.records)
	return records, nil
}
