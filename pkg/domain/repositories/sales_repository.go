package repositories

import "github.com/vsinha/bomcost/pkg/domain/entities"

// SalesRepository provides access to the sales history
type SalesRepository interface {
	GetSales() ([]entities.SaleRecord, error)
	LoadSales(records []entities.SaleRecord) error
}
