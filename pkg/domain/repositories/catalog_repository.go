package repositories

import "github.com/vsinha/bomcost/pkg/domain/entities"

// CatalogRepository provides access to raw material master data
type CatalogRepository interface {
	GetMaterial(code entities.MaterialCode) (*entities.RawMaterial, error)
	GetAllMaterials() ([]*entities.RawMaterial, error)
	LoadMaterials(materials []*entities.RawMaterial) error
	SaveMaterial(material *entities.RawMaterial) error
	DeleteMaterial(code entities.MaterialCode) error
}
