package testing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/memory"
)

// MustBOMLine is a helper for tests - panics on validation error
func MustBOMLine(product, material string, quantity string, unit entities.Unit) *entities.BOMLine {
	line, err := entities.NewBOMLine(
		entities.ProductCode(product),
		entities.MaterialCode(material),
		decimal.RequireFromString(quantity),
		unit,
		"",
	)
	if err != nil {
		panic(err)
	}
	return line
}

// MustMaterial is a helper for tests - panics on validation error. Empty
// mass or cost strings become absent values.
func MustMaterial(code string, category entities.Category, grade, perAreaMass, unitCost string) *entities.RawMaterial {
	material, err := entities.NewRawMaterial(
		entities.MaterialCode(code),
		code,
		category,
		nullDecimal(perAreaMass),
		nullDecimal(unitCost),
		"USD",
	)
	if err != nil {
		panic(err)
	}
	material.Grade = grade
	return material
}

// Sale builds a sale record with a derived amount
func Sale(buyer, subAccount, period, product, quantity, unitPrice string) entities.SaleRecord {
	return entities.SaleRecord{
		Buyer:       entities.AccountID(buyer),
		SubAccount:  subAccount,
		Period:      period,
		ProductCode: entities.ProductCode(product),
		Quantity:    decimal.RequireFromString(quantity),
		UnitPrice:   decimal.RequireFromString(unitPrice),
		Currency:    "USD",
	}
}

func nullDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// PackagingMaterials returns the catalog of the packaging test scenario
func PackagingMaterials() []*entities.RawMaterial {
	return []*entities.RawMaterial{
		MustMaterial("RM-B", entities.CorrugatedBoard, "BC", "450", "1.20"),
		MustMaterial("RM-SW", entities.CorrugatedBoard, "B", "300", "0.80"),
		MustMaterial("RM-METAL", entities.Metal, "", "", "5.00"),
		MustMaterial("RM-FOAM", entities.Foam, "", "", "0.40"),
		MustMaterial("RM-NOCOST", entities.CorrugatedBoard, "TW", "200", ""),
	}
}

// PackagingBOM returns the BOM of the packaging test scenario:
//
//	P1: 2 m² RM-B + 1 RM-METAL        => 0.9 kg, 7.40
//	P2: 1.5 m² RM-SW + 2 RM-FOAM      => 0.45 kg, 2.00
//	P3: 1 RM-GHOST + 1 m² RM-NOCOST   => 0.2 kg, 0 (unknown material, no cost)
func PackagingBOM() []*entities.BOMLine {
	return []*entities.BOMLine{
		MustBOMLine("P1", "RM-B", "2", entities.SquareMeter),
		MustBOMLine("P1", "RM-METAL", "1", entities.Count),
		MustBOMLine("P2", "RM-SW", "1.5", entities.SquareMeter),
		MustBOMLine("P2", "RM-FOAM", "2", entities.Count),
		MustBOMLine("P3", "RM-GHOST", "1", entities.Count),
		MustBOMLine("P3", "RM-NOCOST", "1", entities.SquareMeter),
	}
}

// PackagingSales returns the sales history of the packaging test scenario.
// Acme orders through a sub-account and belongs to group A.
func PackagingSales() []entities.SaleRecord {
	return []entities.SaleRecord{
		Sale("Acme", "Acme-Sub", "2024-01", "P1", "10", "20.00"),
		Sale("Acme", "", "2024-02", "P2", "5", "8.00"),
		Sale("Beta", "", "2024-01", "P1", "2", "20.00"),
		Sale("Beta", "", "2024-03", "P3", "4", "10.00"),
		Sale("Gamma", "", "2024-02", "P2", "1", "8.00"),
	}
}

// BuildPackagingTestData loads the packaging scenario into memory repositories
func BuildPackagingTestData(invalidator repositories.Invalidator) (*memory.CatalogRepository, *memory.BOMRepository, *memory.SalesRepository) {
	catalog := memory.NewCatalogRepository(10, invalidator)
	bom := memory.NewBOMRepository(20, invalidator)
	sales := memory.NewSalesRepository()

	_ = catalog.LoadMaterials(PackagingMaterials())
	_ = bom.LoadBOMLines(PackagingBOM())
	_ = sales.LoadSales(PackagingSales())

	return catalog, bom, sales
}
