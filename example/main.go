package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/application/services/cohort"
	"github.com/vsinha/bomcost/pkg/application/services/costing"
	"github.com/vsinha/bomcost/pkg/application/services/groups"
	"github.com/vsinha/bomcost/pkg/application/services/sales"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	metricsCache := costing.NewMetricsCache()
	catalog := memory.NewCatalogRepository(4, metricsCache)
	bom := memory.NewBOMRepository(4, metricsCache)
	history := memory.NewSalesRepository()

	setupShippingBox(catalog, bom, history)

	service := costing.NewService(catalog, bom, metricsCache, nil)

	fmt.Println("Costing a shipping box...")
	printMetrics(service, "BOX-100")

	// price change on the board retires every cached product
	board, _ := catalog.GetMaterial("RM-BC")
	board.UnitCost = decimal.NewNullDecimal(decimal.RequireFromString("1.50"))
	if err := catalog.SaveMaterial(board); err != nil {
		fmt.Printf("failed to update board price: %v\n", err)
		return
	}
	fmt.Println("After a board price change:")
	printMetrics(service, "BOX-100")

	calculator := sales.NewCalculator()
	records, _ := history.GetSales()
	records, err := calculator.NormalizeRecords(ctx, records)
	if err != nil {
		fmt.Printf("failed to normalize sales: %v\n", err)
		return
	}

	analyzer := groups.NewAnalyzer(service, service, calculator, groups.DefaultFallbackCostRatio, nil)
	snapshots := analyzer.Analyze(records, groups.Options{BoardBreakdown: true})
	for _, label := range []dto.GroupLabel{dto.GroupA, dto.GroupOther} {
		s := snapshots[label]
		fmt.Printf("%-7s accounts=%d sales=%s cost=%s weight=%skg\n",
			label, s.AccountCount, s.TotalSales.StringFixed(2), s.TotalCost.StringFixed(2), s.TotalWeightKg.StringFixed(3))
	}

	result := cohort.NewEngine(calculator, nil).Analyze(records, nil, nil)
	for _, b := range result.Buckets {
		fmt.Printf("cohort %s M+%d: customers=%d sales=%s aov=%s\n",
			b.CohortMonth, b.MonthOffset, b.CustomerCount, b.TotalSales.StringFixed(2), b.AverageOrderValue.StringFixed(2))
	}
}

func printMetrics(service *costing.Service, code entities.ProductCode) {
	metrics, err := service.ProductMetrics(code)
	if err != nil {
		fmt.Printf("failed to compute %s: %v\n", code, err)
		return
	}
	fmt.Printf("  %s: %s kg, %s %s (generation %d)\n\n",
		code, metrics.WeightKg.StringFixed(3), metrics.Cost.StringFixed(2), metrics.Currency, metrics.Generation)
}

func setupShippingBox(catalog *memory.CatalogRepository, bom *memory.BOMRepository, history *memory.SalesRepository) {
	mustMaterial := func(code entities.MaterialCode, category entities.Category, grade, mass, cost string) *entities.RawMaterial {
		var perAreaMass decimal.NullDecimal
		if mass != "" {
			perAreaMass = decimal.NewNullDecimal(decimal.RequireFromString(mass))
		}
		m, err := entities.NewRawMaterial(code, string(code), category, perAreaMass,
			decimal.NewNullDecimal(decimal.RequireFromString(cost)), "USD")
		if err != nil {
			panic(err)
		}
		m.Grade = grade
		return m
	}

	_ = catalog.LoadMaterials([]*entities.RawMaterial{
		mustMaterial("RM-BC", entities.CorrugatedBoard, "BC", "650", "1.10"),
		mustMaterial("RM-TAPE", entities.Film, "", "", "0.05"),
		mustMaterial("RM-CLIP", entities.Bracket, "", "", "0.30"),
	})

	mustLine := func(material entities.MaterialCode, quantity string, unit entities.Unit) *entities.BOMLine {
		line, err := entities.NewBOMLine("BOX-100", material, decimal.RequireFromString(quantity), unit, "")
		if err != nil {
			panic(err)
		}
		return line
	}
	_ = bom.LoadBOMLines([]*entities.BOMLine{
		mustLine("RM-BC", "1.8", entities.SquareMeter),
		mustLine("RM-TAPE", "2", entities.Meter),
		mustLine("RM-CLIP", "4", entities.Count),
	})

	sale := func(buyer entities.AccountID, sub, period, quantity string) entities.SaleRecord {
		return entities.SaleRecord{
			Buyer:       buyer,
			SubAccount:  sub,
			Period:      period,
			ProductCode: "BOX-100",
			Quantity:    decimal.RequireFromString(quantity),
			UnitPrice:   decimal.RequireFromString("6.50"),
		}
	}
	_ = history.LoadSales([]entities.SaleRecord{
		sale("Northwind", "Northwind-East", "2024-01", "100"),
		sale("Northwind", "", "2024-03", "40"),
		sale("Contoso", "", "2024-02", "25"),
		sale("Contoso", "", "2024-03", "30"),
	})
}
