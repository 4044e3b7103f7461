package memory

import (
	"testing"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

func TestSalesRepository_LoadAndGet(t *testing.T) {
	repo := NewSalesRepository()

	records := []entities.SaleRecord{
		{Buyer: "Acme", Period: "2024-01", ProductCode: "P1"},
		{Buyer: "Beta", Period: "2024-02", ProductCode: "P2"},
	}
	if err := repo.LoadSales(records); err != nil {
		t.Fatalf("Failed to load sales: %v", err)
	}

	got, _ := repo.GetSales()
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	got[0].Buyer = "changed"
	again, _ := repo.GetSales()
	if again[0].Buyer != "Acme" {
		t.Error("Expected GetSales to return a copy")
	}
}
