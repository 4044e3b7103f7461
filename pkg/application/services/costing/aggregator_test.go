package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/log"
)

func snapshotOf(product entities.ProductCode, lines []entities.BOMLine, materials ...entities.RawMaterial) *Snapshot {
	s := &Snapshot{
		ProductCode: product,
		Lines:       lines,
		Materials:   make(map[entities.MaterialCode]entities.RawMaterial),
	}
	for _, m := range materials {
		s.Materials[m.Code] = m
	}
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func null(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func TestAggregator_WeightOnlyFromCorrugatedBoard(t *testing.T) {
	board := entities.RawMaterial{Code: "RM-B", Category: entities.CorrugatedBoard, Grade: "BC", PerAreaMass: null("450"), UnitCost: null("1.20"), Currency: "USD"}
	metal := entities.RawMaterial{Code: "RM-METAL", Category: entities.Metal, PerAreaMass: null("9999"), UnitCost: null("5.00"), Currency: "USD"}

	snapshot := snapshotOf("P1", []entities.BOMLine{
		{ProductCode: "P1", MaterialCode: "RM-B", Quantity: dec("2")},
		{ProductCode: "P1", MaterialCode: "RM-METAL", Quantity: dec("1")},
	}, board, metal)

	metrics := NewAggregator(log.Discard()).Aggregate(snapshot)

	assert.True(t, metrics.WeightKg.Equal(dec("0.9")), "weight %s", metrics.WeightKg)
	assert.True(t, metrics.Cost.Equal(dec("7.40")), "cost %s", metrics.Cost)
	assert.Equal(t, "USD", metrics.Currency)
	if assert.Len(t, metrics.Boards, 1) {
		assert.Equal(t, entities.DoubleWall, metrics.Boards[0].WallType)
		assert.True(t, metrics.Boards[0].AreaM2.Equal(dec("2")))
		assert.True(t, metrics.Boards[0].WeightKg.Equal(dec("0.9")))
	}
}

func TestAggregator_EmptyBOM(t *testing.T) {
	metrics := NewAggregator(log.Discard()).Aggregate(snapshotOf("EMPTY", nil))

	assert.True(t, metrics.WeightKg.IsZero())
	assert.True(t, metrics.Cost.IsZero())
	assert.Empty(t, metrics.Boards)
}

func TestAggregator_MissingDataContributesZero(t *testing.T) {
	noMass := entities.RawMaterial{Code: "RM-NOMASS", Category: entities.CorrugatedBoard, UnitCost: null("1.00")}
	noCost := entities.RawMaterial{Code: "RM-NOCOST", Category: entities.CorrugatedBoard, PerAreaMass: null("200")}

	snapshot := snapshotOf("P3", []entities.BOMLine{
		{ProductCode: "P3", MaterialCode: "RM-GHOST", Quantity: dec("3")},
		{ProductCode: "P3", MaterialCode: "RM-NOMASS", Quantity: dec("2")},
		{ProductCode: "P3", MaterialCode: "RM-NOCOST", Quantity: dec("1")},
	}, noMass, noCost)

	metrics := NewAggregator(log.Discard()).Aggregate(snapshot)

	assert.True(t, metrics.WeightKg.Equal(dec("0.2")), "weight %s", metrics.WeightKg)
	assert.True(t, metrics.Cost.Equal(dec("2")), "cost %s", metrics.Cost)
}

func TestAggregator_ClampsNegativeInputs(t *testing.T) {
	board := entities.RawMaterial{Code: "RM-B", Category: entities.CorrugatedBoard, PerAreaMass: null("-450"), UnitCost: null("-1")}
	foam := entities.RawMaterial{Code: "RM-FOAM", Category: entities.Foam, UnitCost: null("0.40")}

	snapshot := snapshotOf("PX", []entities.BOMLine{
		{ProductCode: "PX", MaterialCode: "RM-B", Quantity: dec("2")},
		{ProductCode: "PX", MaterialCode: "RM-FOAM", Quantity: dec("-5")},
	}, board, foam)

	metrics := NewAggregator(log.Discard()).Aggregate(snapshot)

	assert.True(t, metrics.WeightKg.IsZero())
	assert.True(t, metrics.Cost.IsZero())
}
