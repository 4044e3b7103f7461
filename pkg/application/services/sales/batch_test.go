package sales

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

func TestBatchedTransform_PreservesOrder(t *testing.T) {
	input := make([]int, 1003)
	for i := range input {
		input[i] = i
	}
	double := func(chunk []int) []int {
		out := make([]int, len(chunk))
		for i, v := range chunk {
			out[i] = v * 2
		}
		return out
	}

	single, err := BatchedTransform(context.Background(), input, 0, 1, double)
	require.NoError(t, err)

	for _, chunkSize := range []int{1, 7, 100, 1003, 5000} {
		for _, workers := range []int{1, 4} {
			t.Run(fmt.Sprintf("chunk_%d_workers_%d", chunkSize, workers), func(t *testing.T) {
				got, err := BatchedTransform(context.Background(), input, chunkSize, workers, double)
				require.NoError(t, err)
				assert.Equal(t, single, got)
			})
		}
	}
}

func TestBatchedTransform_EmptyInput(t *testing.T) {
	got, err := BatchedTransform(context.Background(), []int{}, 10, 2, func(c []int) []int { return c })
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBatchedTransform_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BatchedTransform(ctx, []int{1, 2, 3}, 1, 1, func(c []int) []int { return c })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculator_NormalizeRecords(t *testing.T) {
	calc := newTestCalculator(WithBatching(2, 3), WithDefaultCurrency("eur"))

	records := []entities.SaleRecord{
		{Buyer: " Acme ", ProductCode: "p1 ", Quantity: dec("2"), UnitPrice: dec("5"), Amount: decimal.NewNullDecimal(dec("10.00"))},
		{Buyer: "Beta", ProductCode: "p2", Currency: "usd", Quantity: dec("1"), UnitPrice: dec("5"), Amount: decimal.NewNullDecimal(dec("50.00"))},
		{Buyer: "Gamma", ProductCode: "P3", Quantity: dec("1"), UnitPrice: dec("1")},
	}

	got, err := calc.NormalizeRecords(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, entities.AccountID("Acme"), got[0].Buyer)
	assert.Equal(t, entities.ProductCode("P1"), got[0].ProductCode)
	assert.Equal(t, "EUR", got[0].Currency)
	assert.True(t, got[0].Amount.Valid)

	assert.Equal(t, "USD", got[1].Currency)
	assert.False(t, got[1].Amount.Valid, "inconsistent stored amount must be dropped")

	assert.Equal(t, entities.AccountID("Gamma"), got[2].Buyer)
	assert.Equal(t, entities.AccountID(" Acme "), records[0].Buyer, "input records are not modified")
}
