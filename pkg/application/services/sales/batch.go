package sales

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/log"
)

// BatchedTransform splits records into fixed windows of chunkSize, applies fn
// to each window and concatenates the results in input order. At most
// workers windows are transformed at a time. Only context cancellation
// produces an error.
func BatchedTransform[T, R any](ctx context.Context, records []T, chunkSize, workers int, fn func([]T) []R) ([]R, error) {
	if len(records) == 0 {
		return []R{}, nil
	}
	if chunkSize <= 0 || chunkSize > len(records) {
		chunkSize = len(records)
	}
	if workers <= 0 {
		workers = 1
	}

	chunks := (len(records) + chunkSize - 1) / chunkSize
	results := make([][]R, chunks)

	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < chunks; i++ {
		i := i
		start := i * chunkSize
		end := min(start+chunkSize, len(records))

		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(records[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]R, 0, len(records))
	for _, chunk := range results {
		out = append(out, chunk...)
	}
	return out, nil
}

// NormalizeRecords trims identifiers, upper-cases product and currency codes,
// assigns the default currency and drops stored amounts that disagree with
// quantity × unit price. Records are processed in batches.
func (c *Calculator) NormalizeRecords(ctx context.Context, records []entities.SaleRecord) ([]entities.SaleRecord, error) {
	logger := c.logger.WithContext(ctx)
	return BatchedTransform(ctx, records, c.chunkSize, c.workers, func(chunk []entities.SaleRecord) []entities.SaleRecord {
		out := make([]entities.SaleRecord, len(chunk))
		for i, record := range chunk {
			out[i] = c.normalize(logger, record)
		}
		return out
	})
}

func (c *Calculator) normalize(logger log.Logger, record entities.SaleRecord) entities.SaleRecord {
	record.Buyer = entities.AccountID(strings.TrimSpace(string(record.Buyer)))
	record.SubAccount = strings.TrimSpace(record.SubAccount)
	record.Rep = strings.TrimSpace(record.Rep)
	record.Period = strings.TrimSpace(record.Period)
	record.ProductCode = entities.ProductCode(strings.ToUpper(strings.TrimSpace(string(record.ProductCode))))

	record.Currency = strings.ToUpper(strings.TrimSpace(record.Currency))
	if record.Currency == "" {
		record.Currency = c.defaultCurrency
	}

	if record.Amount.Valid {
		derived := c.Round(record.DerivedAmount())
		if c.Round(record.Amount.Decimal).Sub(derived).Abs().GreaterThan(c.tolerance) {
			logger.WithFields(log.Fields{
				"buyer":        record.Buyer,
				"period":       record.Period,
				"product_code": record.ProductCode,
			}).Warn("dropping stored sale amount that disagrees with quantity x unit price")
			record.Amount.Valid = false
		}
	}
	return record
}
