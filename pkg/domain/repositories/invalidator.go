package repositories

// Invalidator is notified after every catalog or BOM mutation so that
// derived product metrics are recomputed on next read.
type Invalidator interface {
	InvalidateAll() uint64
}

// NoopInvalidator ignores mutations
type NoopInvalidator struct{}

// InvalidateAll implements Invalidator
func (NoopInvalidator) InvalidateAll() uint64 { return 0 }
