package contracts

import (
	"context"
	"errors"
)

// ErrTableNotFound is returned by TableStore.Get for an unknown table name.
var ErrTableNotFound = errors.New("table not found")

// TableStore is the external key-value table store the pipeline reads its
// input snapshot from and writes its output snapshot to. Replace swaps a
// table wholesale; the store never exposes a partially written table.
// Serialization of concurrent pipeline runs is the caller's concern.
type TableStore interface {
	Get(ctx context.Context, name string) (*Table, error)
	Replace(ctx context.Context, table *Table) error
}
