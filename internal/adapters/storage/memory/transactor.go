package memory

import (
	"context"
	"sync"
)

// Transactor serializa las secuencias del workflow de solicitudes.
// No hay rollback: un error a mitad de camino deja lo ya escrito.
type Transactor struct {
	mu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
