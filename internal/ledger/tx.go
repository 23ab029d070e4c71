// Package ledger provides the transactional boundary shared by every
// state-mutating ledger operation. The hosting model is a single global
// serial ordering: one mutating call commits (or fully reverts) before the
// next begins, so invariants are always re-validated against current state.
package ledger

import (
	"context"
	"sync"
	"time"

	dErrors "brique/pkg/domain-errors"
)

// StoreTx serializes ledger mutations. Implementations may wrap a database
// transaction or an in-memory lock; either way fn runs alone.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

// SerialTx is the in-process implementation: a single mutex shared by all
// five components. Holding one lock for the whole ledger is deliberate -
// a purchase spans the sale and asset components and must observe no
// interleaved writes between its checks and its mutations.
type SerialTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewSerialTx() *SerialTx {
	return &SerialTx{}
}

func (t *SerialTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}
