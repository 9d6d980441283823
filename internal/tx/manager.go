package tx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type Manager struct {
	DB *sql.DB
}

const maxRetries = 5

var ErrRetryExhausted = errors.New("transaction retry exhausted")

// WithTx runs fn in a read-committed transaction. Serialization failures
// and deadlocks rerun fn from the start; any other error is returned as is.
func (m *Manager) WithTx(
	ctx context.Context,
	fn func(ctx context.Context, tx *sql.Tx) error,
) error {

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := m.run(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsSerializationError(err) {
			return err
		}
		observability.GetLogger(ctx).Warn("tx_retry",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return ErrRetryExhausted
}

func (m *Manager) run(
	ctx context.Context,
	fn func(ctx context.Context, tx *sql.Tx) error,
) error {

	tx, err := m.DB.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			observability.GetLogger(ctx).Error("tx_rollback_failed",
				zap.Error(rbErr),
				zap.NamedError("cause", err),
			)
		}
		return err
	}

	return tx.Commit()
}

// IsSerializationError reports serialization failures and deadlocks,
// both of which are safe to retry.
func IsSerializationError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01":
		return true
	}
	return false
}
