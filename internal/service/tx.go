// internal/service/tx.go
package service

import (
	"context"
	"fmt"

	"characters-api/internal/repository"
	"characters-api/pkg/db"
)

// TxFuncs bundles the injected transaction helpers; production code passes
// db.BeginTx, db.CommitTx and db.RollbackTx, tests pass fakes.
type TxFuncs struct {
	Begin    db.BeginTxFunc
	Commit   db.CommitTxFunc
	Rollback db.RollbackTxFunc
}

// DefaultTxFuncs returns the pkg/db implementations.
func DefaultTxFuncs() TxFuncs {
	return TxFuncs{Begin: db.BeginTx, Commit: db.CommitTx, Rollback: db.RollbackTx}
}

// txRunner runs a unit of work in one transaction: begin, fn, commit, with a deferred rollback.
type txRunner struct {
	dbBeginner db.DBTxBeginner
	tx         TxFuncs
}

func (r txRunner) inTx(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := r.tx.Begin(ctx, r.dbBeginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer r.tx.Rollback(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := r.tx.Commit(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}
