package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(_ context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTx_CommitsAndExposesTx(t *testing.T) {
	tx := &fakeTx{}
	b := &fakeBeginner{tx: tx}

	var seen pgx.Tx
	err := WithTx(context.Background(), b, func(ctx context.Context) error {
		seen = TxFromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != pgx.Tx(tx) {
		t.Error("expected TxFromContext to return the open transaction inside fn")
	}
	if !tx.committed {
		t.Error("expected commit when fn returns nil")
	}
	if tx.rolledBack {
		t.Error("unexpected rollback after successful commit")
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	b := &fakeBeginner{tx: tx}

	wantErr := fmt.Errorf("boom")
	err := WithTx(context.Background(), b, func(ctx context.Context) error {
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}
	if tx.committed {
		t.Error("must not commit when fn fails")
	}
	if !tx.rolledBack {
		t.Error("expected rollback when fn fails")
	}
}

func TestWithTx_BeginFailure(t *testing.T) {
	b := &fakeBeginner{err: fmt.Errorf("pool exhausted")}
	err := WithTx(context.Background(), b, func(ctx context.Context) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})
	if err == nil {
		t.Fatal("expected error when begin fails")
	}
}

func TestTxFromContext_NoTransaction(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Errorf("expected nil on a bare context, got %v", tx)
	}
}
