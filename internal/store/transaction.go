package store

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type contextKey int

const (
	transactionKey contextKey = iota
)

var errTxDone = errors.New("transaction already finished")

// Tx is a database transaction carried in a context. Sub-stores pick it up
// through getDB.
type Tx struct {
	id  int64
	db  *gorm.DB
	log logrus.FieldLogger
}

func Commit(ctx context.Context) (context.Context, error) {
	return endTransaction(ctx, (*Tx).commit)
}

func Rollback(ctx context.Context) (context.Context, error) {
	return endTransaction(ctx, (*Tx).rollback)
}

// Finish ends the transaction of ctx: it commits when err is nil and keep is
// set, and rolls back otherwise. A dry run passes keep=false. The returned
// error is err itself or the failure to commit.
func Finish(ctx context.Context, keep bool, err error) error {
	if err != nil {
		if _, rerr := Rollback(ctx); rerr != nil {
			if tx, ok := ctx.Value(transactionKey).(*Tx); ok {
				tx.log.Errorf("rollback after %v failed: %v", err, rerr)
			}
		}
		return err
	}
	if !keep {
		_, err = Rollback(ctx)
		return err
	}
	_, err = Commit(ctx)
	return err
}

func FromContext(ctx context.Context) *gorm.DB {
	if tx, found := ctx.Value(transactionKey).(*Tx); found && tx.db != nil {
		return tx.db
	}
	return nil
}

func endTransaction(ctx context.Context, end func(*Tx) error) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}
	return context.WithValue(ctx, transactionKey, nil), end(tx)
}

// newTransactionContext starts a transaction unless ctx already carries one,
// in which case the caller joins it.
func newTransactionContext(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) (context.Context, error) {
	if _, found := ctx.Value(transactionKey).(*Tx); found {
		return ctx, nil
	}

	tx := db.Session(&gorm.Session{Context: ctx}).Begin()
	if tx.Error != nil {
		return ctx, tx.Error
	}

	// txid_current is only meaningful for log correlation and only exists on
	// PostgreSQL
	var txid struct{ ID int64 }
	if db.Dialector.Name() == "postgres" {
		tx.Raw("select txid_current() as id").Scan(&txid)
	}

	return context.WithValue(ctx, transactionKey, &Tx{id: txid.ID, db: tx, log: log}), nil
}

func (t *Tx) commit() error {
	if t.db == nil {
		return errTxDone
	}
	if err := t.db.Commit().Error; err != nil {
		t.log.Errorf("failed to commit transaction %d: %v", t.id, err)
		return err
	}
	t.db = nil
	t.log.Debugf("transaction %d committed", t.id)
	return nil
}

func (t *Tx) rollback() error {
	if t.db == nil {
		return errTxDone
	}
	if err := t.db.Rollback().Error; err != nil {
		t.log.Errorf("failed to rollback transaction %d: %v", t.id, err)
		return err
	}
	t.db = nil
	t.log.Debugf("transaction %d rolled back", t.id)
	return nil
}
