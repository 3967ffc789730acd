package database

import (
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/infrastructure/db/database"
)

type dbTransaction struct {
	transaction database.Transaction
}

func (d *dbTransaction) Get(key *database.Key) ([]byte, error) {
	return d.transaction.Get(key)
}

func (d *dbTransaction) Has(key *database.Key) (bool, error) {
	return d.transaction.Has(key)
}

func (d *dbTransaction) Put(key *database.Key, value []byte) error {
	return d.transaction.Put(key, value)
}

func (d *dbTransaction) Delete(key *database.Key) error {
	return d.transaction.Delete(key)
}

func (d *dbTransaction) Cursor(bucket *database.Bucket) (model.DBCursor, error) {
	return d.transaction.Cursor(bucket)
}

func (d *dbTransaction) Rollback() error {
	return d.transaction.Rollback()
}

func (d *dbTransaction) Commit() error {
	return d.transaction.Commit()
}

func (d *dbTransaction) RollbackUnlessClosed() error {
	return d.transaction.RollbackUnlessClosed()
}

func newDBTransaction(transaction database.Transaction) model.DBTransaction {
	return &dbTransaction{transaction: transaction}
}
