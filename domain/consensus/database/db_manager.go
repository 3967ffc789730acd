package database

import (
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/infrastructure/db/database"
)

type dbManager struct {
	db database.Database
}

func (dbw *dbManager) Get(key *database.Key) ([]byte, error) {
	return dbw.db.Get(key)
}

func (dbw *dbManager) Has(key *database.Key) (bool, error) {
	return dbw.db.Has(key)
}

func (dbw *dbManager) Put(key *database.Key, value []byte) error {
	return dbw.db.Put(key, value)
}

func (dbw *dbManager) Delete(key *database.Key) error {
	return dbw.db.Delete(key)
}

func (dbw *dbManager) Cursor(bucket *database.Bucket) (model.DBCursor, error) {
	return dbw.db.Cursor(bucket)
}

func (dbw *dbManager) Begin() (model.DBTransaction, error) {
	transaction, err := dbw.db.Begin()
	if err != nil {
		return nil, err
	}
	return newDBTransaction(transaction), nil
}

// New returns a new DBManager over the given database handle
func New(db database.Database) model.DBManager {
	return &dbManager{db: db}
}
