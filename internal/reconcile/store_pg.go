package reconcile

import (
	"database/sql"

	"plowmarket/internal/db"
	"plowmarket/internal/models"
)

// PGStore реализует Store поверх глобального подключения пакета db.
// PGStore implements Store on top of the db package's global connection.
type PGStore struct{}

func (PGStore) Begin() (Tx, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx *sql.Tx
}

func (p *pgTx) CompletePayoutRequest(requestID int64) (models.PayoutRequest, error) {
	return db.CompletePayoutRequestInTx(p.tx, requestID)
}

func (p *pgTx) MarkAllJobsPaidOut(shovelerPhone string) (int64, error) {
	return db.MarkAllJobsPaidOutInTx(p.tx, shovelerPhone)
}

func (p *pgTx) JobsForShoveler(shovelerPhone string, jobIDs []int64) ([]models.Job, error) {
	return db.GetJobsByIDsForShovelerInTx(p.tx, shovelerPhone, jobIDs)
}

func (p *pgTx) MarkJobsPaidOutByIDs(shovelerPhone string, jobIDs []int64) (int64, error) {
	return db.MarkJobsPaidOutByIDsInTx(p.tx, shovelerPhone, jobIDs)
}

func (p *pgTx) Commit() error {
	return p.tx.Commit()
}

func (p *pgTx) Rollback() error {
	return p.tx.Rollback()
}
