package evidencestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/casevault/casevault/pkg/store"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

var _ EvidenceStore = &DatabaseStore{}

// DatabaseStore keeps evidence records in a relational `evidence` table.
type DatabaseStore struct {
	db *bun.DB
}

type databaseStoreRecord struct {
	bun.BaseModel `bun:"table:evidence,alias:ev"`

	ID         int64     `bun:"id,pk,nullzero"`
	CaseID     string    `bun:"case_id,notnull"`
	EvidenceID string    `bun:"evidence_id,notnull"`
	FileName   string    `bun:"file_name"`
	FileType   string    `bun:"file_type"`
	Hash       string    `bun:"evidence_hash,notnull"`
	OfficerID  string    `bun:"officer_id"`
	UploadedAt time.Time `bun:"upload_date,notnull"`
}

// NewDatabaseStore opens the database behind dsn and creates the
// evidence table if it doesn't exist yet.
func NewDatabaseStore(ctx context.Context, dsn string) (*DatabaseStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to use data source name: %v", err)
	}

	sqldb.SetConnMaxLifetime(0)
	sqldb.SetMaxIdleConns(3)
	sqldb.SetMaxOpenConns(3)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.FromEnv("BUNDEBUG"),
	))

	_, err = db.NewCreateTable().
		Model((*databaseStoreRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return &DatabaseStore{
		db: db,
	}, nil
}

func (ds *DatabaseStore) Insert(ctx context.Context, record *Record) (int64, error) {
	err := record.Check()
	if err != nil {
		return 0, err
	}

	uploadedAt := record.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	dsRecord := databaseStoreRecord{
		CaseID:     record.CaseID,
		EvidenceID: record.EvidenceID,
		FileName:   record.FileName,
		FileType:   record.FileType,
		Hash:       record.Hash,
		OfficerID:  record.OfficerID,
		UploadedAt: uploadedAt,
	}

	var id int64
	err = ds.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&dsRecord).
			Exec(ctx)
		if err != nil {
			return err
		}

		// the driver behind sqliteshim doesn't support LastInsertId,
		// so read the rowid back on the same connection
		return tx.NewSelect().
			ColumnExpr("last_insert_rowid()").
			Scan(ctx, &id)
	})
	if err != nil {
		return 0, fmt.Errorf("unable to insert evidence record: %v", err)
	}

	record.ID = id
	record.UploadedAt = uploadedAt
	return id, nil
}

func (ds *DatabaseStore) FindLatest(ctx context.Context, caseID, evidenceID string) (*Record, error) {
	dsRecord := new(databaseStoreRecord)

	err := ds.db.NewSelect().
		Model(dsRecord).
		Where("case_id = ?", caseID).
		Where("evidence_id = ?", evidenceID).
		OrderExpr("upload_date DESC, id DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("unable to get evidence record: %v", err)
	}

	return dsRecord.toRecord(), nil
}

func (ds *DatabaseStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	var dsRecords []databaseStoreRecord

	err := ds.db.NewSelect().
		Model(&dsRecords).
		OrderExpr("upload_date DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list evidence records: %v", err)
	}

	records := make([]Record, 0, len(dsRecords))
	for _, dsRecord := range dsRecords {
		records = append(records, *dsRecord.toRecord())
	}
	return records, nil
}

func (ds *DatabaseStore) Close() error {
	return ds.db.Close()
}

func (dsRecord *databaseStoreRecord) toRecord() *Record {
	return &Record{
		ID:         dsRecord.ID,
		CaseID:     dsRecord.CaseID,
		EvidenceID: dsRecord.EvidenceID,
		FileName:   dsRecord.FileName,
		FileType:   dsRecord.FileType,
		Hash:       dsRecord.Hash,
		OfficerID:  dsRecord.OfficerID,
		UploadedAt: dsRecord.UploadedAt,
	}
}
