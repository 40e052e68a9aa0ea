package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/dbx"
	"github.com/google/uuid"
)

const DefaultListLimit = 50

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Record(ctx context.Context, a models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now()
	}
	ts := a.CreatedAt.UnixMilli()

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activity (id, attempt_id, kind, address, job_id, pod_id, digest, blob_id, status, error_kind, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.AttemptID, string(a.Kind), a.Address, a.JobID, a.PodID, a.Digest, a.BlobID, a.Status, a.ErrorKind, ts)
		if err != nil {
			return fmt.Errorf("failed to insert activity %s: %w", a.ID, err)
		}

		if !a.Orphaned || a.BlobID == "" {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO orphan_blobs (blob_id, attempt_id, created_at) VALUES (?, ?, ?)
			ON CONFLICT(blob_id) DO NOTHING
		`, a.BlobID, a.AttemptID, ts)
		if err != nil {
			return fmt.Errorf("failed to insert orphan blob %s: %w", a.BlobID, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.attempt_id, a.kind, a.address, a.job_id, a.pod_id, a.digest, a.blob_id,
		       a.status, a.error_kind, a.created_at, o.blob_id IS NOT NULL
		FROM activity a
		LEFT JOIN orphan_blobs o ON o.blob_id = a.blob_id AND o.attempt_id = a.attempt_id
		ORDER BY a.created_at DESC, a.rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		var kind string
		var ts int64
		if err := rows.Scan(&a.ID, &a.AttemptID, &kind, &a.Address, &a.JobID, &a.PodID, &a.Digest, &a.BlobID,
			&a.Status, &a.ErrorKind, &ts, &a.Orphaned); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		a.Kind = models.ActivityKind(kind)
		a.CreatedAt = time.UnixMilli(ts).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) OrphanBlobs(ctx context.Context) ([]OrphanBlob, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT blob_id, attempt_id, created_at FROM orphan_blobs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphan blobs: %w", err)
	}
	defer rows.Close()

	var out []OrphanBlob
	for rows.Next() {
		var o OrphanBlob
		var ts int64
		if err := rows.Scan(&o.BlobID, &o.AttemptID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan orphan blob row: %w", err)
		}
		o.CreatedAt = time.UnixMilli(ts).UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orphan blob rows: %w", err)
	}
	return out, nil
}
