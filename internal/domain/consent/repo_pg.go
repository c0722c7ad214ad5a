package consent

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careledger/careledger/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo creates a new Postgres-backed Repository.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) Upsert(ctx context.Context, patientID, granteeID string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consent_grant (patient_id, grantee_id, is_active, granted_at)
		VALUES ($1, $2, true, NOW())
		ON CONFLICT (patient_id, grantee_id)
		DO UPDATE SET is_active = true, granted_at = NOW(), revoked_at = NULL
		WHERE consent_grant.is_active = false`,
		patientID, granteeID,
	)
	return err
}

func (r *repoPG) Revoke(ctx context.Context, patientID, granteeID string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE consent_grant SET is_active = false, revoked_at = NOW()
		WHERE patient_id = $1 AND grantee_id = $2 AND is_active = true`,
		patientID, granteeID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) HasActive(ctx context.Context, patientID, granteeID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM consent_grant
			WHERE patient_id = $1 AND grantee_id = $2 AND is_active = true
		)`, patientID, granteeID,
	).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID string) ([]*Grant, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT patient_id, grantee_id, is_active, granted_at, revoked_at
		FROM consent_grant WHERE patient_id = $1 ORDER BY granted_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.PatientID, &g.GranteeID, &g.IsActive, &g.GrantedAt, &g.RevokedAt); err != nil {
			return nil, err
		}
		result = append(result, &g)
	}
	return result, rows.Err()
}
