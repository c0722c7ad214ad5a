package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careledger/careledger/internal/domain/core"
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

const columns = `patient_id, insurer_id, status, reason, requested_at, updated_at`

func (r *repoPG) Get(ctx context.Context, patientID, insurerID string) (*Application, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM review_application WHERE patient_id = $1 AND insurer_id = $2`,
		patientID, insurerID))
}

func (r *repoPG) EnsureRow(ctx context.Context, patientID, insurerID string) error {
	// A conflicting concurrent insert blocks here until the other
	// transaction settles, which is exactly the serialization point the
	// first request of a pair needs.
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO review_application (patient_id, insurer_id, status, reason)
		VALUES ($1, $2, $3, '')
		ON CONFLICT (patient_id, insurer_id) DO NOTHING`,
		patientID, insurerID, string(StatusNone),
	)
	return err
}

func (r *repoPG) GetForUpdate(ctx context.Context, patientID, insurerID string) (*Application, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM review_application WHERE patient_id = $1 AND insurer_id = $2 FOR UPDATE`,
		patientID, insurerID))
}

func (r *repoPG) Save(ctx context.Context, app *Application) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO review_application (patient_id, insurer_id, status, reason, requested_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (patient_id, insurer_id)
		DO UPDATE SET status = $3, reason = $4, requested_at = $5, updated_at = NOW()`,
		app.PatientID, app.InsurerID, string(app.Status), app.Reason, app.RequestedAt,
	)
	return err
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID string) ([]*Application, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+columns+` FROM review_application WHERE patient_id = $1 ORDER BY requested_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) ListForInsurer(ctx context.Context, insurerID string, statusFilter Status) ([]*Application, error) {
	query := `SELECT ` + columns + ` FROM review_application WHERE insurer_id = $1`
	args := []interface{}{insurerID}
	if statusFilter != "" {
		query += fmt.Sprintf(` AND status = $%d`, len(args)+1)
		args = append(args, string(statusFilter))
	}
	query += ` ORDER BY requested_at DESC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT pending, granted, rejected, cancelled FROM review_totals WHERE id = 1`,
	).Scan(&t.Pending, &t.Granted, &t.Rejected, &t.Cancelled)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) AdjustTotal(ctx context.Context, status Status, delta int) error {
	var column string
	switch status {
	case StatusPending:
		column = "pending"
	case StatusGranted:
		column = "granted"
	case StatusRejected:
		column = "rejected"
	case StatusCancelled:
		column = "cancelled"
	default:
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE review_totals SET `+column+` = `+column+` + $1 WHERE id = 1`, delta)
	return err
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Application, error) {
	defer rows.Close()
	var result []*Application
	for rows.Next() {
		var a Application
		var status string
		if err := rows.Scan(&a.PatientID, &a.InsurerID, &status, &a.Reason, &a.RequestedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Status = Status(status)
		result = append(result, &a)
	}
	return result, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Application, error) {
	var a Application
	var status string
	err := row.Scan(&a.PatientID, &a.InsurerID, &status, &a.Reason, &a.RequestedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}
