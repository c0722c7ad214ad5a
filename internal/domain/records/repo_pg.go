package records

import (
	"context"
	"errors"

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

const columns = `id, patient_id, doctor_id, diagnosis, symptoms, prescription,
	treatment_plan, external_doc_pointer, is_active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, rec *Record) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_record (
			patient_id, doctor_id, diagnosis, symptoms, prescription,
			treatment_plan, external_doc_pointer, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING id`,
		rec.PatientID, rec.DoctorID, rec.Diagnosis, rec.Symptoms,
		rec.Prescription, rec.TreatmentPlan, rec.ExternalDocPointer,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	rec.ID = id
	return id, nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM medical_record WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id int64) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM medical_record WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET
			diagnosis = $2, symptoms = $3, prescription = $4,
			treatment_plan = $5, external_doc_pointer = $6, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.Diagnosis, rec.Symptoms, rec.Prescription,
		rec.TreatmentPlan, rec.ExternalDocPointer,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListIDsForPatient(ctx context.Context, patientID string) ([]int64, error) {
	return r.listIDs(ctx, `SELECT id FROM medical_record WHERE patient_id = $1 ORDER BY id`, patientID)
}

func (r *repoPG) ListIDsForDoctor(ctx context.Context, doctorID string) ([]int64, error) {
	return r.listIDs(ctx, `SELECT id FROM medical_record WHERE doctor_id = $1 ORDER BY id`, doctorID)
}

func (r *repoPG) listIDs(ctx context.Context, query, arg string) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID string) ([]*Record, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+columns+` FROM medical_record WHERE patient_id = $1 ORDER BY id`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.Diagnosis, &rec.Symptoms,
			&rec.Prescription, &rec.TreatmentPlan, &rec.ExternalDocPointer,
			&rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}
	return result, rows.Err()
}

func (r *repoPG) CountByDoctorForPatient(ctx context.Context, doctorID, patientID string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_record WHERE doctor_id = $1 AND patient_id = $2`,
		doctorID, patientID,
	).Scan(&count)
	return count, err
}

func (r *repoPG) scan(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.Diagnosis, &rec.Symptoms,
		&rec.Prescription, &rec.TreatmentPlan, &rec.ExternalDocPointer,
		&rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
