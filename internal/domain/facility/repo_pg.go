package facility

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

const columns = `id, name, registration_number, is_active, doctor_count, patient_count, registered_at`

func (r *repoPG) Create(ctx context.Context, f *Facility) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO facility (id, name, registration_number, is_active, doctor_count, patient_count)
		VALUES ($1, $2, $3, true, 0, 0)`,
		f.ID, f.Name, f.RegistrationNumber,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Facility, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM facility WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id string) (*Facility, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM facility WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE facility SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repoPG) AddDoctorCount(ctx context.Context, id string, delta int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE facility SET doctor_count = doctor_count + $2 WHERE id = $1`, id, delta)
	return err
}

func (r *repoPG) AddPatientCount(ctx context.Context, id string, delta int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE facility SET patient_count = patient_count + $2 WHERE id = $1`, id, delta)
	return err
}

func (r *repoPG) ObservePatient(ctx context.Context, facilityID, patientID string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO facility_patient (facility_id, patient_id)
		VALUES ($1, $2)
		ON CONFLICT (facility_id, patient_id) DO NOTHING`,
		facilityID, patientID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) ListObservedPatients(ctx context.Context, facilityID string, limit, offset int) ([]*ObservedPatient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM facility_patient WHERE facility_id = $1`, facilityID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT facility_id, patient_id, first_seen_at
		FROM facility_patient WHERE facility_id = $1
		ORDER BY first_seen_at LIMIT $2 OFFSET $3`,
		facilityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*ObservedPatient
	for rows.Next() {
		var o ObservedPatient
		if err := rows.Scan(&o.FacilityID, &o.PatientID, &o.FirstSeenAt); err != nil {
			return nil, 0, err
		}
		result = append(result, &o)
	}
	return result, total, rows.Err()
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM facility`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+columns+` FROM facility ORDER BY registered_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.RegistrationNumber, &f.IsActive, &f.DoctorCount, &f.PatientCount, &f.RegisteredAt); err != nil {
			return nil, 0, err
		}
		result = append(result, &f)
	}
	return result, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Facility, error) {
	var f Facility
	err := row.Scan(&f.ID, &f.Name, &f.RegistrationNumber, &f.IsActive, &f.DoctorCount, &f.PatientCount, &f.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
