package practitioner

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

const columns = `id, license_number, facility_id, name, specialization, is_active, registered_at`

func (r *repoPG) Create(ctx context.Context, p *Practitioner) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO practitioner (id, license_number, facility_id, name, specialization, is_active)
		VALUES ($1, $2, $3, $4, $5, true)`,
		p.ID, p.LicenseNumber, p.FacilityID, p.Name, p.Specialization,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Practitioner, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM practitioner WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id string) (*Practitioner, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM practitioner WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) UpdateProfile(ctx context.Context, id, name, specialization string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE practitioner SET name = $2, specialization = $3 WHERE id = $1`,
		id, name, specialization)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repoPG) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE practitioner SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByFacility(ctx context.Context, facilityID string, limit, offset int) ([]*Practitioner, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM practitioner WHERE facility_id = $1`, facilityID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+columns+` FROM practitioner WHERE facility_id = $1 ORDER BY registered_at LIMIT $2 OFFSET $3`,
		facilityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*Practitioner
	for rows.Next() {
		var p Practitioner
		if err := rows.Scan(&p.ID, &p.LicenseNumber, &p.FacilityID, &p.Name, &p.Specialization, &p.IsActive, &p.RegisteredAt); err != nil {
			return nil, 0, err
		}
		result = append(result, &p)
	}
	return result, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	err := row.Scan(&p.ID, &p.LicenseNumber, &p.FacilityID, &p.Name, &p.Specialization, &p.IsActive, &p.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
