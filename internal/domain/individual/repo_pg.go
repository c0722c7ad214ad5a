package individual

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

const columns = `id, name, date_of_birth, blood_group, is_active, registered_at`

func (r *repoPG) Create(ctx context.Context, ind *Individual) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO individual (id, name, date_of_birth, blood_group, is_active)
		VALUES ($1, $2, $3, $4, true)`,
		ind.ID, ind.Name, ind.DateOfBirth, ind.BloodGroup,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Individual, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM individual WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id string) (*Individual, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns+` FROM individual WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE individual SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Individual, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM individual`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+columns+` FROM individual ORDER BY registered_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*Individual
	for rows.Next() {
		var i Individual
		if err := rows.Scan(&i.ID, &i.Name, &i.DateOfBirth, &i.BloodGroup, &i.IsActive, &i.RegisteredAt); err != nil {
			return nil, 0, err
		}
		result = append(result, &i)
	}
	return result, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Individual, error) {
	var i Individual
	err := row.Scan(&i.ID, &i.Name, &i.DateOfBirth, &i.BloodGroup, &i.IsActive, &i.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}
