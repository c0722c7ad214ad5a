package roles

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

// querier abstracts pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) Grant(ctx context.Context, a *Assignment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO role_assignment (principal, role, granted_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal, role) DO NOTHING`,
		a.Principal, string(a.Role), a.GrantedBy,
	)
	return err
}

func (r *repoPG) Revoke(ctx context.Context, principal string, role Role) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM role_assignment WHERE principal = $1 AND role = $2`,
		principal, string(role),
	)
	return err
}

func (r *repoPG) Has(ctx context.Context, principal string, role Role) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM role_assignment WHERE principal = $1 AND role = $2)`,
		principal, string(role),
	).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListForPrincipal(ctx context.Context, principal string) ([]Role, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT role FROM role_assignment WHERE principal = $1 ORDER BY role`, principal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		result = append(result, Role(role))
	}
	return result, rows.Err()
}
