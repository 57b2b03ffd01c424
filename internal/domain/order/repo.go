package order

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/medcart/internal/apperr"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const cols = `id, name, date, medications, is_internal, is_rush`

func scan(row pgx.Row) (*Order, error) {
	var o Order
	var meds []byte
	if err := row.Scan(&o.ID, &o.Name, &o.Date, &meds, &o.IsInternal, &o.IsRush); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(meds, &o.Medications); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) Create(ctx context.Context, o Order) (*Order, error) {
	meds, err := json.Marshal(o.Medications)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO orders (name, date, medications, is_internal, is_rush)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+cols+`
	`, o.Name, o.Date, meds, o.IsInternal, o.IsRush)
	return scan(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cols+` FROM orders WHERE id = $1`, id)
	o, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cols+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Order", id)
	}
	return nil
}
