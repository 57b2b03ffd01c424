package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/medcart/internal/apperr"
)

// Repo — именованные чек-листы (сохранённые шаблоны), JSONB-строки.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// normalizeName: "Standard OP" -> "standard-op"
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func (r *Repo) Create(ctx context.Context, name string, items []Item) ([]Item, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO checklists (name, items) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`, normalizeName(name), data)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.New(apperr.KindConflict, "Checklist already exists")
	}
	return items, nil
}

func (r *Repo) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM checklists ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, name string) ([]Item, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT items FROM checklists WHERE name = $1`, normalizeName(name),
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Checklist", name)
	}
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
