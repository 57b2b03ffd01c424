package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/medcart/internal/apperr"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const cols = `id, medication_id, batch_number, amount, unit, location, expiration_date, min_stock`

func scan(row pgx.Row) (*Batch, error) {
	var b Batch
	err := row.Scan(
		&b.ID,
		&b.MedicationID,
		&b.BatchNumber,
		&b.Amount,
		&b.Unit,
		&b.Location,
		&b.ExpirationDate,
		&b.MinStock,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) Create(ctx context.Context, b Batch) (*Batch, error) {
	// партия без существующего медикамента не имеет смысла
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM medications WHERE medication_id = $1)`, b.MedicationID,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Medication", b.MedicationID)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO inventory (medication_id, batch_number, amount, unit, location, expiration_date, min_stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+cols+`
	`, b.MedicationID, b.BatchNumber, b.Amount, b.Unit, b.Location, b.ExpirationDate, b.MinStock)
	return scan(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Batch, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cols+` FROM inventory WHERE id = $1`, id)
	b, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *Repo) List(ctx context.Context) ([]Batch, error) {
	return r.listBy(ctx, `SELECT `+cols+` FROM inventory ORDER BY id`)
}

// ListByMedication — все партии медикамента в порядке вставки.
// Выбор "какой партии хватит" остаётся за вызывающим.
func (r *Repo) ListByMedication(ctx context.Context, medicationID string) ([]Batch, error) {
	return r.listBy(ctx, `SELECT `+cols+` FROM inventory WHERE medication_id = $1 ORDER BY id`, medicationID)
}

func (r *Repo) listBy(ctx context.Context, q string, args ...any) ([]Batch, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// SetAmount выставляет абсолютный остаток (PATCH из API и топик update-stock).
func (r *Repo) SetAmount(ctx context.Context, id int64, newAmount float64) (*Batch, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE inventory SET amount = $2 WHERE id = $1
		RETURNING `+cols+`
	`, id, newAmount)
	b, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Inventory item", id)
	}
	return b, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Inventory item", id)
	}
	return nil
}

func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
