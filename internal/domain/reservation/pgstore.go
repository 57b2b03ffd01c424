package reservation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/medcart/internal/domain/cart"
	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
)

// PgStore — транзакционное хранилище координатора поверх pgx.
// Партии читаются SELECT ... FOR UPDATE, поэтому конкурентные резервы
// одной партии сериализуются на уровне строки.
type PgStore struct{ pool *pgxpool.Pool }

func NewPgStore(pool *pgxpool.Pool) *PgStore { return &PgStore{pool: pool} }

func (s *PgStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = pgtx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: pgtx}); err != nil {
		return err
	}
	return pgtx.Commit(ctx)
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) CartExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (t *pgTx) Medication(ctx context.Context, id string) (*medication.Medication, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT medication_id, name, formula, producer, dosage, base_unit, restriction_level, stability_hours
		FROM medications WHERE medication_id = $1
	`, id)
	var m medication.Medication
	err := row.Scan(&m.MedicationID, &m.Name, &m.Formula, &m.Producer, &m.Dosage, &m.BaseUnit, &m.RestrictionLevel, &m.StabilityHours)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *pgTx) BatchForUpdate(ctx context.Context, id int64) (*inventory.Batch, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, medication_id, batch_number, amount, unit, location, expiration_date, min_stock
		FROM inventory WHERE id = $1
		FOR UPDATE
	`, id)
	var b inventory.Batch
	err := row.Scan(&b.ID, &b.MedicationID, &b.BatchNumber, &b.Amount, &b.Unit, &b.Location, &b.ExpirationDate, &b.MinStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *pgTx) AdjustBatch(ctx context.Context, id int64, delta float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE inventory SET amount = amount + $2 WHERE id = $1`, id, delta)
	return err
}

func (t *pgTx) InsertItem(ctx context.Context, it *cart.Item) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, inventory_id, medication_id, amount, unit, time_sensitive, expiration_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, it.CartID, it.InventoryID, it.MedicationID, it.Amount, it.Unit, it.TimeSensitive, it.ExpirationDate).Scan(&it.ID)
}

func (t *pgTx) ItemForUpdate(ctx context.Context, id int64) (*cart.Item, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, cart_id, inventory_id, medication_id, amount, unit, time_sensitive, expiration_date
		FROM cart_items WHERE id = $1
		FOR UPDATE
	`, id)
	var it cart.Item
	err := row.Scan(&it.ID, &it.CartID, &it.InventoryID, &it.MedicationID, &it.Amount, &it.Unit, &it.TimeSensitive, &it.ExpirationDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (t *pgTx) DeleteItem(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	return err
}

func (t *pgTx) ItemsByCart(ctx context.Context, cartID int64) ([]cart.Item, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, cart_id, inventory_id, medication_id, amount, unit, time_sensitive, expiration_date
		FROM cart_items WHERE cart_id = $1
		ORDER BY id
		FOR UPDATE
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cart.Item
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.InventoryID, &it.MedicationID, &it.Amount, &it.Unit, &it.TimeSensitive, &it.ExpirationDate); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (t *pgTx) DeleteCart(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	return err
}
