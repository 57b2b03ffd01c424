package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/medcart/internal/apperr"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const cartCols = `id, status, patient_id, operation, operation_date, anaesthesia_type, room_number`
const itemCols = `id, cart_id, inventory_id, medication_id, amount, unit, time_sensitive, expiration_date`

func scanCart(row pgx.Row) (*Cart, error) {
	var c Cart
	err := row.Scan(&c.ID, &c.Status, &c.PatientID, &c.Operation, &c.OperationDate, &c.AnaesthesiaType, &c.RoomNumber)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.CartID, &it.InventoryID, &it.MedicationID, &it.Amount, &it.Unit, &it.TimeSensitive, &it.ExpirationDate)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) Create(ctx context.Context, c Cart) (*Cart, error) {
	if !c.Status.Valid() {
		return nil, apperr.Validation("invalid cart status: " + string(c.Status))
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO carts (status, patient_id, operation, operation_date, anaesthesia_type, room_number)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+cartCols+`
	`, c.Status, c.PatientID, c.Operation, c.OperationDate, c.AnaesthesiaType, c.RoomNumber)
	return scanCart(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Cart, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cartCols+` FROM carts WHERE id = $1`, id)
	c, err := scanCart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *Repo) List(ctx context.Context) ([]Cart, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cartCols+` FROM carts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cart
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// SetStatus переводит корзину в новый статус через CanTransitionTo.
func (r *Repo) SetStatus(ctx context.Context, id int64, newStatus Status) (*Cart, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, apperr.NotFound("Cart", id)
	}
	if !cur.Status.CanTransitionTo(newStatus) {
		return nil, apperr.Validation("cart status transition not allowed")
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE carts SET status = $2 WHERE id = $1
		RETURNING `+cartCols+`
	`, id, newStatus)
	return scanCart(row)
}

/* Items (только чтение; запись идёт через reservation в одной транзакции) */

func (r *Repo) ListItems(ctx context.Context) ([]Item, error) {
	return r.listItemsBy(ctx, `SELECT `+itemCols+` FROM cart_items ORDER BY id`)
}

func (r *Repo) ListItemsByCart(ctx context.Context, cartID int64) ([]Item, error) {
	return r.listItemsBy(ctx, `SELECT `+itemCols+` FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID)
}

// ListExpiringItems — позиции, у которых снимок срока годности попадает
// в ближайшие days дней.
func (r *Repo) ListExpiringItems(ctx context.Context, days int) ([]Item, error) {
	cutoff := time.Now().AddDate(0, 0, days)
	return r.listItemsBy(ctx, `
		SELECT `+itemCols+` FROM cart_items
		WHERE expiration_date IS NOT NULL AND expiration_date <= $1
		ORDER BY expiration_date
	`, cutoff)
}

func (r *Repo) listItemsBy(ctx context.Context, q string, args ...any) ([]Item, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}
