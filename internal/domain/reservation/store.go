package reservation

import (
	"context"

	"github.com/Spok95/medcart/internal/domain/cart"
	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
)

// Request — заявка на резервирование одной позиции.
type Request struct {
	CartID        int64   `json:"cart_id"`
	InventoryID   int64   `json:"inventory_id"`
	MedicationID  string  `json:"medication_id"`
	Amount        float64 `json:"amount"`
	TimeSensitive bool    `json:"time_sensitive"`
}

// Tx — операции, доступные внутри одной транзакции резервирования.
// Чтение партии идёт с блокировкой строки, чтобы две конкурентные заявки
// не прошли проверку остатка по устаревшему значению.
type Tx interface {
	CartExists(ctx context.Context, id int64) (bool, error)
	Medication(ctx context.Context, id string) (*medication.Medication, error)
	BatchForUpdate(ctx context.Context, id int64) (*inventory.Batch, error)
	AdjustBatch(ctx context.Context, id int64, delta float64) error
	InsertItem(ctx context.Context, it *cart.Item) error
	ItemForUpdate(ctx context.Context, id int64) (*cart.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	ItemsByCart(ctx context.Context, cartID int64) ([]cart.Item, error)
	DeleteCart(ctx context.Context, id int64) error
}

// Store выполняет fn в одной транзакции: ошибка — откат, nil — коммит.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
