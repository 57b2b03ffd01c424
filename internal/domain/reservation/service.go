package reservation

import (
	"context"
	"log/slog"

	"github.com/Spok95/medcart/internal/apperr"
	"github.com/Spok95/medcart/internal/domain/cart"
	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/infra/metrics"
)

// Service — координатор резервирования: каждая операция выполняется как одна
// транзакция "проверка → декремент/кредит → запись позиции".
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

func newItem(req Request, b *inventory.Batch) *cart.Item {
	exp := b.ExpirationDate
	return &cart.Item{
		CartID:        req.CartID,
		InventoryID:   req.InventoryID,
		MedicationID:  req.MedicationID,
		Amount:        req.Amount,
		Unit:          b.Unit, // снимок на момент резервирования
		TimeSensitive: req.TimeSensitive,
		// снимок срока годности партии: её последующие правки позицию не трогают
		ExpirationDate: &exp,
	}
}

// Reserve создаёт позицию корзины, атомарно списывая остаток партии.
func (s *Service) Reserve(ctx context.Context, req Request) (*cart.Item, error) {
	var created *cart.Item
	err := s.store.WithTx(ctx, func(tx Tx) error {
		ok, err := tx.CartExists(ctx, req.CartID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Cart", req.CartID)
		}

		med, err := tx.Medication(ctx, req.MedicationID)
		if err != nil {
			return err
		}
		if med == nil {
			return apperr.NotFound("Medication", req.MedicationID)
		}

		batch, err := tx.BatchForUpdate(ctx, req.InventoryID)
		if err != nil {
			return err
		}
		if batch == nil {
			return apperr.NotFound("Inventory item", req.InventoryID)
		}

		if batch.Amount < req.Amount {
			return apperr.InsufficientStock(med.Name, batch.Amount, batch.Unit)
		}

		if err := tx.AdjustBatch(ctx, batch.ID, -req.Amount); err != nil {
			return err
		}

		it := newItem(req, batch)
		if err := tx.InsertItem(ctx, it); err != nil {
			return err
		}
		created = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Reservations.Inc()
	return created, nil
}

// ReserveBulk применяет список заявок с асимметричной политикой:
// отсутствующая ссылка (корзина/медикамент/партия) валит весь вызов,
// нехватка остатка лишь молча выкидывает заявку. Проверка достаточности
// идёт в порядке входа по проецируемому остатку, так что две заявки на одну
// партию конкурируют за него. Если выжила хотя бы одна — все выжившие
// коммитятся вместе.
func (s *Service) ReserveBulk(ctx context.Context, reqs []Request) ([]cart.Item, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	var created []cart.Item
	err := s.store.WithTx(ctx, func(tx Tx) error {
		// 1) ссылочная целостность для всего набора, до каких-либо изменений
		carts := map[int64]bool{}
		for _, r := range reqs {
			if carts[r.CartID] {
				continue
			}
			ok, err := tx.CartExists(ctx, r.CartID)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.NotFound("Cart", r.CartID)
			}
			carts[r.CartID] = true
		}

		meds := map[string]string{} // id -> name
		for _, r := range reqs {
			if _, ok := meds[r.MedicationID]; ok {
				continue
			}
			med, err := tx.Medication(ctx, r.MedicationID)
			if err != nil {
				return err
			}
			if med == nil {
				return apperr.NotFound("Medication", r.MedicationID)
			}
			meds[r.MedicationID] = med.Name
		}

		batches := map[int64]*inventory.Batch{}
		for _, r := range reqs {
			if _, ok := batches[r.InventoryID]; ok {
				continue
			}
			b, err := tx.BatchForUpdate(ctx, r.InventoryID)
			if err != nil {
				return err
			}
			if b == nil {
				return apperr.NotFound("Inventory item", r.InventoryID)
			}
			batches[r.InventoryID] = b
		}

		// 2) достаточность по каждой заявке в порядке входа;
		// недостаточные выкидываем, остальные уменьшают проекцию остатка
		projected := map[int64]float64{}
		for id, b := range batches {
			projected[id] = b.Amount
		}

		var surviving []Request
		for _, r := range reqs {
			if projected[r.InventoryID] >= r.Amount {
				projected[r.InventoryID] -= r.Amount
				surviving = append(surviving, r)
				continue
			}
			b := batches[r.InventoryID]
			s.log.Warn("skipping bulk request, insufficient inventory",
				"medication", meds[r.MedicationID],
				"available", projected[r.InventoryID],
				"unit", b.Unit,
				"requested", r.Amount,
			)
		}

		if len(surviving) == 0 {
			return apperr.New(apperr.KindInsufficientStock,
				"No medications can be added due to insufficient inventory for all requested items")
		}

		// 3) применяем выживших, коммит общий
		for _, r := range surviving {
			b := batches[r.InventoryID]
			if err := tx.AdjustBatch(ctx, b.ID, -r.Amount); err != nil {
				return err
			}
			it := newItem(r, b)
			if err := tx.InsertItem(ctx, it); err != nil {
				return err
			}
			created = append(created, *it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Reservations.Add(float64(len(created)))
	return created, nil
}

// Release возвращает остаток партии и удаляет позицию. Не идемпотентен:
// повторный вызов по тому же id падает NotFound и ничего не кредитует.
// Если партию уже удалили из справочника, позиция всё равно снимается.
func (s *Service) Release(ctx context.Context, itemID int64) error {
	err := s.store.WithTx(ctx, func(tx Tx) error {
		it, err := tx.ItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if it == nil {
			return apperr.NotFound("Cart item", itemID)
		}
		return s.releaseLocked(ctx, tx, it)
	})
	if err != nil {
		return err
	}
	metrics.Releases.Inc()
	return nil
}

func (s *Service) releaseLocked(ctx context.Context, tx Tx, it *cart.Item) error {
	batch, err := tx.BatchForUpdate(ctx, it.InventoryID)
	if err != nil {
		return err
	}
	if batch != nil {
		// кредитуем ровно сохранённую величину, без перерасчёта
		if err := tx.AdjustBatch(ctx, batch.ID, it.Amount); err != nil {
			return err
		}
	}
	return tx.DeleteItem(ctx, it.ID)
}

// DeleteCart снимает все позиции корзины (возвращая остатки) и удаляет
// саму корзину; всё в одной транзакции — либо целиком, либо никак.
func (s *Service) DeleteCart(ctx context.Context, cartID int64) error {
	released := 0
	err := s.store.WithTx(ctx, func(tx Tx) error {
		ok, err := tx.CartExists(ctx, cartID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Cart", cartID)
		}

		items, err := tx.ItemsByCart(ctx, cartID)
		if err != nil {
			return err
		}
		for i := range items {
			if err := s.releaseLocked(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		released = len(items)
		return tx.DeleteCart(ctx, cartID)
	})
	if err != nil {
		return err
	}
	metrics.Releases.Add(float64(released))
	return nil
}
