package reservation

import (
	"context"
	"sync"

	"github.com/Spok95/medcart/internal/domain/cart"
	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
)

// memStore — хранилище в памяти с той же транзакционной семантикой, что у
// pgx-версии: одна транзакция за раз, ошибка fn откатывает все изменения.
type memStore struct {
	mu sync.Mutex

	carts  map[int64]bool
	meds   map[string]medication.Medication
	batchs map[int64]inventory.Batch
	items  map[int64]cart.Item
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		carts:  map[int64]bool{},
		meds:   map[string]medication.Medication{},
		batchs: map[int64]inventory.Batch{},
		items:  map[int64]cart.Item{},
	}
}

func (s *memStore) addCart(id int64) { s.carts[id] = true }

func (s *memStore) addMedication(m medication.Medication) { s.meds[m.MedicationID] = m }

func (s *memStore) addBatch(b inventory.Batch) { s.batchs[b.ID] = b }

func (s *memStore) batchAmount(id int64) float64 { return s.batchs[id].Amount }

func (s *memStore) snapshot() (map[int64]bool, map[int64]inventory.Batch, map[int64]cart.Item, int64) {
	carts := make(map[int64]bool, len(s.carts))
	for k, v := range s.carts {
		carts[k] = v
	}
	batchs := make(map[int64]inventory.Batch, len(s.batchs))
	for k, v := range s.batchs {
		batchs[k] = v
	}
	items := make(map[int64]cart.Item, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	return carts, batchs, items, s.nextID
}

func (s *memStore) WithTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, batchs, items, nextID := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.carts, s.batchs, s.items, s.nextID = carts, batchs, items, nextID
		return err
	}
	return nil
}

type memTx struct{ s *memStore }

func (t *memTx) CartExists(_ context.Context, id int64) (bool, error) {
	return t.s.carts[id], nil
}

func (t *memTx) Medication(_ context.Context, id string) (*medication.Medication, error) {
	m, ok := t.s.meds[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (t *memTx) BatchForUpdate(_ context.Context, id int64) (*inventory.Batch, error) {
	b, ok := t.s.batchs[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (t *memTx) AdjustBatch(_ context.Context, id int64, delta float64) error {
	b := t.s.batchs[id]
	b.Amount += delta
	t.s.batchs[id] = b
	return nil
}

func (t *memTx) InsertItem(_ context.Context, it *cart.Item) error {
	t.s.nextID++
	it.ID = t.s.nextID
	t.s.items[it.ID] = *it
	return nil
}

func (t *memTx) ItemForUpdate(_ context.Context, id int64) (*cart.Item, error) {
	it, ok := t.s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (t *memTx) DeleteItem(_ context.Context, id int64) error {
	delete(t.s.items, id)
	return nil
}

func (t *memTx) ItemsByCart(_ context.Context, cartID int64) ([]cart.Item, error) {
	var out []cart.Item
	for id := int64(1); id <= t.s.nextID; id++ {
		if it, ok := t.s.items[id]; ok && it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (t *memTx) DeleteCart(_ context.Context, id int64) error {
	delete(t.s.carts, id)
	return nil
}
