package reservation

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/medcart/internal/apperr"
	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
)

var testExp = time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	store.addCart(1)
	store.addMedication(medication.Medication{MedicationID: "opioid-001", Name: "Fentanyl"})
	store.addBatch(inventory.Batch{
		ID:             10,
		MedicationID:   "opioid-001",
		BatchNumber:    "B-100",
		Amount:         5,
		Unit:           "ml",
		Location:       "Shelf A",
		ExpirationDate: testExp,
	})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, log), store
}

func TestReserveDecrementsBatchAndSnapshotsItem(t *testing.T) {
	svc, store := newTestService()

	it, err := svc.Reserve(context.Background(), Request{
		CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 3, TimeSensitive: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, store.batchAmount(10))
	assert.Equal(t, int64(1), it.CartID)
	assert.Equal(t, 3.0, it.Amount)
	assert.Equal(t, "ml", it.Unit)
	assert.True(t, it.TimeSensitive)
	require.NotNil(t, it.ExpirationDate)
	assert.Equal(t, testExp, *it.ExpirationDate)
}

func TestReserveInsufficientStock(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.Reserve(context.Background(), Request{
		CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 6,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	assert.Contains(t, err.Error(), "Not enough inventory for Fentanyl")

	// ничего не изменилось
	assert.Equal(t, 5.0, store.batchAmount(10))
	assert.Empty(t, store.items)
}

func TestReserveMissingReferences(t *testing.T) {
	cases := []struct {
		name string
		req  Request
	}{
		{"cart", Request{CartID: 99, InventoryID: 10, MedicationID: "opioid-001", Amount: 1}},
		{"medication", Request{CartID: 1, InventoryID: 10, MedicationID: "nope", Amount: 1}},
		{"batch", Request{CartID: 1, InventoryID: 99, MedicationID: "opioid-001", Amount: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService()
			_, err := svc.Reserve(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindNotFound))
			assert.Equal(t, 5.0, store.batchAmount(10))
		})
	}
}

func TestReserveBulkPartialFulfillment(t *testing.T) {
	svc, store := newTestService()

	// вторая заявка проверяется по проецируемому остатку (5-3=2) и выпадает
	items, err := svc.ReserveBulk(context.Background(), []Request{
		{CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 3},
		{CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 4},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3.0, items[0].Amount)
	assert.Equal(t, 2.0, store.batchAmount(10))
}

func TestReserveBulkMissingReferenceAbortsAll(t *testing.T) {
	svc, store := newTestService()

	items, err := svc.ReserveBulk(context.Background(), []Request{
		{CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 1},
		{CartID: 1, InventoryID: 10, MedicationID: "nope", Amount: 1},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Nil(t, items)
	assert.Equal(t, 5.0, store.batchAmount(10))
	assert.Empty(t, store.items)
}

func TestReserveBulkAllDropped(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.ReserveBulk(context.Background(), []Request{
		{CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 6},
		{CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 7},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	assert.Equal(t, 5.0, store.batchAmount(10))
}

func TestReserveBulkEmpty(t *testing.T) {
	svc, _ := newTestService()
	items, err := svc.ReserveBulk(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestReleaseRestoresExactAmountOnce(t *testing.T) {
	svc, store := newTestService()

	it, err := svc.Reserve(context.Background(), Request{
		CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 2.0, store.batchAmount(10))

	require.NoError(t, svc.Release(context.Background(), it.ID))
	assert.Equal(t, 5.0, store.batchAmount(10))
	assert.Empty(t, store.items)

	// не идемпотентен: повторный вызов падает и не кредитует второй раз
	err = svc.Release(context.Background(), it.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, 5.0, store.batchAmount(10))
}

func TestReleaseToleratesDeletedBatch(t *testing.T) {
	svc, store := newTestService()

	it, err := svc.Reserve(context.Background(), Request{
		CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: 2,
	})
	require.NoError(t, err)

	delete(store.batchs, 10)

	require.NoError(t, svc.Release(context.Background(), it.ID))
	assert.Empty(t, store.items)
}

func TestDeleteCartReleasesAllItems(t *testing.T) {
	svc, store := newTestService()

	for _, amt := range []float64{2, 1} {
		_, err := svc.Reserve(context.Background(), Request{
			CartID: 1, InventoryID: 10, MedicationID: "opioid-001", Amount: amt,
		})
		require.NoError(t, err)
	}
	require.Equal(t, 2.0, store.batchAmount(10))

	require.NoError(t, svc.DeleteCart(context.Background(), 1))
	assert.Equal(t, 5.0, store.batchAmount(10))
	assert.Empty(t, store.items)
	assert.Empty(t, store.carts)
}

func TestDeleteCartNotFound(t *testing.T) {
	svc, _ := newTestService()
	err := svc.DeleteCart(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestReserveConcurrentNoOverdraw(t *testing.T) {
	svc, store := newTestService()
	store.addBatch(inventory.Batch{
		ID: 20, MedicationID: "opioid-001", Amount: 100, Unit: "ml", ExpirationDate: testExp,
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), Request{
				CartID: 1, InventoryID: 20, MedicationID: "opioid-001", Amount: 10,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0.0, store.batchAmount(20))

	_, err := svc.Reserve(context.Background(), Request{
		CartID: 1, InventoryID: 20, MedicationID: "opioid-001", Amount: 1,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
}
