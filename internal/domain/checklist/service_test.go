package checklist

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
)

type fakeMeds map[string]medication.Medication // ключ — имя в нижнем регистре

func (f fakeMeds) GetByName(_ context.Context, name string) (*medication.Medication, error) {
	m, ok := f[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

type fakeBatches map[string][]inventory.Batch

func (f fakeBatches) ListByMedication(_ context.Context, id string) ([]inventory.Batch, error) {
	return f[id], nil
}

func date(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

func TestProcess(t *testing.T) {
	meds := fakeMeds{
		"fentanyl": {MedicationID: "opioid-001", Name: "Fentanyl"},
		"propofol": {MedicationID: "hypnotic-001", Name: "Propofol"},
	}
	batches := fakeBatches{
		"opioid-001": {
			{ID: 1, MedicationID: "opioid-001", Amount: 3, Unit: "ml", Location: "Shelf A", ExpirationDate: date(2027, 1, 1)},
		},
		"hypnotic-001": {
			{ID: 2, MedicationID: "hypnotic-001", Amount: 50, Unit: "ml", Location: "Shelf B", ExpirationDate: date(2027, 6, 1)},
		},
	}
	svc := NewService(meds, batches, nil)

	out, err := svc.Process(context.Background(), []Item{
		{Name: "Propofol", Amount: 20},
		{Name: "Fentanyl", Amount: 5},
		{Name: "Unobtainium", Amount: 2},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	// достаточно: checked, эхо требуемого количества
	assert.Equal(t, Item{
		Checked: true, Name: "Propofol", MedicationID: "hypnotic-001",
		Location: "Shelf B", Amount: 20,
	}, out[0])

	// дефицит: available - required = 3 - 5 = -2
	assert.Equal(t, Item{
		Checked: false, Name: "Fentanyl", MedicationID: "opioid-001",
		Location: "Shelf A", Amount: -2,
	}, out[1])

	// неизвестный медикамент: строка не валит запрос
	assert.Equal(t, Item{
		Checked: false, Name: "Unobtainium", Location: "Unknown", Amount: 2,
	}, out[2])
}

func TestProcessNoBatches(t *testing.T) {
	meds := fakeMeds{"fentanyl": {MedicationID: "opioid-001", Name: "Fentanyl"}}
	svc := NewService(meds, fakeBatches{}, nil)

	out, err := svc.Process(context.Background(), []Item{{Name: "Fentanyl", Amount: 5}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, Item{
		Checked: false, Name: "Fentanyl", MedicationID: "opioid-001",
		Location: "Unknown", Amount: 5,
	}, out[0])
}

func TestBatchPolicies(t *testing.T) {
	batches := []inventory.Batch{
		{ID: 1, ExpirationDate: date(2027, 6, 1)},
		{ID: 2, ExpirationDate: date(2026, 12, 1)},
		{ID: 3, ExpirationDate: date(2027, 1, 1)},
	}

	assert.Equal(t, int64(1), FirstBatch(batches).ID)
	assert.Equal(t, int64(2), EarliestExpiration(batches).ID)

	assert.Nil(t, FirstBatch(nil))
	assert.Nil(t, EarliestExpiration(nil))
}
