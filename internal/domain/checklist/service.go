package checklist

import (
	"context"

	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/medication"
)

type MedicationLookup interface {
	GetByName(ctx context.Context, name string) (*medication.Medication, error)
}

type BatchLookup interface {
	ListByMedication(ctx context.Context, medicationID string) ([]inventory.Batch, error)
}

// BatchPolicy выбирает партию, по которой оценивается доступность.
// Какую партию брать при нескольких — открытый продуктовый вопрос, поэтому
// политика именованная и подменяемая.
type BatchPolicy func(batches []inventory.Batch) *inventory.Batch

// FirstBatch повторяет исторически наблюдаемое поведение: первая попавшаяся.
func FirstBatch(batches []inventory.Batch) *inventory.Batch {
	if len(batches) == 0 {
		return nil
	}
	return &batches[0]
}

// EarliestExpiration — кандидат на будущую политику по умолчанию.
func EarliestExpiration(batches []inventory.Batch) *inventory.Batch {
	if len(batches) == 0 {
		return nil
	}
	best := &batches[0]
	for i := range batches[1:] {
		b := &batches[i+1]
		if b.ExpirationDate.Before(best.ExpirationDate) {
			best = b
		}
	}
	return best
}

type Service struct {
	meds    MedicationLookup
	batches BatchLookup
	policy  BatchPolicy
}

func NewService(meds MedicationLookup, batches BatchLookup, policy BatchPolicy) *Service {
	if policy == nil {
		policy = FirstBatch
	}
	return &Service{meds: meds, batches: batches, policy: policy}
}

// Process оценивает каждую строку независимо; ошибок доменного уровня нет —
// ненайденное выражается в самой строке результата.
func (s *Service) Process(ctx context.Context, items []Item) ([]Item, error) {
	out := make([]Item, 0, len(items))

	for _, in := range items {
		required := in.Amount

		med, err := s.meds.GetByName(ctx, in.Name)
		if err != nil {
			return nil, err
		}
		if med == nil {
			out = append(out, Item{
				Checked:  false,
				Name:     in.Name,
				Location: locationUnknown,
				Amount:   required,
			})
			continue
		}

		batches, err := s.batches.ListByMedication(ctx, med.MedicationID)
		if err != nil {
			return nil, err
		}
		batch := s.policy(batches)
		if batch == nil {
			out = append(out, Item{
				Checked:      false,
				Name:         in.Name,
				MedicationID: med.MedicationID,
				Location:     locationUnknown,
				Amount:       required,
			})
			continue
		}

		if batch.Amount >= required {
			out = append(out, Item{
				Checked:      true,
				Name:         in.Name,
				MedicationID: med.MedicationID,
				Location:     batch.Location,
				Amount:       required,
			})
			continue
		}

		// дефицит отдаётся отрицательным числом
		out = append(out, Item{
			Checked:      false,
			Name:         in.Name,
			MedicationID: med.MedicationID,
			Location:     batch.Location,
			Amount:       batch.Amount - required,
		})
	}

	return out, nil
}
