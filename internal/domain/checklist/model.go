package checklist

// Item — строка чек-листа. На входе amount = требуемое количество; на выходе
// amount либо эхо запроса (checked или медикамент/партия не найдены), либо
// отрицательный дефицит available - required. Контракт со знаком — внешний,
// менять нельзя.
type Item struct {
	Checked      bool    `json:"checked"`
	Name         string  `json:"name"`
	MedicationID string  `json:"medication_id,omitempty"`
	Location     string  `json:"location"`
	Amount       float64 `json:"amount"`
}

const locationUnknown = "Unknown"
