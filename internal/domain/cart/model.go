package cart

import "time"

type Status string

const (
	StatusPrepared Status = "Prepared"
	StatusInUse    Status = "In-Use"
	StatusClosed   Status = "Closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPrepared, StatusInUse, StatusClosed:
		return true
	}
	return false
}

// CanTransitionTo — единая точка проверки перехода статуса.
// Сейчас любой переход разрешён (в т.ч. из Closed обратно); если появится
// таблица переходов, менять нужно только здесь.
func (s Status) CanTransitionTo(target Status) bool {
	return target.Valid()
}

type Cart struct {
	ID              int64     `json:"id"`
	Status          Status    `json:"status"`
	PatientID       string    `json:"patientId"`
	Operation       string    `json:"operation"`
	OperationDate   time.Time `json:"operationDate"`
	AnaesthesiaType string    `json:"anaesthesiaType"`
	RoomNumber      string    `json:"roomNumber"`
}

// Item — зарезервированная позиция корзины. Unit и ExpirationDate —
// снимок партии на момент резервирования: последующие правки партии
// уже созданных позиций не меняют.
type Item struct {
	ID             int64      `json:"id"`
	CartID         int64      `json:"cart_id"`
	InventoryID    int64      `json:"inventory_id"`
	MedicationID   string     `json:"medication_id"`
	Amount         float64    `json:"amount"`
	Unit           string     `json:"unit"`
	TimeSensitive  bool       `json:"time_sensitive"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}
