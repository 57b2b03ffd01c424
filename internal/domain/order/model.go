package order

import "time"

type Line struct {
	MedicationID string  `json:"medicationId"`
	Amount       float64 `json:"amount"`
}

type Order struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Medications []Line    `json:"medications"`
	IsInternal  bool      `json:"isInternal"`
	IsRush      bool      `json:"isRush"`
}
