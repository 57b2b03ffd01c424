package inventory

import "time"

// Batch — партия медикамента на складе. Остаток amount не может уйти в минус
// (это же дублирует CHECK в схеме).
type Batch struct {
	ID             int64     `json:"id"`
	MedicationID   string    `json:"medicationId"`
	BatchNumber    string    `json:"batchNumber"`
	Amount         float64   `json:"amount"`
	Unit           string    `json:"unit"`
	Location       string    `json:"location"`
	ExpirationDate time.Time `json:"expirationDate"`
	MinStock       float64   `json:"min_stock"`
}
