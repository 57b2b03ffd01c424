package medication

type Medication struct {
	MedicationID     string `json:"medicationId"`
	Name             string `json:"name"`
	Formula          string `json:"formula"`
	Producer         string `json:"producer"`
	Dosage           string `json:"dosage"`
	BaseUnit         string `json:"baseUnit"`
	RestrictionLevel int    `json:"restrictionLevel"`
	StabilityHours   int    `json:"chemicalStabilityHours"`
}
