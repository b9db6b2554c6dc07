package entity

import "time"

// BatchLifecycleRecord is the collaborator-owned batch row the recurring
// generators read to decide eligibility. This core never writes it.
type BatchLifecycleRecord struct {
	ID           string    `json:"id"`
	BatchNumber  string    `json:"batch_number"`
	CreatedBy    string    `json:"created_by"`
	CurrentStage string    `json:"current_stage"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
