package entity

import "time"

// Task is the mutable entity driven through the approval workflow.
// It is created either by a user action or by a recurring generator job,
// and reaches a terminal status (completed, rejected, cancelled) without
// ever being deleted by this core.
type Task struct {
	ID         string `json:"id"`
	TaskNumber string `json:"task_number"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Status          string `json:"status"`
	ApprovalStatus  string `json:"approval_status"`
	CurrentStage    int    `json:"current_approval_stage"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	Category string `json:"task_category"`
	BatchID  string `json:"batch_id,omitempty"`

	Assignee  string `json:"assignee,omitempty"`
	CreatedBy string `json:"created_by"`

	// NameKey and PeriodKey form the generator dedup key together with
	// BatchID. Empty for user-created tasks.
	NameKey   string `json:"-"`
	PeriodKey string `json:"-"`

	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	ChecklistItems []*ChecklistItem `json:"checklist_items,omitempty"`
}

// ChecklistItem is an ordered sub-item of a task with a completion flag
// and an optional free-form response value.
type ChecklistItem struct {
	ID            string    `json:"id"`
	TaskID        string    `json:"task_id"`
	Position      int       `json:"position"`
	Label         string    `json:"label"`
	Completed     bool      `json:"completed"`
	ResponseValue string    `json:"response_value,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Progress is the derived completion progress of a task's checklist.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// ChecklistProgress derives completion progress from the loaded items.
func (t *Task) ChecklistProgress() Progress {
	p := Progress{Total: len(t.ChecklistItems)}
	for _, item := range t.ChecklistItems {
		if item.Completed {
			p.Completed++
		}
	}
	return p
}

// IsTerminal reports whether the task status admits no further transitions.
func (t *Task) IsTerminal() bool {
	switch t.Status {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
