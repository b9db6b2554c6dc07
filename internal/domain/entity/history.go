package entity

import "time"

// ApprovalHistoryEntry is one record in a task's append-only approval log.
// Entries are inserted on every transition and never edited afterwards.
type ApprovalHistoryEntry struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	Stage     int       `json:"stage"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
