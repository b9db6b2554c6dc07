package workflow

// Status represents a task status in the approval lifecycle
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPending         Status = "pending"
	StatusInProgress      Status = "in_progress"
	StatusPendingApproval Status = "pending_approval"
	StatusCompleted       Status = "completed"
	StatusRejected        Status = "rejected"
	StatusCancelled       Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusDraft:           true,
	StatusPending:         true,
	StatusInProgress:      true,
	StatusPendingApproval: true,
	StatusCompleted:       true,
	StatusRejected:        true,
	StatusCancelled:       true,
}

var terminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusRejected:  true,
	StatusCancelled: true,
}

// IsTerminal returns true if the status is terminal (no further transitions allowed)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a known task status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
