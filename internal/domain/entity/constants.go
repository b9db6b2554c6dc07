package entity

// Status constants for Task
const (
	StatusDraft           = "draft"
	StatusPending         = "pending"
	StatusInProgress      = "in_progress"
	StatusPendingApproval = "pending_approval"
	StatusCompleted       = "completed"
	StatusRejected        = "rejected"
	StatusCancelled       = "cancelled"
)

// Approval status constants for Task
const (
	ApprovalNone     = "none"
	ApprovalPending  = "pending_approval"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// History action constants
const (
	ActionSubmitted = "submitted"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionCompleted = "completed"
	ActionCancelled = "cancelled"
)

// Role constants. Admin roles may act at any approval stage.
const (
	RoleGrower          = "grower"
	RoleAssistantGrower = "assistant_grower"
	RoleManager         = "manager"
	RoleQA              = "qa"
	RoleITAdmin         = "it_admin"
	RoleBusinessAdmin   = "business_admin"
)

// Batch status and stage constants (read-only collaborator data)
const (
	BatchStatusActive     = "active"
	BatchStatusInProgress = "in_progress"
	BatchStatusClosed     = "closed"

	BatchStageCloning    = "cloning"
	BatchStageVegetative = "vegetative"
	BatchStageFlowering  = "flowering"
	BatchStageHarvest    = "harvest"
)
