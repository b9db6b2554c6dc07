package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	domain "github.com/jvanrooyen/cultivation-tasks/internal/domain/workflow"
	"github.com/jvanrooyen/cultivation-tasks/internal/generator"
	"github.com/jvanrooyen/cultivation-tasks/internal/repository"
	"github.com/jvanrooyen/cultivation-tasks/internal/workflow"
	"go.uber.org/zap"
)

// Handler serves the task and job-trigger API
type Handler struct {
	engine *workflow.Engine
	runner *generator.Runner
	jobs   map[string]generator.Job
	logger *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(engine *workflow.Engine, runner *generator.Runner, logger *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		runner: runner,
		jobs:   generator.Jobs(),
		logger: logger,
	}
}

// Register mounts all routes on the router
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/jobs/:job/run", h.RunJob)

		api.POST("/tasks", h.CreateTask)
		api.GET("/tasks/:id", h.GetTask)
		api.POST("/tasks/:id/submit", h.SubmitTask)
		api.POST("/tasks/:id/approve", h.ApproveTask)
		api.POST("/tasks/:id/reject", h.RejectTask)
		api.POST("/tasks/:id/cancel", h.CancelTask)
		api.PATCH("/tasks/:id/checklist/:item", h.SetChecklistItem)
	}
}

// Health reports service liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cultivation-tasks",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// RunJob triggers one generator invocation. The response shape is the
// scheduler contract: callers treat any non-200 as "run may be partially
// applied, safe to retry".
func (h *Handler) RunJob(c *gin.Context) {
	name := c.Param("job")
	job, ok := h.jobs[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   fmt.Sprintf("unknown job: %s", name),
		})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), job)
	if err != nil {
		h.logger.Error("Job run failed", zap.String("job", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"batchesProcessed": result.BatchesProcessed,
		"tasksCreated":     result.TasksCreated,
		"tasksSkipped":     result.TasksSkipped,
		"message": fmt.Sprintf("processed %d batches, created %d tasks, skipped %d",
			result.BatchesProcessed, result.TasksCreated, result.TasksSkipped),
	})
}

type createTaskRequest struct {
	Name            string     `json:"name" binding:"required"`
	Description     string     `json:"description"`
	Category        string     `json:"task_category" binding:"required"`
	BatchID         string     `json:"batch_id"`
	Assignee        string     `json:"assignee"`
	CreatedBy       string     `json:"created_by" binding:"required"`
	DueDate         *time.Time `json:"due_date"`
	ChecklistLabels []string   `json:"checklist_items"`
}

// CreateTask creates a user-initiated task in draft status
func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.engine.CreateTask(c.Request.Context(), workflow.CreateTaskInput{
		Name:            req.Name,
		Description:     req.Description,
		Category:        domain.Category(req.Category),
		BatchID:         req.BatchID,
		Assignee:        req.Assignee,
		CreatedBy:       req.CreatedBy,
		DueDate:         req.DueDate,
		ChecklistLabels: req.ChecklistLabels,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, taskResponse(task, nil))
}

// GetTask returns a task with its checklist and approval history
func (h *Handler) GetTask(c *gin.Context) {
	task, history, err := h.engine.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(task, history))
}

type submitRequest struct {
	ActorID      string `json:"actor_id" binding:"required"`
	TargetUserID string `json:"target_user_id"`
	Remarks      string `json:"remarks"`
}

// SubmitTask routes a task for approval, or self-approves it when no
// distinct target user is given
func (h *Handler) SubmitTask(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.engine.Submit(c.Request.Context(), c.Param("id"), req.ActorID, req.TargetUserID, req.Remarks)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(task, nil))
}

type actorRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
}

// ApproveTask advances a task one approval stage
func (h *Handler) ApproveTask(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.engine.Approve(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(task, nil))
}

type rejectRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
	Reason  string `json:"reason"`
}

// RejectTask rejects a task at its current stage
func (h *Handler) RejectTask(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.engine.Reject(c.Request.Context(), c.Param("id"), req.ActorID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(task, nil))
}

// CancelTask administratively terminates a task
func (h *Handler) CancelTask(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.engine.Cancel(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(task, nil))
}

type checklistPatchRequest struct {
	ActorID       string  `json:"actor_id" binding:"required"`
	Completed     *bool   `json:"completed"`
	ResponseValue *string `json:"response_value"`
	Notes         *string `json:"notes"`
}

// SetChecklistItem updates one checklist item of a task
func (h *Handler) SetChecklistItem(c *gin.Context) {
	var req checklistPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.engine.SetChecklistItem(c.Request.Context(), c.Param("id"), c.Param("item"), req.ActorID, workflow.ChecklistPatch{
		Completed:     req.Completed,
		ResponseValue: req.ResponseValue,
		Notes:         req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(task, nil))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound), errors.Is(err, repository.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, repository.ErrDuplicateTask):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
