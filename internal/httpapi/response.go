package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/jvanrooyen/cultivation-tasks/internal/domain/entity"
)

// taskResponse shapes a task for the wire, including derived completion
// progress and, when loaded, the approval history.
func taskResponse(task *entity.Task, history []*entity.ApprovalHistoryEntry) gin.H {
	resp := gin.H{
		"task":                task,
		"completion_progress": task.ChecklistProgress(),
	}
	if history != nil {
		resp["approval_history"] = history
	}
	return resp
}
