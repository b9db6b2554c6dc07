package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jvanrooyen/cultivation-tasks/internal/domain/entity"
	"github.com/jvanrooyen/cultivation-tasks/internal/generator"
	"github.com/jvanrooyen/cultivation-tasks/internal/repository"
	"github.com/jvanrooyen/cultivation-tasks/internal/workflow"
	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiFixture struct {
	router *gin.Engine
	db     *database.DB
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	db, err := database.NewInMemory(strings.ReplaceAll(t.Name(), "/", "_"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run())

	taskRepo := repository.NewTaskRepository(db, logger)
	historyRepo := repository.NewHistoryRepository(db, logger)
	batchRepo := repository.NewBatchRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	seqRepo := repository.NewSequenceRepository(db, logger)

	engine := workflow.NewEngine(db, taskRepo, historyRepo, userRepo, seqRepo, logger)
	runner := generator.NewRunner(engine, batchRepo, taskRepo, logger)

	router := gin.New()
	NewHandler(engine, runner, logger).Register(router)

	return &apiFixture{router: router, db: db}
}

func (f *apiFixture) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) createTask(t *testing.T, body gin.H) string {
	t.Helper()
	w := f.request(t, http.MethodPost, "/api/v1/tasks", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Task entity.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Task.ID
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestCreateTask(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodPost, "/api/v1/tasks", gin.H{
		"name":            "Flush reservoir tanks",
		"task_category":   "general",
		"created_by":      "alice",
		"checklist_items": []string{"Drain tank A", "Refill with nutrient mix"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Task     entity.Task `json:"task"`
		Progress struct {
			Completed int `json:"completed"`
			Total     int `json:"total"`
		} `json:"completion_progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "T-0001", resp.Task.TaskNumber)
	assert.Equal(t, entity.StatusDraft, resp.Task.Status)
	assert.Equal(t, 2, resp.Progress.Total)
	assert.Equal(t, 0, resp.Progress.Completed)
}

func TestCreateTask_Invalid(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("missing required fields", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/api/v1/tasks", gin.H{"name": "No category"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/api/v1/tasks", gin.H{
			"name":          "Bad category",
			"task_category": "no_such_category",
			"created_by":    "alice",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetTask_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodGet, "/api/v1/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitAndApproveFlow(t *testing.T) {
	f := newAPIFixture(t)
	_, err := f.db.Exec("INSERT INTO user_roles (user_id, role) VALUES ('alice', 'grower'), ('bob', 'manager')")
	require.NoError(t, err)

	id := f.createTask(t, gin.H{
		"name":          "Weekly walkthrough",
		"task_category": "general",
		"created_by":    "alice",
	})

	w := f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/submit", gin.H{
		"actor_id":       "alice",
		"target_user_id": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// bob holds manager, allowed at the grower/manager stage
	w = f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/approve", gin.H{"actor_id": "bob"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Task entity.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.StatusCompleted, resp.Task.Status)
	assert.Equal(t, entity.ApprovalApproved, resp.Task.ApprovalStatus)

	// history is included on reads
	w = f.request(t, http.MethodGet, "/api/v1/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		History []entity.ApprovalHistoryEntry `json:"approval_history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.History, 2)
	assert.Equal(t, entity.ActionSubmitted, detail.History[0].Action)
	assert.Equal(t, entity.ActionApproved, detail.History[1].Action)
}

func TestApprove_Unauthorized(t *testing.T) {
	f := newAPIFixture(t)
	_, err := f.db.Exec("INSERT INTO user_roles (user_id, role) VALUES ('dave', 'assistant_grower')")
	require.NoError(t, err)

	id := f.createTask(t, gin.H{
		"name":          "Weekly walkthrough",
		"task_category": "general",
		"created_by":    "alice",
	})

	w := f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/submit", gin.H{
		"actor_id":       "alice",
		"target_user_id": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/approve", gin.H{"actor_id": "dave"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReject_RequiresReason(t *testing.T) {
	f := newAPIFixture(t)
	_, err := f.db.Exec("INSERT INTO user_roles (user_id, role) VALUES ('bob', 'manager')")
	require.NoError(t, err)

	id := f.createTask(t, gin.H{
		"name":          "Weekly walkthrough",
		"task_category": "general",
		"created_by":    "alice",
	})

	w := f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/submit", gin.H{
		"actor_id":       "alice",
		"target_user_id": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/reject", gin.H{"actor_id": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/reject", gin.H{
		"actor_id": "bob",
		"reason":   "counts missing",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Task entity.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.StatusRejected, resp.Task.Status)
	assert.Equal(t, "counts missing", resp.Task.RejectionReason)
}

func TestCancel_TerminalConflict(t *testing.T) {
	f := newAPIFixture(t)

	id := f.createTask(t, gin.H{
		"name":          "One-off inspection",
		"task_category": "general",
		"created_by":    "alice",
	})

	w := f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/cancel", gin.H{"actor_id": "alice"})
	require.Equal(t, http.StatusOK, w.Code)

	// Cancelling again hits a terminal task
	w = f.request(t, http.MethodPost, "/api/v1/tasks/"+id+"/cancel", gin.H{"actor_id": "alice"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSetChecklistItem(t *testing.T) {
	f := newAPIFixture(t)

	id := f.createTask(t, gin.H{
		"name":            "Prep clone trays",
		"task_category":   "general",
		"created_by":      "alice",
		"checklist_items": []string{"Sterilize trays"},
	})

	w := f.request(t, http.MethodGet, "/api/v1/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Task entity.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Task.ChecklistItems, 1)
	itemID := detail.Task.ChecklistItems[0].ID

	w = f.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/tasks/%s/checklist/%s", id, itemID), gin.H{
		"actor_id":  "alice",
		"completed": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Task     entity.Task `json:"task"`
		Progress struct {
			Completed int `json:"completed"`
			Total     int `json:"total"`
		} `json:"completion_progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Progress.Completed)
	// Completing the whole checklist completes the task
	assert.Equal(t, entity.StatusCompleted, resp.Task.Status)
}

func TestRunJob(t *testing.T) {
	f := newAPIFixture(t)
	_, err := f.db.Exec(
		"INSERT INTO batches (id, batch_number, created_by, current_stage, status) VALUES ('b1', 'B-0001', 'alice', 'vegetative', 'active')",
	)
	require.NoError(t, err)

	w := f.request(t, http.MethodPost, "/api/v1/jobs/daily-mortality/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(1), resp["batchesProcessed"])
	assert.Equal(t, float64(1), resp["tasksCreated"])
	assert.Equal(t, float64(0), resp["tasksSkipped"])
	assert.Contains(t, resp["message"], "created 1 tasks")

	// Rerun in the same window only skips
	w = f.request(t, http.MethodPost, "/api/v1/jobs/daily-mortality/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["tasksCreated"])
	assert.Equal(t, float64(1), resp["tasksSkipped"])
}

func TestRunJob_Unknown(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodPost, "/api/v1/jobs/no-such-job/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "no-such-job")
}
