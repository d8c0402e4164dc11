package delivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-backend/internal/task/domain"
	"todo-backend/internal/task/repository"
	"todo-backend/internal/task/scheduler"
	"todo-backend/internal/task/usecase"
	"todo-backend/pkg/clock"
	"todo-backend/pkg/kvstore"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCenter struct{ scheduled map[string]scheduler.Alert }

func (c *nopCenter) Schedule(a scheduler.Alert) error { c.scheduled[a.ID] = a; return nil }
func (c *nopCenter) Cancel(id string) error           { delete(c.scheduled, id); return nil }

var now = time.Date(2024, 11, 22, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*gin.Engine, usecase.TaskUsecase, *nopCenter) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewFake(now)
	center := &nopCenter{scheduled: map[string]scheduler.Alert{}}
	uc := usecase.NewTaskUsecase(
		repository.NewSlotTaskRepository(kvstore.NewMemory(), "tasks"),
		scheduler.NewReminderScheduler(center, clk, zerolog.Nop()),
		clk,
		zerolog.Nop(),
		"",
	)
	require.NoError(t, uc.Load())

	h := NewTaskHandler(uc)
	r := gin.New()
	tasks := r.Group("/api/tasks")
	tasks.GET("", h.GetTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/search", h.SearchTasks)
	tasks.GET("/stats", h.GetStatistics)
	tasks.GET("/reminders/status", h.GetReminderStatus)
	tasks.POST("/delete", h.DeleteTasks)
	tasks.GET("/:id", h.GetTaskByID)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.PATCH("/:id/toggle", h.ToggleTask)
	tasks.DELETE("/:id", h.DeleteTask)
	return r, uc, center
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTask(t *testing.T) {
	r, uc, center := setup(t)

	w := do(r, http.MethodPost, "/api/tasks", gin.H{
		"title":    "Call dentist",
		"priority": "HIGH",
		"reminder": now.Add(time.Hour).Format(time.RFC3339),
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var got domain.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Len(t, uc.Tasks(), 1)
	assert.Contains(t, center.scheduled, got.ID)
}

func TestCreateTask_Validation(t *testing.T) {
	r, uc, _ := setup(t)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/tasks", gin.H{"description": "no title"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/tasks", gin.H{"title": "   "}).Code)
	assert.Empty(t, uc.Tasks())
}

func TestGetTasks_Grouped(t *testing.T) {
	r, uc, _ := setup(t)
	_, err := uc.AddTask(domain.Draft{Title: "Buy milk"})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/api/tasks?hide_completed=true", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Groups []domain.DayGroup `json:"groups"`
		Total  int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Groups, 1)
	assert.Equal(t, "Today", body.Groups[0].Label)
	assert.Equal(t, 1, body.Total)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/tasks?hide_completed=maybe", nil).Code)
}

func TestUpdateAndToggle(t *testing.T) {
	r, uc, _ := setup(t)
	task, err := uc.AddTask(domain.Draft{Title: "draft"})
	require.NoError(t, err)

	w := do(r, http.MethodPut, "/api/tasks/"+task.ID, gin.H{"title": "final", "priority": "low"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPatch, "/api/tasks/"+task.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := uc.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, domain.PriorityLow, got.Priority)
	assert.True(t, got.IsCompleted)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestNotFoundMapsTo404(t *testing.T) {
	r, _, _ := setup(t)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/tasks/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/api/tasks/missing", gin.H{"title": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/api/tasks/missing/toggle", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/tasks/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/tasks/delete", gin.H{"ids": []string{"missing"}}).Code)
}

func TestDelete(t *testing.T) {
	r, uc, center := setup(t)
	a, _ := uc.AddTask(domain.Draft{Title: "a", Reminder: timePtr(now.Add(time.Hour))})
	b, _ := uc.AddTask(domain.Draft{Title: "b"})
	c, _ := uc.AddTask(domain.Draft{Title: "c"})

	require.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/tasks/"+a.ID, nil).Code)
	assert.Empty(t, center.scheduled)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/tasks/delete", gin.H{"ids": []string{}}).Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/tasks/delete", gin.H{"ids": []string{b.ID, c.ID}}).Code)
	assert.Empty(t, uc.Tasks())
}

func TestDeleteTasks_CountsDistinctIDs(t *testing.T) {
	r, uc, _ := setup(t)
	a, _ := uc.AddTask(domain.Draft{Title: "a"})
	b, _ := uc.AddTask(domain.Draft{Title: "b"})
	keep, _ := uc.AddTask(domain.Draft{Title: "keep"})

	w := do(r, http.MethodPost, "/api/tasks/delete", gin.H{"ids": []string{a.ID, a.ID, b.ID, a.ID}})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, uc.Tasks(), 1)
	assert.Equal(t, keep.ID, uc.Tasks()[0].ID)
}

func TestSearchStatsAndStatus(t *testing.T) {
	r, uc, _ := setup(t)
	_, err := uc.AddTask(domain.Draft{Title: "Buy milk"})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/api/tasks/search?q=milk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Buy milk")
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/tasks/search", nil).Code)

	w = do(r, http.MethodGet, "/api/tasks/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.Statistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByPriority[domain.PriorityMedium])

	w = do(r, http.MethodGet, "/api/tasks/reminders/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status scheduler.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.LastReconcile.Equal(now))
}

func timePtr(t time.Time) *time.Time { return &t }
