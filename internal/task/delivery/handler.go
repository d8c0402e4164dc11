package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"todo-backend/internal/task/domain"
	"todo-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Reminder    *time.Time `json:"reminder"`
}

// UpdateTaskRequest carries the whole editable state of a task
type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	IsCompleted bool       `json:"is_completed"`
	Reminder    *time.Time `json:"reminder"`
}

// DeleteTasksRequest lists the tasks to remove in one call
type DeleteTasksRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// GetTasks returns the day-grouped view
// GET /api/tasks?hide_completed=true
func (h *TaskHandler) GetTasks(c *gin.Context) {
	hideCompleted, err := strconv.ParseBool(c.DefaultQuery("hide_completed", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hide_completed must be a boolean"})
		return
	}

	groups := h.taskUsecase.GroupedByDay(hideCompleted)
	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"total":  len(h.taskUsecase.Tasks()),
	})
}

// GetTaskByID returns a specific task
// GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	task, err := h.taskUsecase.GetTask(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be blank"})
		return
	}

	task, err := h.taskUsecase.AddTask(domain.Draft{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    domain.ParsePriority(req.Priority),
		Reminder:    req.Reminder,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask replaces an existing task
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be blank"})
		return
	}

	task, err := h.taskUsecase.UpdateTask(domain.Task{
		ID:          c.Param("id"),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    domain.ParsePriority(req.Priority),
		IsCompleted: req.IsCompleted,
		Reminder:    req.Reminder,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ToggleTask flips the completion flag
// PATCH /api/tasks/:id/toggle
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	task, err := h.taskUsecase.ToggleCompleted(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskUsecase.RemoveTasks([]string{c.Param("id")}); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// DeleteTasks removes several tasks at once
// POST /api/tasks/delete
func (h *TaskHandler) DeleteTasks(c *gin.Context) {
	var req DeleteTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.taskUsecase.RemoveTasks(req.IDs); err != nil {
		writeError(c, err)
		return
	}
	distinct := make(map[string]struct{}, len(req.IDs))
	for _, id := range req.IDs {
		distinct[id] = struct{}{}
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks deleted successfully",
		"count":   len(distinct),
	})
}

// SearchTasks runs a typo-tolerant search
// GET /api/tasks/search?q=milk
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	tasks := h.taskUsecase.Search(query)
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetStatistics returns completion and priority counts
// GET /api/tasks/stats
func (h *TaskHandler) GetStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.taskUsecase.Statistics())
}

// GetReminderStatus exposes the last reminder sync outcome
// GET /api/tasks/reminders/status
func (h *TaskHandler) GetReminderStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.taskUsecase.ReminderStatus())
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
