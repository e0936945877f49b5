package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
)

// TaskHandler handles warehouse task API endpoints
type TaskHandler struct {
	BaseHandler
	taskService *appledger.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *appledger.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes wires task endpoints into the API group
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tasks/:id/execute", h.Execute)
	rg.GET("/locations/:id/tasks", h.PendingByLocation)
}

// Execute confirms a pending task and applies its stock movement. Completing
// the last task of a movement completes the movement itself.
func (h *TaskHandler) Execute(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid task ID format")
		return
	}

	result, err := h.taskService.Execute(c.Request.Context(), taskID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// PendingByLocation lists unresolved tasks targeting a location
func (h *TaskHandler) PendingByLocation(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	tasks, err := h.taskService.PendingByLocation(c.Request.Context(), locationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tasks)
}
