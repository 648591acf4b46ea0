package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/response"
	"taskflow-board-api/internal/service"
)

type TaskHandler struct {
	taskService service.TaskService
	moveService service.MoveService
	logger      *zap.Logger
}

func NewTaskHandler(taskService service.TaskService, moveService service.MoveService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		moveService: moveService,
		logger:      logger,
	}
}

// CreateTask godoc
// @Summary      Append a task to a list
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        listId path string true "List ID (UUID)"
// @Param        request body dto.CreateTaskRequest true "Task"
// @Success      201 {object} response.SuccessResponse{data=dto.TaskResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /lists/{listId}/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := pathUUID(c, "listId", "list")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), listID, actorID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, task)
}

// GetTasks godoc
// @Summary      Tasks of a list in position order
// @Tags         tasks
// @Produce      json
// @Param        listId path string true "List ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.TaskResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /lists/{listId}/tasks [get]
func (h *TaskHandler) GetTasks(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := pathUUID(c, "listId", "list")
	if !ok {
		return
	}

	tasks, err := h.taskService.GetTasks(c.Request.Context(), listID, actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, tasks)
}

// GetTask godoc
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Param        taskId path string true "Task ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{taskId} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId", "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID, actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// UpdateTask godoc
// @Summary      Update a task
// @Description  Omitted fields keep their value. Placement is changed only through the move endpoint.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.UpdateTaskRequest true "Fields to change"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{taskId} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId", "task")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, actorID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// DeleteTask godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        taskId path string true "Task ID (UUID)"
// @Success      200 {object} response.SuccessResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{taskId} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId", "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, actorID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, nil)
}

// MoveTask godoc
// @Summary      Move a task
// @Description  Moves a task within its list or to another list of the same board. newPosition is 1-based and clamped to the target list; the response carries the final position.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.MoveTaskRequest true "Target"
// @Success      200 {object} response.SuccessResponse{data=dto.MoveTaskResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid body or target list on another board"
// @Failure      403 {object} response.ErrorResponse "Not a board member"
// @Failure      404 {object} response.ErrorResponse "Task or target list not found"
// @Failure      409 {object} response.ErrorResponse "Move aborted, nothing was changed; safe to retry"
// @Failure      503 {object} response.ErrorResponse "Storage unavailable"
// @Security     BearerAuth
// @Router       /tasks/{taskId}/move [put]
func (h *TaskHandler) MoveTask(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId", "task")
	if !ok {
		return
	}

	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	res, err := h.moveService.MoveTask(c.Request.Context(), taskID, actorID, *req.TargetListID, *req.NewPosition)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, res)
}
