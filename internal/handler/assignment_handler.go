package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/response"
	"taskflow-board-api/internal/service"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
	logger            *zap.Logger
}

func NewAssignmentHandler(assignmentService service.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// AssignUser godoc
// @Summary      Assign a board member to a task
// @Description  Assigning someone already assigned is a no-op
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.AssignUserRequest true "Assignee"
// @Success      200 {object} response.SuccessResponse
// @Failure      400 {object} response.ErrorResponse "Assignee is not a board member"
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{taskId}/assignees [post]
func (h *AssignmentHandler) AssignUser(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId", "task")
	if !ok {
		return
	}

	var req dto.AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.assignmentService.AssignUser(c.Request.Context(), taskID, actorID, req.UserID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, nil)
}

// GetAssignees godoc
// @Summary      Task assignees
// @Tags         assignments
// @Produce      json
// @Param        taskId path string true "Task ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.AssigneeResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{taskId}/assignees [get]
func (h *AssignmentHandler) GetAssignees(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId", "task")
	if !ok {
		return
	}

	assignees, err := h.assignmentService.GetAssignees(c.Request.Context(), taskID, actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, assignees)
}

// UnassignUser godoc
// @Summary      Remove an assignee from a task
// @Tags         assignments
// @Produce      json
// @Param        taskId path string true "Task ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{taskId}/assignees/{userId} [delete]
func (h *AssignmentHandler) UnassignUser(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId", "task")
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.assignmentService.UnassignUser(c.Request.Context(), taskID, actorID, userID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, nil)
}
