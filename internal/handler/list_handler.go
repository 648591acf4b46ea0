package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/response"
	"taskflow-board-api/internal/service"
)

type ListHandler struct {
	listService service.ListService
	logger      *zap.Logger
}

func NewListHandler(listService service.ListService, logger *zap.Logger) *ListHandler {
	return &ListHandler{
		listService: listService,
		logger:      logger,
	}
}

// CreateList godoc
// @Summary      Append a list to a board
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.CreateListRequest true "List"
// @Success      201 {object} response.SuccessResponse{data=dto.ListResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/lists [post]
func (h *ListHandler) CreateList(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	list, err := h.listService.CreateList(c.Request.Context(), boardID, actorID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, list)
}

// GetLists godoc
// @Summary      Lists of a board in position order
// @Tags         lists
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ListResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/lists [get]
func (h *ListHandler) GetLists(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	lists, err := h.listService.GetLists(c.Request.Context(), boardID, actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, lists)
}

// UpdateList godoc
// @Summary      Rename a list
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        listId path string true "List ID (UUID)"
// @Param        request body dto.UpdateListRequest true "List"
// @Success      200 {object} response.SuccessResponse{data=dto.ListResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /lists/{listId} [put]
func (h *ListHandler) UpdateList(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := pathUUID(c, "listId", "list")
	if !ok {
		return
	}

	var req dto.UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	list, err := h.listService.UpdateList(c.Request.Context(), listID, actorID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, list)
}

// DeleteList godoc
// @Summary      Delete a list and its tasks
// @Tags         lists
// @Produce      json
// @Param        listId path string true "List ID (UUID)"
// @Success      200 {object} response.SuccessResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /lists/{listId} [delete]
func (h *ListHandler) DeleteList(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := pathUUID(c, "listId", "list")
	if !ok {
		return
	}

	if err := h.listService.DeleteList(c.Request.Context(), listID, actorID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, nil)
}
