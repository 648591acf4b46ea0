package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/response"
	"taskflow-board-api/internal/service"
)

type BoardHandler struct {
	boardService    service.BoardService
	activityService service.ActivityService
	logger          *zap.Logger
}

func NewBoardHandler(boardService service.BoardService, activityService service.ActivityService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		boardService:    boardService,
		activityService: activityService,
		logger:          logger,
	}
}

// CreateBoard godoc
// @Summary      Create a board
// @Description  Creates a board; the caller becomes its first admin
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBoardRequest true "Board"
// @Success      201 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards [post]
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	board, err := h.boardService.CreateBoard(c.Request.Context(), actorID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, board)
}

// GetBoards godoc
// @Summary      List my boards
// @Description  Boards the caller is a member of, with the caller's role
// @Tags         boards
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.BoardResponse}
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards [get]
func (h *BoardHandler) GetBoards(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	boards, err := h.boardService.GetUserBoards(c.Request.Context(), actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, boards)
}

// GetBoard godoc
// @Summary      Get a board
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId} [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(c.Request.Context(), boardID, actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}

// GetSnapshot godoc
// @Summary      Get the full board state
// @Description  The board with its lists and tasks in position order. Clients rebuild their local view from this.
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardSnapshotResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/snapshot [get]
func (h *BoardHandler) GetSnapshot(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	snap, err := h.boardService.GetBoardSnapshot(c.Request.Context(), boardID, actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, snap)
}

// GetActivity godoc
// @Summary      Board activity feed
// @Description  Latest entries, newest first
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ActivityResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/activity [get]
func (h *BoardHandler) GetActivity(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	activity, err := h.activityService.GetActivity(c.Request.Context(), boardID, actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, activity)
}
