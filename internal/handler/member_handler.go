package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/response"
	"taskflow-board-api/internal/service"
)

type MemberHandler struct {
	memberService service.MemberService
	logger        *zap.Logger
}

func NewMemberHandler(memberService service.MemberService, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		logger:        logger,
	}
}

// AddMember godoc
// @Summary      Add a board member
// @Description  Admin only. Role defaults to member.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.AddMemberRequest true "Member"
// @Success      201 {object} response.SuccessResponse{data=dto.MemberResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Already a member"
// @Security     BearerAuth
// @Router       /boards/{boardId}/members [post]
func (h *MemberHandler) AddMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	member, err := h.memberService.AddMember(c.Request.Context(), boardID, actorID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, member)
}

// GetMembers godoc
// @Summary      List board members
// @Tags         members
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.MemberResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/members [get]
func (h *MemberHandler) GetMembers(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	members, err := h.memberService.GetMembers(c.Request.Context(), boardID, actorID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, members)
}

// RemoveMember godoc
// @Summary      Remove a board member
// @Description  Admin only. The last admin cannot be removed.
// @Tags         members
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Last admin"
// @Security     BearerAuth
// @Router       /boards/{boardId}/members/{userId} [delete]
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.memberService.RemoveMember(c.Request.Context(), boardID, actorID, userID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, nil)
}
