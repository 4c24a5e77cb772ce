// Package http provides HTTP handlers for groups and their rosters.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/teamvault/internal/access/http/dto"
	accessUseCase "github.com/allisson/teamvault/internal/access/usecase"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	authHTTP "github.com/allisson/teamvault/internal/auth/http"
	apperrors "github.com/allisson/teamvault/internal/errors"
	"github.com/allisson/teamvault/internal/httputil"
	customValidation "github.com/allisson/teamvault/internal/validation"
)

// GroupHandler handles HTTP requests for group management.
type GroupHandler struct {
	useCase accessUseCase.GroupUseCase
	logger  *slog.Logger
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(useCase accessUseCase.GroupUseCase, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		useCase: useCase,
		logger:  logger,
	}
}

func (h *GroupHandler) principal(c *gin.Context) (authDomain.Principal, bool) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return authDomain.Principal{}, false
	}
	return *principal, true
}

func (h *GroupHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid %s", name), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// CreateHandler creates a group administered by the caller.
// POST /v1/groups - Returns 201 Created.
func (h *GroupHandler) CreateHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	group, err := h.useCase.Create(c.Request.Context(), principal, req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapGroupToResponse(group))
}

// ListMembersHandler returns the roster.
// GET /v1/groups/:id/members - Members only.
func (h *GroupHandler) ListMembersHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	groupID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	members, err := h.useCase.ListMembers(c.Request.Context(), principal, groupID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMembersToListResponse(members))
}

// AddMemberHandler adds a user to the group.
// POST /v1/groups/:id/members - Group admins only. Returns 201 Created.
func (h *GroupHandler) AddMemberHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	groupID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	membership, err := h.useCase.AddMember(c.Request.Context(), principal, groupID, req.UserUUID(), req.IsAdmin)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapMemberToResponse(membership))
}

// RemoveMemberHandler removes a user from the group.
// DELETE /v1/groups/:id/members/:user_id - Group admins, or the member themselves.
// Returns 204 No Content.
func (h *GroupHandler) RemoveMemberHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	groupID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.useCase.RemoveMember(c.Request.Context(), principal, groupID, userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
