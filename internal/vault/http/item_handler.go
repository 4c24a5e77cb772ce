// Package http provides HTTP handlers for vault items, their access grants and their history.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	authHTTP "github.com/allisson/teamvault/internal/auth/http"
	apperrors "github.com/allisson/teamvault/internal/errors"
	"github.com/allisson/teamvault/internal/httputil"
	customValidation "github.com/allisson/teamvault/internal/validation"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
	"github.com/allisson/teamvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/teamvault/internal/vault/usecase"
)

// ItemHandler handles HTTP requests for vault items. Every route expects the authentication
// middleware to have stored a principal in the request context.
type ItemHandler struct {
	useCase vaultUseCase.VaultItemUseCase
	logger  *slog.Logger
}

// NewItemHandler creates a new item handler.
func NewItemHandler(useCase vaultUseCase.VaultItemUseCase, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// principal returns the caller or writes 401.
func (h *ItemHandler) principal(c *gin.Context) (authDomain.Principal, bool) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return authDomain.Principal{}, false
	}
	return *principal, true
}

// itemID parses the :id path parameter or writes 400.
func (h *ItemHandler) itemID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid item id"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// handleError writes the error response. A missing or already deleted item is reported exactly
// like an item the caller may not see.
func (h *ItemHandler) handleError(c *gin.Context, err error) {
	if apperrors.Is(err, vaultDomain.ErrItemNotFound) || apperrors.Is(err, vaultDomain.ErrItemAlreadyDeleted) {
		err = apperrors.Wrap(vaultDomain.ErrItemAccessDenied, err.Error())
	}
	httputil.HandleErrorGin(c, err, h.logger)
}

// CreateHandler creates a vault item owned by the caller.
// POST /v1/items?reveal=true
// Returns 201 Created. Secrets are redacted unless reveal is set.
func (h *ItemHandler) CreateHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	reveal, err := httputil.ParseBoolQuery(c, "reveal")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	view, err := h.useCase.Create(c.Request.Context(), principal, req.ToInput(reveal))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MapItemToResponse(view))
}

// ListHandler lists the items the caller can see, secrets redacted.
// GET /v1/items?offset=0&limit=50
func (h *ItemHandler) ListHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	views, err := h.useCase.List(c.Request.Context(), principal, offset, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapItemsToListResponse(views))
}

// GetHandler returns the decrypted item.
// GET /v1/items/:id - Requires read access.
func (h *ItemHandler) GetHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	view, err := h.useCase.Get(c.Request.Context(), principal, itemID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapItemToResponse(view))
}

// UpdateHandler applies a partial update.
// PATCH /v1/items/:id - Requires edit access.
func (h *ItemHandler) UpdateHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	view, err := h.useCase.Update(c.Request.Context(), principal, itemID, req.ToInput())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapItemToResponse(view))
}

// DeleteHandler deletes the item and its grants.
// DELETE /v1/items/:id - Owner only. Returns 204 No Content.
func (h *ItemHandler) DeleteHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	if err := h.useCase.Delete(c.Request.Context(), principal, itemID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// TOTPHandler returns the current one-time code.
// GET /v1/items/:id/totp - Requires read access.
func (h *ItemHandler) TOTPHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	code, err := h.useCase.CurrentTOTP(c.Request.Context(), principal, itemID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapCodeToResponse(code))
}

// HistoryHandler lists the item's history, oldest first.
// GET /v1/items/:id/history - Requires read access.
func (h *ItemHandler) HistoryHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	entries, err := h.useCase.ListHistory(c.Request.Context(), principal, itemID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapHistoryToListResponse(entries))
}

// ListAccessHandler lists the grants on an item.
// GET /v1/items/:id/access - Owner only.
func (h *ItemHandler) ListAccessHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	grants, err := h.useCase.ListAccess(c.Request.Context(), principal, itemID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantsToListResponse(grants))
}

// GrantAccessHandler grants a user or group read or edit access.
// POST /v1/items/:id/access - Owner only.
func (h *ItemHandler) GrantAccessHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	var req dto.GrantAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	grant, err := h.useCase.GrantAccess(c.Request.Context(), principal, itemID, req.ToInput())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToResponse(grant))
}

// RevokeAccessHandler removes a grant.
// DELETE /v1/items/:id/access/:target_type/:target_id - Owner only. Returns 204 No Content.
func (h *ItemHandler) RevokeAccessHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	targetType, err := accessDomain.ParseTargetType(c.Param("target_type"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	targetID, err := uuid.Parse(c.Param("target_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid target id"), h.logger)
		return
	}

	if err := h.useCase.RevokeAccess(c.Request.Context(), principal, itemID, targetType, targetID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
