package entitlement

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/accessentitlement/platform/internal/pkg/errors"
	"github.com/accessentitlement/platform/internal/server/middleware"
)

// Handler adapts Service to gin's HTTP surface. Handlers stay thin; every
// invariant lives in Service.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires UE's user-facing and admin endpoints onto r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/request", h.createRequest)
	r.DELETE("/users/:uid/permissions", h.revokePermission)
	r.GET("/users/:uid/permissions", h.getPermissions)
	r.GET("/users/:uid/current_active_groups", h.getCurrentActiveGroups)

	admin := r.Group("/admin")
	admin.POST("/users", h.createUser)
}

func pathInt64(c *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperrors.BadRequest("invalid_id", name+" must be an integer")
	}
	return v, nil
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	out, err := h.svc.CreateUser(c.Request.Context(), req.Username)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) createRequest(c *gin.Context) {
	var req createRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	if !req.PermissionType.Valid() {
		middleware.WriteError(c, apperrors.BadRequest("invalid_permission_type", "permission_type must be access or group"))
		return
	}
	requestID, err := h.svc.CreateRequest(c.Request.Context(), req.UserID, req.PermissionType, req.ItemID, req.ItemName)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, createRequestResponse{RequestID: requestID, Status: "accepted"})
}

func (h *Handler) revokePermission(c *gin.Context) {
	userID, err := pathInt64(c, "uid")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	var req revokeRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	if !req.PermissionType.Valid() {
		middleware.WriteError(c, apperrors.BadRequest("invalid_permission_type", "permission_type must be access or group"))
		return
	}
	if err := h.svc.RevokePermission(c.Request.Context(), userID, req.PermissionType, req.ItemID); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, revokeResponse{Status: string(StatusRevoked)})
}

func (h *Handler) getPermissions(c *gin.Context) {
	userID, err := pathInt64(c, "uid")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	out, err := h.svc.GetPermissions(c.Request.Context(), userID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getCurrentActiveGroups(c *gin.Context) {
	userID, err := pathInt64(c, "uid")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	out, err := h.svc.GetCurrentActiveGroups(c.Request.Context(), userID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}
