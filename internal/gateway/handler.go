package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/accessentitlement/platform/internal/pkg/errors"
	"github.com/accessentitlement/platform/internal/server/middleware"
)

// Handler adapts Service to gin's HTTP surface. Every handler either
// proxies straight through or merges a handful of downstream calls; no
// validation or business rule lives here.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mirrors the client-facing slice of AC's and UE's surfaces
// the original BFF service fronted.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/resources", h.listResources)
	r.GET("/resources/:id", h.getResource)
	r.GET("/accesses", h.listAccesses)
	r.GET("/accesses/:id", h.getAccess)
	r.GET("/accesses/:id/groups", h.getAccessGroups)
	r.GET("/groups", h.listGroups)
	r.GET("/groups/:id", h.getGroup)
	r.GET("/groups/:id/accesses", h.getGroupAccesses)
	r.GET("/conflicts", h.getConflictMatrix)

	r.POST("/request", h.createRequest)
	r.DELETE("/users/:uid/permissions", h.revokePermission)
	r.GET("/users/:uid/permissions", h.getPermissions)
	r.GET("/users/:uid/current_active_groups", h.getCurrentActiveGroups)
}

func pathInt64(c *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperrors.BadRequest("invalid_id", name+" must be an integer")
	}
	return v, nil
}

func (h *Handler) listResources(c *gin.Context) {
	out, err := h.svc.ListResources(c.Request.Context())
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getResource(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	out, err := h.svc.GetResource(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) listAccesses(c *gin.Context) {
	out, err := h.svc.ListAccesses(c.Request.Context())
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getAccess(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	out, err := h.svc.GetAccess(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getAccessGroups(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	out, err := h.svc.GetAccessGroups(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) listGroups(c *gin.Context) {
	out, err := h.svc.ListGroups(c.Request.Context())
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getGroup(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	out, err := h.svc.GetGroup(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getGroupAccesses(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	out, err := h.svc.GetGroupAccesses(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getConflictMatrix(c *gin.Context) {
	out, err := h.svc.GetConflictMatrix(c.Request.Context())
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createRequest(c *gin.Context) {
	var req createRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	out, err := h.svc.CreateRequest(c.Request.Context(), req)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, out)
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
	out, err := h.svc.RevokePermission(c.Request.Context(), userID, req)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
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
