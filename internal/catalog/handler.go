package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/accessentitlement/platform/internal/pkg/errors"
	"github.com/accessentitlement/platform/internal/server/middleware"
)

// Handler adapts Service to gin's HTTP surface.
// Handlers stay thin; every invariant lives in Service.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires AC's read and admin-write endpoints onto r.
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

	admin := r.Group("/admin")
	admin.POST("/resources", h.createResource)
	admin.DELETE("/resources/:id", h.deleteResource)
	admin.POST("/accesses", h.createAccess)
	admin.DELETE("/accesses/:id", h.deleteAccess)
	admin.POST("/accesses/:id/resources", h.addResourceToAccess)
	admin.DELETE("/accesses/:id/resources/:rid", h.removeResourceFromAccess)
	admin.POST("/groups", h.createGroup)
	admin.DELETE("/groups/:id", h.deleteGroup)
	admin.POST("/groups/:id/accesses/:aid", h.addAccessToGroup)
	admin.DELETE("/groups/:id/accesses/:aid", h.removeAccessFromGroup)
	admin.POST("/conflicts", h.createConflict)
	admin.DELETE("/conflicts", h.deleteConflict)
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

func (h *Handler) createResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	out, err := h.svc.CreateResource(c.Request.Context(), req.Name, req.Type, req.Description)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) deleteResource(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteResource(c.Request.Context(), id); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
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

func (h *Handler) createAccess(c *gin.Context) {
	var req createAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	out, err := h.svc.CreateAccess(c.Request.Context(), req.Name)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) deleteAccess(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteAccess(c.Request.Context(), id); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addResourceToAccess(c *gin.Context) {
	accessID, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	var req addResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	if err := h.svc.AddResourceToAccess(c.Request.Context(), accessID, req.ResourceID); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeResourceFromAccess(c *gin.Context) {
	accessID, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	resourceID, err := pathInt64(c, "rid")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if err := h.svc.RemoveResourceFromAccess(c.Request.Context(), accessID, resourceID); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
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

func (h *Handler) createGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	out, err := h.svc.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) deleteGroup(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteGroup(c.Request.Context(), id); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addAccessToGroup(c *gin.Context) {
	groupID, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	accessID, err := pathInt64(c, "aid")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if err := h.svc.AddAccessToGroup(c.Request.Context(), groupID, accessID); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeAccessFromGroup(c *gin.Context) {
	groupID, err := pathInt64(c, "id")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	accessID, err := pathInt64(c, "aid")
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if err := h.svc.RemoveAccessFromGroup(c.Request.Context(), groupID, accessID); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getConflictMatrix(c *gin.Context) {
	out, err := h.svc.GetConflictMatrix(c.Request.Context())
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createConflict(c *gin.Context) {
	var req conflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	if err := h.svc.CreateConflict(c.Request.Context(), req.GroupID1, req.GroupID2); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) deleteConflict(c *gin.Context) {
	var req conflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.BadRequest("invalid_body", err.Error()))
		return
	}
	if err := h.svc.DeleteConflict(c.Request.Context(), req.GroupID1, req.GroupID2); err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
