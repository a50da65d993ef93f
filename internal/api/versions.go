package api

import (
	"net/http"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) versionHistory(c *gin.Context) {
	versions, err := h.svc.GetVersionHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if versions == nil {
		versions = []models.DocumentVersion{}
	}
	c.JSON(http.StatusOK, versions)
}

func (h *Handler) createVersion(c *gin.Context) {
	var req models.CreateVersionRequest
	if err := bind(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	label, err := h.svc.CreateVersion(c.Request.Context(), c.Param("id"), req.ChangeReason, actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.CreateVersionResponse{Version: label})
}

func (h *Handler) getVersion(c *gin.Context) {
	v, err := h.svc.GetVersion(c.Request.Context(), c.Param("id"), c.Param("versionId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) restoreVersion(c *gin.Context) {
	doc, err := h.svc.RestoreVersion(c.Request.Context(), c.Param("id"), c.Param("versionId"), actor(c))
	h.writeDocument(c, doc, err)
}
