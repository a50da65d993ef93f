package api

import (
	"net/http"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) create(c *gin.Context) {
	var req models.CreateDocumentRequest
	if err := bind(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	doc, err := h.svc.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) list(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page, err := intParam(c, "page", 1)
	if err != nil {
		h.writeError(c, err)
		return
	}
	size, err := intParam(c, "pageSize", models.DefaultPageSize)
	if err != nil {
		h.writeError(c, err)
		return
	}
	result, err := h.svc.GetPaginated(c.Request.Context(), f, models.Pagination{Page: page, PageSize: size})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) search(c *gin.Context) {
	docs, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	h.writeList(c, docs, err)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) expiring(c *gin.Context) {
	days, err := intParam(c, "days", services.ExpiringWindowDays)
	if err != nil {
		h.writeError(c, err)
		return
	}
	docs, err := h.svc.GetExpiringSoon(c.Request.Context(), days)
	h.writeList(c, docs, err)
}

func (h *Handler) expired(c *gin.Context) {
	docs, err := h.svc.GetExpired(c.Request.Context())
	h.writeList(c, docs, err)
}

func (h *Handler) mostDownloaded(c *gin.Context) {
	limit, err := intParam(c, "limit", 10)
	if err != nil {
		h.writeError(c, err)
		return
	}
	docs, err := h.svc.GetMostDownloaded(c.Request.Context(), limit)
	h.writeList(c, docs, err)
}

func (h *Handler) recent(c *gin.Context) {
	limit, err := intParam(c, "limit", 10)
	if err != nil {
		h.writeError(c, err)
		return
	}
	docs, err := h.svc.GetRecent(c.Request.Context(), limit)
	h.writeList(c, docs, err)
}

// writeList always encodes a JSON array, never null.
func (h *Handler) writeList(c *gin.Context, docs []models.Document, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) generateCode(c *gin.Context) {
	code, err := h.svc.GenerateCode(c.Request.Context(), models.DocumentType(c.Param("type")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CodeResponse{Code: code})
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	h.writeDocument(c, doc, err)
}

func (h *Handler) update(c *gin.Context) {
	var patch models.DocumentPatch
	if err := bind(c, &patch); err != nil {
		h.writeError(c, err)
		return
	}
	doc, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch, actor(c))
	h.writeDocument(c, doc, err)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) changeStatus(c *gin.Context) {
	var req models.ChangeStatusRequest
	if err := bind(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	doc, err := h.svc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, actor(c))
	h.writeDocument(c, doc, err)
}

func (h *Handler) approve(c *gin.Context) {
	doc, err := h.svc.Approve(c.Request.Context(), c.Param("id"), actor(c))
	h.writeDocument(c, doc, err)
}

func (h *Handler) publish(c *gin.Context) {
	var req models.PublishRequest
	if err := bind(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	if req.EffectiveDate.IsZero() {
		h.writeError(c, errBadRequestf("effectiveDate is required"))
		return
	}
	doc, err := h.svc.Publish(c.Request.Context(), c.Param("id"), req.EffectiveDate, actor(c))
	h.writeDocument(c, doc, err)
}

func (h *Handler) obsolete(c *gin.Context) {
	doc, err := h.svc.MarkObsolete(c.Request.Context(), c.Param("id"), actor(c))
	h.writeDocument(c, doc, err)
}

func (h *Handler) archive(c *gin.Context) {
	doc, err := h.svc.Archive(c.Request.Context(), c.Param("id"), actor(c))
	h.writeDocument(c, doc, err)
}

func (h *Handler) writeDocument(c *gin.Context, doc *models.Document, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
