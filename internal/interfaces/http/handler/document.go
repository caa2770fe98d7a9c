package handler

import (
	"archive/zip"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/quotemint/backend/internal/application/billing"
	"github.com/quotemint/backend/internal/interfaces/http/router"
)

// DocumentHandler handles billing document API endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *billingapp.DocumentService
	renderService   *billingapp.RenderService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *billingapp.DocumentService, renderService *billingapp.RenderService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		renderService:   renderService,
	}
}

// CreateDocument handles POST /documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req billingapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.documentService.CreateDocument(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetDocument handles GET /documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	result, err := h.documentService.GetDocument(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListDocuments handles GET /documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req billingapp.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.documentService.ListDocuments(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UpdateDocument handles PUT /documents/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req billingapp.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.documentService.UpdateDocument(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeleteDocument handles DELETE /documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), ownerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ShareDocument handles POST /documents/:id/share
func (h *DocumentHandler) ShareDocument(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	result, err := h.documentService.ShareDocument(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DownloadPDF handles GET /documents/:id/pdf
func (h *DocumentHandler) DownloadPDF(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.renderService.RenderByID(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", doc.PDFData)
}

// ExportDocuments handles POST /documents/export. Succeeded PDFs are
// streamed as a zip archive; per-document failures go into a manifest
// entry inside the archive instead of failing the whole export.
func (h *DocumentHandler) ExportDocuments(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req billingapp.ExportDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ids := make([]uuid.UUID, len(req.IDs))
	for i, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid document ID format: "+raw)
			return
		}
		ids[i] = id
	}

	results, err := h.renderService.RenderBatch(c.Request.Context(), ownerID, ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	fileName := "documents-" + time.Now().Format("20060102-150405") + ".zip"
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("Content-Type", "application/zip")
	c.Status(http.StatusOK)

	zw := zip.NewWriter(c.Writer)
	defer zw.Close()

	manifest := make([]billingapp.ExportResultResponse, 0, len(results))
	for _, res := range results {
		entry := billingapp.ExportResultResponse{
			ID:     res.ID.String(),
			Number: res.Number,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
			manifest = append(manifest, entry)
			continue
		}
		entry.FileName = res.Document.FileName
		manifest = append(manifest, entry)

		f, err := zw.Create(res.Document.FileName)
		if err != nil {
			return
		}
		if _, err := f.Write(res.Document.PDFData); err != nil {
			return
		}
	}

	mf, err := zw.Create("manifest.json")
	if err != nil {
		return
	}
	enc := json.NewEncoder(mf)
	enc.SetIndent("", "  ")
	_ = enc.Encode(manifest)
}

// =============================================================================
// Routes
// =============================================================================

// DocumentRoutes creates the route group for document endpoints
func DocumentRoutes(handler *DocumentHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("documents", "/documents")
	group.Use(authMiddleware)

	group.GET("", handler.ListDocuments)
	group.POST("", handler.CreateDocument)
	group.POST("/export", handler.ExportDocuments)
	group.GET("/:id", handler.GetDocument)
	group.PUT("/:id", handler.UpdateDocument)
	group.DELETE("/:id", handler.DeleteDocument)
	group.POST("/:id/share", handler.ShareDocument)
	group.GET("/:id/pdf", handler.DownloadPDF)

	return group
}
