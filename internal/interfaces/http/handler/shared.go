package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	billingapp "github.com/quotemint/backend/internal/application/billing"
	"github.com/quotemint/backend/internal/interfaces/http/router"
)

// SharedHandler serves anonymous share-link endpoints. These routes
// carry no authentication; the unguessable token is the credential.
type SharedHandler struct {
	BaseHandler
	renderService *billingapp.RenderService
}

// NewSharedHandler creates a new SharedHandler
func NewSharedHandler(renderService *billingapp.RenderService) *SharedHandler {
	return &SharedHandler{
		renderService: renderService,
	}
}

// DownloadSharedPDF handles GET /shared/:token/pdf
func (h *SharedHandler) DownloadSharedPDF(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.BadRequest(c, "Missing share token")
		return
	}

	doc, err := h.renderService.RenderByShareToken(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+doc.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", doc.PDFData)
}

// SharedRoutes creates the route group for anonymous share links
func SharedRoutes(handler *SharedHandler) *router.DomainGroup {
	group := router.NewDomainGroup("shared", "/shared")
	group.GET("/:token/pdf", handler.DownloadSharedPDF)
	return group
}
