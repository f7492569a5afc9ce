package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/FirstLeaseAgent/template-pdf/middleware"
	"github.com/FirstLeaseAgent/template-pdf/model"
	"github.com/FirstLeaseAgent/template-pdf/service"
)

type QuoteHandler struct {
	repo         service.TemplateRepository
	quotes       *service.QuoteService
	templatesDir string
}

func NewQuoteHandler(repo service.TemplateRepository, quotes *service.QuoteService, templatesDir string) *QuoteHandler {
	return &QuoteHandler{
		repo:         repo,
		quotes:       quotes,
		templatesDir: templatesDir,
	}
}

type QuoteRequest struct {
	TemplateID string        `json:"plantilla_id" binding:"required"`
	Assets     []model.Asset `json:"activos" binding:"required"`
}

// Generate runs a quotation: computes the scenario figures for every asset,
// fills the template and renders the document pair. One Word/PDF pair per
// asset, because the per-asset tokens (nombre, precio, folio...) would
// collide in a single mapping.
func (h *QuoteHandler) Generate(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Assets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one asset is required"})
		return
	}
	for i := range req.Assets {
		if err := req.Assets[i].Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	tmpl, err := h.repo.Get(req.TemplateID)
	if err != nil || tmpl.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	templatePath := filepath.Join(h.templatesDir, tmpl.Filename)
	quotes, err := h.quotes.Generate(c.Request.Context(), templatePath, req.Assets)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Template file not found"})
		case errors.Is(err, model.ErrTemplateUnreadable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate documents: " + err.Error()})
		}
		return
	}

	// Local download links; archive URLs (when enabled) are already on the
	// quotes.
	base := baseURL(c)
	for i := range quotes {
		quotes[i].WordFile = fmt.Sprintf("%s/download/%s", base, quotes[i].WordFile)
		if quotes[i].PDFFile != "" {
			quotes[i].PDFFile = fmt.Sprintf("%s/download/%s", base, quotes[i].PDFFile)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":      "Documentos generados correctamente",
		"cotizaciones": quotes,
	})
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}
