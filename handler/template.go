package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FirstLeaseAgent/template-pdf/middleware"
	"github.com/FirstLeaseAgent/template-pdf/model"
	"github.com/FirstLeaseAgent/template-pdf/pkg/logger"
	"github.com/FirstLeaseAgent/template-pdf/service"
)

type TemplateHandler struct {
	repo         service.TemplateRepository
	fetcher      *service.Fetcher
	templatesDir string
}

func NewTemplateHandler(repo service.TemplateRepository, fetcher *service.Fetcher, templatesDir string) *TemplateHandler {
	return &TemplateHandler{
		repo:         repo,
		fetcher:      fetcher,
		templatesDir: templatesDir,
	}
}

// Upload registers a new template from a multipart form file
func (h *TemplateHandler) Upload(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".docx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only DOCX files are allowed"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	tmpl, err := h.register(c, tenant, filename, "", data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register template: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        tmpl.ID,
		"nombre":    tmpl.Filename,
		"variables": tmpl.Variables,
	})
}

type FetchRequest struct {
	URL      string `json:"url" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}

// Fetch provisions a template from the remote canonical source. A failed
// fetch is fatal to this request: there is no template to operate on.
func (h *TemplateHandler) Fetch(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	filename := filepath.Base(req.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".docx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only DOCX files are allowed"})
		return
	}

	data, err := h.fetcher.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		logger.Error(c.Request.Context(), "remote template fetch failed", "url", req.URL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	tmpl, err := h.register(c, tenant, filename, req.URL, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register template: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        tmpl.ID,
		"nombre":    tmpl.Filename,
		"variables": tmpl.Variables,
	})
}

// register stores the template file, extracts its placeholders and writes
// the registry entry. Extraction failure never blocks registration; the
// entry just carries no variables.
func (h *TemplateHandler) register(c *gin.Context, tenant, filename, sourceURL string, data []byte) (*model.Template, error) {
	path := filepath.Join(h.templatesDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}

	tmpl := &model.Template{
		ID:        uuid.New().String(),
		Filename:  filename,
		Variables: service.ExtractPlaceholders(path),
		Tenant:    tenant,
		SourceURL: sourceURL,
		CreatedAt: time.Now(),
	}
	if err := h.repo.Put(tmpl); err != nil {
		return nil, err
	}

	logger.Info(c.Request.Context(), "template registered",
		"template_id", tmpl.ID,
		"filename", filename,
		"variables", len(tmpl.Variables),
	)
	return tmpl, nil
}

// List returns all templates for the current tenant
func (h *TemplateHandler) List(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	templates := h.repo.List(tenant)

	result := make([]gin.H, len(templates))
	for i, tmpl := range templates {
		result[i] = gin.H{
			"id":         tmpl.ID,
			"nombre":     tmpl.Filename,
			"variables":  tmpl.Variables,
			"created_at": tmpl.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at": tmpl.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"plantillas": result})
}

// Get returns a single template entry
func (h *TemplateHandler) Get(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	tmpl, err := h.repo.Get(id)
	if err != nil || tmpl.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// Reload re-extracts the template's placeholders from its stored file. This
// is the only way an entry is ever mutated after registration.
func (h *TemplateHandler) Reload(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	tmpl, err := h.repo.Get(id)
	if err != nil || tmpl.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	path := filepath.Join(h.templatesDir, tmpl.Filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template file not found"})
		return
	}

	tmpl.Variables = service.ExtractPlaceholders(path)
	if err := h.repo.Put(tmpl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        tmpl.ID,
		"nombre":    tmpl.Filename,
		"variables": tmpl.Variables,
	})
}

// Delete removes a template entry and its stored file
func (h *TemplateHandler) Delete(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	tmpl, err := h.repo.Get(id)
	if err != nil || tmpl.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	if err := h.repo.Delete(id); err != nil && !errors.Is(err, model.ErrTemplateNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template: " + err.Error()})
		return
	}
	// Best effort: a leftover file only wastes disk.
	if err := os.Remove(filepath.Join(h.templatesDir, tmpl.Filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn(c.Request.Context(), "failed to remove template file", "filename", tmpl.Filename, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}
