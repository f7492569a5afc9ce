package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/FirstLeaseAgent/template-pdf/model"
)

// TemplateRepository is the registry of registered quotation templates.
// Handlers depend on this interface, not on the file-backed implementation.
type TemplateRepository interface {
	Get(id string) (*model.Template, error)
	Put(t *model.Template) error
	List(tenant string) []*model.Template
	Delete(id string) error
}

// registryFile is the on-disk shape of the registry.
type registryFile struct {
	Plantillas []*model.Template `json:"plantillas"`
}

// FileRegistry keeps the registry in memory and mirrors every mutation to a
// JSON file. The mutex makes the read-modify-write of the shared file a
// critical section; persistence is write-temp-then-rename so a crash never
// leaves a half-written registry behind.
type FileRegistry struct {
	path      string
	mu        sync.RWMutex
	templates map[string]*model.Template
}

// NewFileRegistry loads the registry at path, starting empty if the file
// does not exist yet.
func NewFileRegistry(path string) (*FileRegistry, error) {
	r := &FileRegistry{
		path:      path,
		templates: make(map[string]*model.Template),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("template registry starting empty", "path", path)
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	for _, t := range file.Plantillas {
		r.templates[t.ID] = t
	}
	slog.Info("template registry loaded", "path", path, "templates", len(r.templates))
	return r, nil
}

func (r *FileRegistry) Get(id string) (*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrTemplateNotFound, id)
	}
	copied := *t
	return &copied, nil
}

func (r *FileRegistry) Put(t *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.UpdatedAt = time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}
	copied := *t
	r.templates[t.ID] = &copied
	return r.persist()
}

func (r *FileRegistry) List(tenant string) []*model.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Template
	for _, t := range r.templates {
		if tenant == "" || t.Tenant == tenant {
			copied := *t
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (r *FileRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return fmt.Errorf("%w: %s", model.ErrTemplateNotFound, id)
	}
	delete(r.templates, id)
	return r.persist()
}

// persist writes the registry atomically. Must be called with the write lock
// held.
func (r *FileRegistry) persist() error {
	file := registryFile{Plantillas: make([]*model.Template, 0, len(r.templates))}
	for _, t := range r.templates {
		file.Plantillas = append(file.Plantillas, t)
	}
	sort.Slice(file.Plantillas, func(i, j int) bool {
		return file.Plantillas[i].CreatedAt.Before(file.Plantillas[j].CreatedAt)
	})

	data, err := json.MarshalIndent(&file, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".registry-*")
	if err != nil {
		return fmt.Errorf("failed to create registry temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close registry temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}
