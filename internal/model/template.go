package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectTemplate represents a reusable project configuration that captures
// the grid layout, shapes, and settings but not partition results.
type ProjectTemplate struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
	Grid        Grid        `json:"grid"`
	Shapes      []Shape     `json:"shapes"`
	Settings    CutSettings `json:"settings"`
}

// NewProjectTemplate creates a new template from the given project data.
// It copies the grid, shapes, and settings but intentionally excludes tiles.
func NewProjectTemplate(name, description string, grid Grid, shapes []Shape, settings CutSettings) ProjectTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return ProjectTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Grid:        grid,
		Shapes:      copyShapes(shapes),
		Settings:    settings,
	}
}

// ToProject creates a new Project from this template.
// Shapes get fresh IDs so they are independent of the template.
func (t ProjectTemplate) ToProject(projectName string) Project {
	shapes := make([]Shape, len(t.Shapes))
	for i, s := range t.Shapes {
		shapes[i] = s
		shapes[i].ID = uuid.New().String()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return Project{
		Name:       projectName,
		CreatedAt:  now,
		ModifiedAt: now,
		Grid:       t.Grid,
		Shapes:     shapes,
		Settings:   t.Settings,
	}
}

// TemplateStore holds a collection of project templates.
type TemplateStore struct {
	Templates []ProjectTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []ProjectTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t ProjectTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *ProjectTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns a list of template names.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *ProjectTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

// copyShapes creates a copy of a shape slice.
func copyShapes(shapes []Shape) []Shape {
	if shapes == nil {
		return []Shape{}
	}
	cp := make([]Shape, len(shapes))
	copy(cp, shapes)
	return cp
}
