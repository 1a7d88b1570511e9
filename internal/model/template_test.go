package model

import (
	"testing"
)

func templateShapes() []Shape {
	return []Shape{
		NewRectangle(1, 200, 200, 100, 100),
		NewTriangle(2, 500, 300, 80),
	}
}

func TestNewProjectTemplate(t *testing.T) {
	grid := DefaultGrid()
	settings := DefaultSettings()

	tmpl := NewProjectTemplate("Mosaic 6x6", "Standard mosaic layout", grid, templateShapes(), settings)

	if tmpl.Name != "Mosaic 6x6" {
		t.Errorf("expected name 'Mosaic 6x6', got %q", tmpl.Name)
	}
	if tmpl.Description != "Standard mosaic layout" {
		t.Errorf("expected description 'Standard mosaic layout', got %q", tmpl.Description)
	}
	if tmpl.ID == "" {
		t.Error("expected non-empty ID")
	}
	if tmpl.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if len(tmpl.Shapes) != 2 {
		t.Errorf("expected 2 shapes, got %d", len(tmpl.Shapes))
	}
	if tmpl.Grid.Rows != 6 || tmpl.Grid.Cols != 6 {
		t.Errorf("grid not stored: %+v", tmpl.Grid)
	}
}

func TestNewProjectTemplateCopiesShapes(t *testing.T) {
	shapes := templateShapes()
	tmpl := NewProjectTemplate("T", "", DefaultGrid(), shapes, DefaultSettings())

	shapes[0].Position.X = 999
	if tmpl.Shapes[0].Position.X == 999 {
		t.Error("template should hold its own copy of the shapes")
	}
}

func TestProjectTemplateToProject(t *testing.T) {
	tmpl := NewProjectTemplate("Mosaic 6x6", "desc", DefaultGrid(), templateShapes(), DefaultSettings())

	p := tmpl.ToProject("Kitchen wall")

	if p.Name != "Kitchen wall" {
		t.Errorf("expected project name 'Kitchen wall', got %q", p.Name)
	}
	if len(p.Shapes) != len(tmpl.Shapes) {
		t.Fatalf("expected %d shapes, got %d", len(tmpl.Shapes), len(p.Shapes))
	}
	// Shapes get fresh identifiers so two projects from one template stay
	// independent.
	for i := range p.Shapes {
		if p.Shapes[i].ID == tmpl.Shapes[i].ID {
			t.Errorf("shape %d kept the template's ID", i)
		}
		if p.Shapes[i].Serial != tmpl.Shapes[i].Serial {
			t.Errorf("shape %d lost its serial number", i)
		}
	}
	if p.Grid.CellSize != tmpl.Grid.CellSize {
		t.Error("project did not inherit the template grid")
	}
}

func TestTemplateStoreAddRemove(t *testing.T) {
	ts := NewTemplateStore()

	tmpl := NewProjectTemplate("A", "", DefaultGrid(), nil, DefaultSettings())
	ts.Add(tmpl)

	if len(ts.Templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(ts.Templates))
	}
	if ts.FindByID(tmpl.ID) == nil {
		t.Error("FindByID failed for stored template")
	}
	if ts.FindByID("missing") != nil {
		t.Error("FindByID should return nil for unknown ID")
	}

	if !ts.Remove(tmpl.ID) {
		t.Error("Remove returned false for existing template")
	}
	if ts.Remove(tmpl.ID) {
		t.Error("Remove returned true for already-removed template")
	}
	if len(ts.Templates) != 0 {
		t.Errorf("expected empty store, got %d", len(ts.Templates))
	}
}

func TestTemplateStoreNamesAndFindByName(t *testing.T) {
	ts := NewTemplateStore()
	ts.Add(NewProjectTemplate("First", "", DefaultGrid(), nil, DefaultSettings()))
	ts.Add(NewProjectTemplate("Second", "", DefaultGrid(), nil, DefaultSettings()))

	names := ts.Names()
	if len(names) != 2 || names[0] != "First" || names[1] != "Second" {
		t.Errorf("unexpected names %v", names)
	}

	if found := ts.FindByName("Second"); found == nil || found.Name != "Second" {
		t.Error("FindByName failed")
	}
	if ts.FindByName("Third") != nil {
		t.Error("FindByName should return nil for unknown name")
	}
}
