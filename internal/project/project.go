// Package project persists MosaicCut data: project files, application
// configuration, the tool and grid inventory, layout templates, and
// custom GCode profiles. Everything is stored as indented JSON.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// FileExtension is the suffix for saved MosaicCut project files.
const FileExtension = ".mosaic"

// Save writes a project to the given path as indented JSON, stamping its
// modification time. Parent directories are created if missing.
func Save(path string, p *model.Project) error {
	p.Touch()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Load reads a project from the given path. Unlike the config loaders a
// missing project file is an error, since the caller asked for a
// specific saved layout.
func Load(path string) (*model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	if p.Shapes == nil {
		p.Shapes = []model.Shape{}
	}
	return &p, nil
}
