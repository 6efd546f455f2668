package archetype

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sword-ecs/sword/internal/core/world"
)

// File is the YAML document shape for archetype definitions:
//
//	archetypes:
//	  goblin:
//	    health: 30
//	    hostile: true
type File struct {
	Archetypes map[string]world.Components `json:"archetypes" yaml:"archetypes"`
}

// Load reads YAML archetype definitions and registers every template.
// Existing registrations with colliding names are overwritten.
func (r *Registry) Load(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read archetype definitions: %w", err)
	}
	var file File
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse archetype definitions: %w", err)
	}
	for name, tpl := range file.Archetypes {
		r.Register(name, tpl)
	}
	return nil
}

// LoadFile loads archetype definitions from a YAML file on disk.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archetype file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return r.Load(f)
}
