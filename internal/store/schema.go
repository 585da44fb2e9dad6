package store

import (
	"os"
	"sync"

	"github.com/fieldlens/fieldlens/internal/fields"
)

// SchemaStore holds the active field schema. Edits replace the schema
// wholesale after validation; running extractions keep the snapshot
// they started with.
type SchemaStore struct {
	mu     sync.RWMutex
	schema *fields.Schema
	path   string // backing file, written on every update
}

// NewSchemaStore loads the schema from path, falling back to the
// built-in defaults when the file does not exist.
func NewSchemaStore(path string) (*SchemaStore, error) {
	s := &SchemaStore{path: path}

	if _, err := os.Stat(path); err == nil {
		schema, err := fields.Load(path)
		if err != nil {
			return nil, err
		}
		s.schema = schema
		return s, nil
	}

	s.schema = fields.Default()
	if path != "" {
		if err := fields.Save(s.schema, path); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get returns the current schema snapshot.
func (s *SchemaStore) Get() *fields.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema
}

// Set validates and installs a new schema, writing it to disk.
func (s *SchemaStore) Set(schema *fields.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = schema
	if s.path != "" {
		return fields.Save(schema, s.path)
	}
	return nil
}
