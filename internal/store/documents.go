// Package store holds the in-memory session state: uploaded documents
// and the active field schema. Nothing here persists across restarts
// except the schema file written to the home directory.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/internal/types"
)

// Documents is a thread-safe in-memory document registry.
type Documents struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*types.Document
}

// NewDocuments creates an empty document store.
func NewDocuments() *Documents {
	return &Documents{docs: make(map[uuid.UUID]*types.Document)}
}

// Add registers a document.
func (s *Documents) Add(doc *types.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

// Get returns a document by ID.
func (s *Documents) Get(id uuid.UUID) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return doc, nil
}

// FindBySource returns the document registered for a source path, if
// any. The inbox watcher uses this to skip files already uploaded
// through the API.
func (s *Documents) FindBySource(path string) (*types.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if d.SourcePath == path {
			return d, true
		}
	}
	return nil, false
}

// List returns all documents ordered by upload time.
func (s *Documents) List() []*types.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*types.Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})
	return docs
}

// Len returns the number of stored documents.
func (s *Documents) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
