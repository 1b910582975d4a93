// Package memory is an in-process sheet.Store used by the console client and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

type document struct {
	title string
	role  string
	rows  [][]string
}

type Store struct {
	mu    sync.Mutex
	docs  map[string]*document
	fails map[string]error
}

func New() *Store {
	return &Store{
		docs:  make(map[string]*document),
		fails: make(map[string]error),
	}
}

// FailNext makes the next call to op ("create", "permissions", "read", "append", "delete") return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fails[op] = err
}

func (s *Store) injected(op string) error {
	err, ok := s.fails[op]
	if !ok {
		return nil
	}

	delete(s.fails, op)

	return err
}

func (s *Store) CreateDocument(_ context.Context, layout sheet.Layout) (sheet.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("create"); err != nil {
		return sheet.Handle{}, err
	}

	id := uuid.NewString()
	s.docs[id] = &document{
		title: layout.DocumentTitle(),
		rows: [][]string{
			{layout.Title},
			{layout.CreationInfo()},
			{},
			append([]string(nil), sheet.Headers...),
		},
	}

	return sheet.Handle{ID: id, URL: sheet.URL(id)}, nil
}

func (s *Store) SetPermissions(_ context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("permissions"); err != nil {
		return err
	}

	doc, err := s.get(id)
	if err != nil {
		return err
	}

	doc.role = role

	return nil
}

func (s *Store) ReadRows(_ context.Context, id, _ string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("read"); err != nil {
		return nil, err
	}

	doc, err := s.get(id)
	if err != nil {
		return nil, err
	}

	out := make([][]string, len(doc.rows))
	for i, row := range doc.rows {
		out[i] = append([]string(nil), row...)
	}

	return out, nil
}

func (s *Store) AppendRow(_ context.Context, id, _ string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("append"); err != nil {
		return err
	}

	doc, err := s.get(id)
	if err != nil {
		return err
	}

	doc.rows = append(doc.rows, append([]string(nil), row...))

	return nil
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("delete"); err != nil {
		return err
	}

	if _, err := s.get(id); err != nil {
		return err
	}

	delete(s.docs, id)

	return nil
}

// Exists reports whether a document with id is still present.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.docs[id]

	return ok
}

// Role returns the sharing role last set on id.
func (s *Store) Role(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.docs[id]; ok {
		return doc.role
	}

	return ""
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.docs)
}

func (s *Store) get(id string) (*document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, sheet.ErrNotFound)
	}

	return doc, nil
}
